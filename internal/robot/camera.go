package robot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Camera is the image-capture boundary.
type Camera interface {
	// Capture takes one frame and returns the saved image path.
	Capture(ctx context.Context) (string, error)
	// Preview shows the live feed for the given duration.
	Preview(ctx context.Context, d time.Duration) error
}

// SimCamera writes a placeholder frame into the temp directory so the rest
// of the pipeline (vision queries included) can run without a device.
type SimCamera struct {
	Dir string

	// Frame overrides the placeholder content when set.
	Frame []byte
}

// Capture writes the frame to <dir>/overhead.jpg.
func (c *SimCamera) Capture(ctx context.Context) (string, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	path := filepath.Join(c.Dir, "overhead.jpg")
	frame := c.Frame
	if frame == nil {
		frame = []byte("simulated frame")
	}
	if err := os.WriteFile(path, frame, 0o644); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	return path, nil
}

// Preview is a no-op for the simulated camera.
func (c *SimCamera) Preview(ctx context.Context, d time.Duration) error {
	return nil
}
