package speech

import (
	"context"
	"fmt"
	"io"
)

// Console writes spoken responses to a terminal. It stands in for the
// text-to-speech and audio-playback collaborators, which live outside this
// engine.
type Console struct {
	Out io.Writer
}

// Speak prints the response line.
func (c *Console) Speak(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(c.Out, "[speak] %s\n", text)
	return err
}

// Noop discards spoken responses; used by the HTTP service, which returns
// the text in the response body instead.
type Noop struct{}

// Speak does nothing.
func (Noop) Speak(ctx context.Context, text string) error { return nil }
