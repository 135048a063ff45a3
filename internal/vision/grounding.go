package vision

import (
	"errors"
	"fmt"
)

// ErrGroundingFailed reports that a localization result cannot be turned
// into movement coordinates. Callers must not attempt movement.
var ErrGroundingFailed = errors.New("grounding failed")

// Point is a movement coordinate. Z is always 0 at resolution time; the
// move-object capability applies the approach/grasp/release offsets.
type Point struct {
	X int
	Y int
	Z int
}

// MovementPlan carries resolved pick and place coordinates.
type MovementPlan struct {
	Source Point
	Target Point
}

// Resolve converts a localization result into movement coordinates by
// taking the integer midpoint of each bounding box. It fails when either
// box is absent or degenerate, the zero-area sentinel of a failed vision
// query.
func Resolve(instruction string, loc Localization) (MovementPlan, error) {
	if loc.StartBox.IsZero() || loc.StartBox.Area() == 0 {
		return MovementPlan{}, fmt.Errorf("%w: no usable box for source %q in %q", ErrGroundingFailed, loc.Start, instruction)
	}
	if loc.EndBox.IsZero() || loc.EndBox.Area() == 0 {
		return MovementPlan{}, fmt.Errorf("%w: no usable box for target %q in %q", ErrGroundingFailed, loc.End, instruction)
	}

	sx, sy := loc.StartBox.Center()
	tx, ty := loc.EndBox.Center()
	return MovementPlan{
		Source: Point{X: sx, Y: sy},
		Target: Point{X: tx, Y: ty},
	}, nil
}
