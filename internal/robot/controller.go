package robot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/vision"
)

// overheadAngles is the pose with the camera pointing straight down.
var overheadAngles = []float64{0, 30, -30, 0, 90, 0}

// Controller drives the arm through the motion primitives the capability
// registry exposes. All coordinate moves follow the two-phase discipline:
// ascend to the safe transit height, translate in XY at that height, then
// descend to the target z. That ordering is a hard invariant; skipping the
// transit phase can drag the effector through objects on the table.
type Controller struct {
	arm    Arm
	cfg    config.RobotConfig
	logger *zap.Logger

	// Sleep is swappable for tests; settle pauses between motion commands.
	Sleep func(d time.Duration)
}

// NewController builds a controller over the given arm boundary.
func NewController(arm Arm, cfg config.RobotConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{arm: arm, cfg: cfg, logger: logger, Sleep: time.Sleep}
}

// BackToZero returns all joints to the zero pose.
func (c *Controller) BackToZero(ctx context.Context) error {
	if err := c.arm.SendAngles(make([]float64, 6), c.cfg.DefaultSpeed); err != nil {
		return fmt.Errorf("back to zero: %w", err)
	}
	c.Sleep(2 * time.Second)
	return nil
}

// ReleaseServos frees all servos for manual manipulation.
func (c *Controller) ReleaseServos(ctx context.Context) error {
	return c.arm.ReleaseAllServos()
}

// HeadShake swings joint 1 left and right twice, then restores the pose.
func (c *Controller) HeadShake(ctx context.Context) error {
	return c.gesture(1, 30, -30, 2)
}

// HeadNod tilts joint 2 up and down twice, then restores the pose.
func (c *Controller) HeadNod(ctx context.Context) error {
	return c.gesture(2, -20, 20, 2)
}

// HeadDance runs the dance sequence and restores the original pose.
func (c *Controller) HeadDance(ctx context.Context) error {
	original, err := c.arm.GetAngles()
	if err != nil {
		return fmt.Errorf("dance: %w", err)
	}

	moves := []struct {
		joint int
		angle float64
	}{
		{1, 45}, {1, -45},
		{2, 30}, {3, -30},
		{6, 90}, {6, -90},
	}
	for _, m := range moves {
		if err := c.arm.SendAngle(m.joint, m.angle, 60); err != nil {
			return fmt.Errorf("dance: %w", err)
		}
		c.Sleep(300 * time.Millisecond)
	}

	if err := c.arm.SendAngles(original, c.cfg.DefaultSpeed); err != nil {
		return fmt.Errorf("dance: %w", err)
	}
	c.Sleep(time.Second)
	return nil
}

func (c *Controller) gesture(joint int, first, second float64, repeats int) error {
	original, err := c.arm.GetAngles()
	if err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	for i := 0; i < repeats; i++ {
		if err := c.arm.SendAngle(joint, first, 20); err != nil {
			return fmt.Errorf("gesture: %w", err)
		}
		c.Sleep(500 * time.Millisecond)
		if err := c.arm.SendAngle(joint, second, 20); err != nil {
			return fmt.Errorf("gesture: %w", err)
		}
		c.Sleep(500 * time.Millisecond)
	}
	if err := c.arm.SendAngles(original, 20); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	c.Sleep(time.Second)
	return nil
}

// RotateJoint rotates one joint (1-6) to the target angle.
func (c *Controller) RotateJoint(ctx context.Context, joint int, angle float64) error {
	if joint < 1 || joint > 6 {
		return fmt.Errorf("joint %d out of range 1-6", joint)
	}
	if err := c.arm.SendAngle(joint, angle, c.cfg.DefaultSpeed); err != nil {
		return fmt.Errorf("rotate joint %d: %w", joint, err)
	}
	c.Sleep(time.Second)
	return nil
}

// MoveToOverheadView moves to the fixed top-down camera pose.
func (c *Controller) MoveToOverheadView(ctx context.Context) error {
	if err := c.arm.SendAngles(overheadAngles, c.cfg.DefaultSpeed); err != nil {
		return fmt.Errorf("overhead view: %w", err)
	}
	c.Sleep(2 * time.Second)
	return nil
}

// MoveTo moves the effector to (x, y, z) with the two-phase discipline.
// When keepZ is true the current z is retained as the target height.
func (c *Controller) MoveTo(ctx context.Context, x, y, z float64, keepZ bool) error {
	current, err := c.arm.GetCoords()
	if err != nil {
		return fmt.Errorf("move: read coords: %w", err)
	}
	if keepZ {
		z = current[2]
	}
	safe := float64(c.cfg.SafeHeight)
	rx, ry, rz := current[3], current[4], current[5]

	phases := [][]float64{
		{current[0], current[1], safe, rx, ry, rz}, // ascend in place
		{x, y, safe, rx, ry, rz},                   // translate at transit height
		{x, y, z, rx, ry, rz},                      // descend to target
	}
	for _, coords := range phases {
		if err := c.arm.SendCoords(coords, c.cfg.CoordinateSpeed); err != nil {
			return fmt.Errorf("move to (%g, %g, %g): %w", x, y, z, err)
		}
		c.Sleep(1500 * time.Millisecond)
	}
	return nil
}

// MoveObject executes a resolved pick-and-place: approach the source, grasp
// with the pump, lift, transit, set down at the target, release, re-ascend.
func (c *Controller) MoveObject(ctx context.Context, mp vision.MovementPlan, act Actuators) error {
	src, dst := mp.Source, mp.Target
	approach := float64(c.cfg.ApproachHeight)
	grasp := float64(c.cfg.GraspHeight)
	release := float64(c.cfg.ReleaseHeight)

	if err := c.MoveTo(ctx, float64(src.X), float64(src.Y), float64(src.Z)+approach, false); err != nil {
		return err
	}
	if err := c.MoveTo(ctx, float64(src.X), float64(src.Y), float64(src.Z)+grasp, false); err != nil {
		return err
	}
	if err := act.PumpOn(); err != nil {
		return fmt.Errorf("grasp: %w", err)
	}
	c.Sleep(time.Second)

	if err := c.MoveTo(ctx, float64(src.X), float64(src.Y), float64(src.Z)+approach, false); err != nil {
		return err
	}
	if err := c.MoveTo(ctx, float64(dst.X), float64(dst.Y), float64(dst.Z)+approach, false); err != nil {
		return err
	}
	if err := c.MoveTo(ctx, float64(dst.X), float64(dst.Y), float64(dst.Z)+release, false); err != nil {
		return err
	}
	if err := act.PumpOff(); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	c.Sleep(time.Second)

	return c.MoveTo(ctx, float64(dst.X), float64(dst.Y), float64(dst.Z)+approach, false)
}
