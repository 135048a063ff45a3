package robot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/vision"
)

func testRobotConfig() config.RobotConfig {
	return config.RobotConfig{
		SafeHeight:      220,
		GraspHeight:     10,
		ReleaseHeight:   20,
		ApproachHeight:  50,
		DefaultSpeed:    40,
		CoordinateSpeed: 20,
	}
}

func newTestController(t *testing.T) (*Controller, *SimArm) {
	t.Helper()
	arm := NewSimArm()
	ctrl := NewController(arm, testRobotConfig(), nil)
	ctrl.Sleep = func(time.Duration) {}
	return ctrl, arm
}

func TestMoveToTwoPhaseOrder(t *testing.T) {
	ctrl, arm := newTestController(t)
	require.NoError(t, arm.SendCoords([]float64{10, 20, 80, 0, 0, 0}, 20))
	arm.Trace = nil

	require.NoError(t, ctrl.MoveTo(context.Background(), 150, -120, 90, false))

	require.Equal(t, []string{
		"coords:10,20,220",    // ascend in place
		"coords:150,-120,220", // translate at transit height
		"coords:150,-120,90",  // descend
	}, arm.Trace)
}

func TestMoveToKeepZRetainsCurrentHeight(t *testing.T) {
	ctrl, arm := newTestController(t)
	require.NoError(t, arm.SendCoords([]float64{10, 20, 75, 0, 0, 0}, 20))
	arm.Trace = nil

	require.NoError(t, ctrl.MoveTo(context.Background(), 150, -120, 0, true))

	require.Equal(t, "coords:150,-120,75", arm.Trace[len(arm.Trace)-1])
}

func TestMoveObjectPumpSequence(t *testing.T) {
	ctrl, arm := newTestController(t)
	act := NewSimActuators()

	mp := vision.MovementPlan{
		Source: vision.Point{X: 100, Y: 100},
		Target: vision.Point{X: 200, Y: -50},
	}
	require.NoError(t, ctrl.MoveObject(context.Background(), mp, act))

	require.Equal(t, []string{"pump_on", "pump_off"}, act.Trace)
	require.False(t, act.PumpActive())

	// descent to grasp height happens before the pump engages, and the final
	// move re-ascends over the target
	require.Contains(t, arm.Trace, "coords:100,100,10")
	require.Equal(t, "coords:200,-50,50", arm.Trace[len(arm.Trace)-1])
}

func TestRotateJointRange(t *testing.T) {
	ctrl, arm := newTestController(t)

	require.Error(t, ctrl.RotateJoint(context.Background(), 0, 45))
	require.Error(t, ctrl.RotateJoint(context.Background(), 7, 45))
	require.Empty(t, arm.Trace)

	require.NoError(t, ctrl.RotateJoint(context.Background(), 3, -30))
	require.Equal(t, []string{"angle:3=-30"}, arm.Trace)
}

func TestBackToZero(t *testing.T) {
	ctrl, arm := newTestController(t)
	require.NoError(t, arm.SendAngle(1, 45, 40))

	require.NoError(t, ctrl.BackToZero(context.Background()))

	angles, err := arm.GetAngles()
	require.NoError(t, err)
	require.Equal(t, make([]float64, 6), angles)
}

func TestGesturesRestorePose(t *testing.T) {
	ctrl, arm := newTestController(t)
	require.NoError(t, arm.SendAngles([]float64{5, 10, 15, 20, 25, 30}, 40))

	require.NoError(t, ctrl.HeadShake(context.Background()))
	require.NoError(t, ctrl.HeadNod(context.Background()))
	require.NoError(t, ctrl.HeadDance(context.Background()))

	angles, err := arm.GetAngles()
	require.NoError(t, err)
	require.Equal(t, []float64{5, 10, 15, 20, 25, 30}, angles)
}

func TestMoveToOverheadView(t *testing.T) {
	ctrl, arm := newTestController(t)

	require.NoError(t, ctrl.MoveToOverheadView(context.Background()))
	require.Equal(t, "angles:[0 30 -30 0 90 0]", arm.Trace[len(arm.Trace)-1])
}
