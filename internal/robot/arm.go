package robot

import (
	"fmt"
	"sync"
)

// Arm is the serial boundary to the 6-DOF robotic arm. The kinematics and
// wire protocol behind it are external; handlers only ever see this surface.
type Arm interface {
	// SendAngles moves all six joints to the given angles (degrees).
	SendAngles(angles []float64, speed int) error
	// SendAngle moves one joint (1-6) to the given angle.
	SendAngle(joint int, angle float64, speed int) error
	// SendCoords moves the effector to [x, y, z, rx, ry, rz].
	SendCoords(coords []float64, speed int) error
	GetAngles() ([]float64, error)
	GetCoords() ([]float64, error)
	ReleaseAllServos() error
	PowerOn() error
}

// SimArm is an in-memory arm used when no hardware is attached. It records
// every command so tests can assert on motion order.
type SimArm struct {
	mu       sync.Mutex
	angles   []float64
	coords   []float64
	released bool

	// Trace lists executed commands in order, e.g. "coords:150,-120,220".
	Trace []string
}

// NewSimArm returns a simulated arm at the zero pose.
func NewSimArm() *SimArm {
	return &SimArm{
		angles: make([]float64, 6),
		coords: []float64{0, 0, 0, 0, 0, 0},
	}
}

func (a *SimArm) SendAngles(angles []float64, speed int) error {
	if len(angles) != 6 {
		return fmt.Errorf("expected 6 angles, got %d", len(angles))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.angles = append([]float64(nil), angles...)
	a.released = false
	a.Trace = append(a.Trace, fmt.Sprintf("angles:%v", angles))
	return nil
}

func (a *SimArm) SendAngle(joint int, angle float64, speed int) error {
	if joint < 1 || joint > 6 {
		return fmt.Errorf("joint %d out of range 1-6", joint)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.angles[joint-1] = angle
	a.released = false
	a.Trace = append(a.Trace, fmt.Sprintf("angle:%d=%g", joint, angle))
	return nil
}

func (a *SimArm) SendCoords(coords []float64, speed int) error {
	if len(coords) != 6 {
		return fmt.Errorf("expected 6 coords, got %d", len(coords))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.coords = append([]float64(nil), coords...)
	a.Trace = append(a.Trace, fmt.Sprintf("coords:%g,%g,%g", coords[0], coords[1], coords[2]))
	return nil
}

func (a *SimArm) GetAngles() ([]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.angles...), nil
}

func (a *SimArm) GetCoords() ([]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.coords...), nil
}

func (a *SimArm) ReleaseAllServos() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = true
	a.Trace = append(a.Trace, "release")
	return nil
}

func (a *SimArm) PowerOn() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = false
	a.Trace = append(a.Trace, "power_on")
	return nil
}

// Released reports whether the servos are currently released.
func (a *SimArm) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}
