package robot

import (
	"fmt"
	"sync"
)

// Actuators is the GPIO boundary: vacuum pump and RGB LED. The pin driving
// behind it is external; handlers only toggle logical state.
type Actuators interface {
	PumpOn() error
	PumpOff() error
	SetLED(r, g, b int) error
}

// SimActuators is an in-memory actuator bank for tests and hardware-free
// operation.
type SimActuators struct {
	mu   sync.Mutex
	pump bool
	led  [3]int

	// Trace lists actuator commands in order.
	Trace []string
}

// NewSimActuators returns simulated actuators with everything off.
func NewSimActuators() *SimActuators {
	return &SimActuators{}
}

func (s *SimActuators) PumpOn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pump = true
	s.Trace = append(s.Trace, "pump_on")
	return nil
}

func (s *SimActuators) PumpOff() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pump = false
	s.Trace = append(s.Trace, "pump_off")
	return nil
}

func (s *SimActuators) SetLED(r, g, b int) error {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return fmt.Errorf("led component %d out of range 0-255", v)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = [3]int{r, g, b}
	s.Trace = append(s.Trace, fmt.Sprintf("led:%d,%d,%d", r, g, b))
	return nil
}

// PumpActive reports the current pump state.
func (s *SimActuators) PumpActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pump
}

// LED returns the current LED color.
func (s *SimActuators) LED() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led[0], s.led[1], s.led[2]
}
