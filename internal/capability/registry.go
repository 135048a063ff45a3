package capability

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/plan"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/robot"
)

// ErrUnknownCapability reports a proposed step whose name is not in the
// registry.
var ErrUnknownCapability = errors.New("unknown capability")

// ParamType declares one parameter of a capability signature.
type ParamType int

const (
	ParamInt ParamType = iota
	ParamFloat
	ParamString
)

// HandlerFunc executes one validated capability call. The returned string,
// when non-empty, is appended to the plan's spoken response.
type HandlerFunc func(ctx context.Context, args []plan.Value) (string, error)

// Spec is one whitelisted capability: its name, typed signature, and bound
// handler. MinArgs below len(Params) marks trailing parameters optional.
type Spec struct {
	Name    string
	Params  []ParamType
	MinArgs int
	Handler HandlerFunc
}

// Querier is the provider-router surface capabilities use for vision
// grounding and color extraction.
type Querier interface {
	Text(ctx context.Context, history []llm.ChatMessage, preferred string) (string, error)
	Vision(ctx context.Context, req llm.VisionRequest, preferred string) (string, error)
	HasVision() bool
}

// Deps bundles the collaborators capability handlers act through. Passing
// them in explicitly keeps the executor testable with fakes.
type Deps struct {
	Controller *robot.Controller
	Arm        robot.Arm
	Actuators  robot.Actuators
	Camera     robot.Camera
	Teachings  *robot.TeachingStore
	Router     Querier
	Logger     *zap.Logger

	// Sleep backs the wait capability; swappable for tests.
	Sleep func(d time.Duration)
}

// Registry is the closed set of executable behavior. It is built once at
// process start; the model may only select from it, never extend it.
type Registry struct {
	specs map[string]Spec
	deps  Deps
}

// NewRegistry builds the full capability set over the given collaborators.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	r := &Registry{specs: make(map[string]Spec), deps: deps}
	r.install()
	return r
}

// Lookup returns the spec for a capability name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the registered capability names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.specs))
	for name := range r.specs {
		out = append(out, name)
	}
	return out
}

// ValidateCall admits a proposed step: the name must be registered and the
// raw arguments must match the declared signature in count and type.
func (r *Registry) ValidateCall(name string, args []plan.Argument) (plan.Call, error) {
	spec, ok := r.specs[name]
	if !ok {
		return plan.Call{}, fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}

	min := spec.MinArgs
	if min == 0 {
		min = len(spec.Params)
	}
	if len(args) < min || len(args) > len(spec.Params) {
		return plan.Call{}, fmt.Errorf("%s expects %d-%d args, got %d", name, min, len(spec.Params), len(args))
	}

	values := make([]plan.Value, 0, len(args))
	for i, arg := range args {
		v, err := coerce(arg, spec.Params[i])
		if err != nil {
			return plan.Call{}, fmt.Errorf("%s arg %d: %w", name, i+1, err)
		}
		values = append(values, v)
	}
	return plan.Call{Name: name, Args: values}, nil
}

func coerce(arg plan.Argument, t ParamType) (plan.Value, error) {
	switch t {
	case ParamInt:
		if arg.Quoted {
			return plan.Value{}, fmt.Errorf("expected int, got string %q", arg.Text)
		}
		n, err := strconv.Atoi(arg.Text)
		if err != nil {
			return plan.Value{}, fmt.Errorf("expected int, got %q", arg.Text)
		}
		return plan.IntVal(n), nil
	case ParamFloat:
		if arg.Quoted {
			return plan.Value{}, fmt.Errorf("expected number, got string %q", arg.Text)
		}
		f, err := strconv.ParseFloat(arg.Text, 64)
		if err != nil {
			return plan.Value{}, fmt.Errorf("expected number, got %q", arg.Text)
		}
		return plan.FloatVal(f), nil
	default:
		return plan.StrVal(arg.Text), nil
	}
}

// install registers the complete whitelist. Adding a capability is a code
// change here, never a runtime registration path.
func (r *Registry) install() {
	d := r.deps

	r.add(Spec{Name: "back_to_zero", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.BackToZero(ctx)
	}})
	r.add(Spec{Name: "release_servos", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.ReleaseServos(ctx)
	}})
	r.add(Spec{Name: "head_shake", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.HeadShake(ctx)
	}})
	r.add(Spec{Name: "head_nod", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.HeadNod(ctx)
	}})
	r.add(Spec{Name: "head_dance", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.HeadDance(ctx)
	}})
	r.add(Spec{Name: "pump_on", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Actuators.PumpOn()
	}})
	r.add(Spec{Name: "pump_off", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Actuators.PumpOff()
	}})

	r.add(Spec{
		Name:    "move_to_coords",
		Params:  []ParamType{ParamFloat, ParamFloat, ParamFloat},
		MinArgs: 2,
		Handler: func(ctx context.Context, args []plan.Value) (string, error) {
			x, y := args[0].AsFloat(), args[1].AsFloat()
			if len(args) == 3 {
				return "", d.Controller.MoveTo(ctx, x, y, args[2].AsFloat(), false)
			}
			return "", d.Controller.MoveTo(ctx, x, y, 0, true)
		},
	})
	r.add(Spec{
		Name:   "rotate_joint",
		Params: []ParamType{ParamInt, ParamFloat},
		Handler: func(ctx context.Context, args []plan.Value) (string, error) {
			return "", d.Controller.RotateJoint(ctx, args[0].Int, args[1].AsFloat())
		},
	})
	r.add(Spec{Name: "move_to_overhead_view", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Controller.MoveToOverheadView(ctx)
	}})

	r.add(Spec{Name: "capture_overhead_image", Handler: r.captureOverheadImage})
	r.add(Spec{Name: "check_camera", Handler: func(ctx context.Context, _ []plan.Value) (string, error) {
		return "", d.Camera.Preview(ctx, 5*time.Second)
	}})

	r.add(Spec{Name: "change_led_color", Params: []ParamType{ParamString}, Handler: r.changeLEDColor})
	r.add(Spec{Name: "move_object", Params: []ParamType{ParamString}, Handler: r.moveObject})
	r.add(Spec{Name: "teaching_mode", Handler: r.teachingMode})
	r.add(Spec{Name: "visual_qa", Params: []ParamType{ParamString}, Handler: r.visualQA})

	r.add(Spec{
		Name:   "wait",
		Params: []ParamType{ParamFloat},
		Handler: func(ctx context.Context, args []plan.Value) (string, error) {
			d.Sleep(time.Duration(args[0].AsFloat() * float64(time.Second)))
			return "", nil
		},
	})
}

func (r *Registry) add(s Spec) {
	r.specs[s.Name] = s
}
