package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/plan"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/vision"
)

func (r *Registry) captureOverheadImage(ctx context.Context, _ []plan.Value) (string, error) {
	if err := r.deps.Controller.MoveToOverheadView(ctx); err != nil {
		return "", err
	}
	path, err := r.deps.Camera.Capture(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Image captured and saved to %s", path), nil
}

// colorExtractionPrompt asks the text chain to turn a color phrase into RGB.
const colorExtractionPrompt = `Extract the RGB color from the instruction below.
Reply with a JSON object only, like {"r":0,"g":128,"b":0}.
Instruction: `

// namedColors is the fallback table when the model's RGB answer cannot be
// decoded.
var namedColors = map[string][3]int{
	"red":    {255, 0, 0},
	"green":  {0, 255, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"purple": {128, 0, 128},
	"orange": {255, 165, 0},
	"white":  {255, 255, 255},
}

func (r *Registry) changeLEDColor(ctx context.Context, args []plan.Value) (string, error) {
	phrase := args[0].Str

	rgb := [3]int{0, 0, 255}
	raw, err := r.deps.Router.Text(ctx, []llm.ChatMessage{
		{Role: llm.RoleUser, Content: colorExtractionPrompt + phrase},
	}, "")
	if err == nil {
		if parsed, ok := parseRGB(raw); ok {
			rgb = parsed
		} else if named, ok := lookupNamedColor(phrase); ok {
			rgb = named
		}
	} else if named, ok := lookupNamedColor(phrase); ok {
		rgb = named
	}

	if err := r.deps.Actuators.SetLED(rgb[0], rgb[1], rgb[2]); err != nil {
		return "", err
	}
	return fmt.Sprintf("LED color changed to match: %s", phrase), nil
}

func parseRGB(raw string) ([3]int, bool) {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, "{"); idx > 0 {
		text = text[idx:]
	}
	var c struct {
		R int `json:"r"`
		G int `json:"g"`
		B int `json:"b"`
	}
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return [3]int{}, false
	}
	for _, v := range []int{c.R, c.G, c.B} {
		if v < 0 || v > 255 {
			return [3]int{}, false
		}
	}
	return [3]int{c.R, c.G, c.B}, true
}

func lookupNamedColor(phrase string) ([3]int, bool) {
	lower := strings.ToLower(phrase)
	for name, rgb := range namedColors {
		if strings.Contains(lower, name) {
			return rgb, true
		}
	}
	return [3]int{}, false
}

// moveObject grounds a natural-language move instruction through the vision
// chain and executes the pick-and-place. A grounding failure is reported as
// a spoken explanation, not a step error: the arm simply does not move.
func (r *Registry) moveObject(ctx context.Context, args []plan.Value) (string, error) {
	instruction := args[0].Str
	if !r.deps.Router.HasVision() {
		return "I have no vision backend configured, so I cannot locate objects.", nil
	}

	if err := r.deps.Controller.MoveToOverheadView(ctx); err != nil {
		return "", err
	}
	imagePath, err := r.deps.Camera.Capture(ctx)
	if err != nil {
		return "", err
	}

	raw, err := r.deps.Router.Vision(ctx, llm.VisionRequest{
		Instruction: vision.LocatePrompt + instruction,
		ImagePath:   imagePath,
		Mode:        llm.VisionLocate,
	}, "")
	if err != nil {
		r.deps.Logger.Warn("object localization failed", zap.Error(err))
		return "I could not analyze the scene to locate the objects.", nil
	}

	loc := vision.ParseLocalization(raw)
	movement, err := vision.Resolve(instruction, loc)
	if err != nil {
		if errors.Is(err, vision.ErrGroundingFailed) {
			r.deps.Logger.Warn("grounding failed", zap.String("instruction", instruction), zap.Error(err))
			return "I could not identify the objects you mentioned.", nil
		}
		return "", err
	}

	if err := r.deps.Controller.MoveObject(ctx, movement, r.deps.Actuators); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved the %s onto the %s.", loc.Start, loc.End), nil
}

func (r *Registry) teachingMode(ctx context.Context, _ []plan.Value) (string, error) {
	rec, err := r.deps.Teachings.Record(ctx, r.deps.Arm, 10*time.Second, 5)
	if err != nil {
		return "", err
	}
	if err := r.deps.Teachings.Replay(ctx, r.deps.Arm, rec); err != nil {
		return "", err
	}
	return fmt.Sprintf("Teaching completed and saved as ID %d.", rec.ID), nil
}

func (r *Registry) visualQA(ctx context.Context, args []plan.Value) (string, error) {
	query := args[0].Str
	if !r.deps.Router.HasVision() {
		return "I have no vision backend configured, so I cannot look at the scene.", nil
	}

	if err := r.deps.Controller.MoveToOverheadView(ctx); err != nil {
		return "", err
	}
	imagePath, err := r.deps.Camera.Capture(ctx)
	if err != nil {
		return "", err
	}

	answer, err := r.deps.Router.Vision(ctx, llm.VisionRequest{
		Instruction: vision.DescribePrompt + query,
		ImagePath:   imagePath,
		Mode:        llm.VisionDescribe,
	}, "")
	if err != nil {
		return "I could not analyze the scene to answer that.", nil
	}
	return answer, nil
}
