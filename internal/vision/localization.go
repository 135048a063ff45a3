package vision

import (
	"encoding/json"
	"strings"
)

// Box is a pixel rectangle in image space, stored as [[x1,y1],[x2,y2]].
type Box [2][2]int

// IsZero reports whether the box is the all-zero failure sentinel.
func (b Box) IsZero() bool {
	return b == Box{}
}

// Area returns the pixel area of the box.
func (b Box) Area() int {
	w := b[1][0] - b[0][0]
	h := b[1][1] - b[0][1]
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	return w * h
}

// Center returns the integer-rounded midpoint of the box.
func (b Box) Center() (int, int) {
	return (b[0][0] + b[1][0]) / 2, (b[0][1] + b[1][1]) / 2
}

// Localization is a vision provider's object-localization result: the
// labels and boxes for the source and destination objects of a move
// instruction. A zero box signals that grounding failed for that object.
type Localization struct {
	Start    string `json:"start"`
	StartBox Box    `json:"start_xyxy"`
	End      string `json:"end"`
	EndBox   Box    `json:"end_xyxy"`
}

// ParseLocalization decodes the vision wire form with the same recovery
// steps as the plan parser: fence stripping, preamble scan, then strict
// JSON. On failure it returns a zero-box Localization, which downstream
// grounding treats as "could not identify objects".
func ParseLocalization(raw string) Localization {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if !strings.HasPrefix(text, "{") {
		if idx := strings.Index(text, "{"); idx >= 0 {
			text = text[idx:]
		}
	}

	var loc Localization
	if err := json.Unmarshal([]byte(text), &loc); err != nil {
		return Localization{Start: "unknown", End: "unknown"}
	}
	return loc
}
