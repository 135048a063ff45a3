package plan

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SentinelResponse is spoken whenever planning cannot produce a valid result.
const SentinelResponse = "I encountered an error understanding the request. Returning to the zero position."

// Kind discriminates typed argument values.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

// Value is one typed argument of a validated call.
type Value struct {
	Kind  Kind
	Int   int
	Float float64
	Str   string
}

// IntVal wraps an int argument.
func IntVal(i int) Value { return Value{Kind: KindInt, Int: i} }

// FloatVal wraps a float argument.
func FloatVal(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StrVal wraps a string argument.
func StrVal(s string) Value { return Value{Kind: KindString, Str: s} }

// AsFloat returns the numeric value, widening ints.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func (v Value) encode() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return strconv.Quote(v.Str)
	}
}

// Call is one validated capability invocation: the name exists in the
// registry and the arguments match its declared signature.
type Call struct {
	Name string
	Args []Value
}

// String renders the call in the wire form name(arg, arg).
func (c Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.encode())
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Plan is the decoded, validated instruction-to-action translation for one
// conversational turn. Response is always non-empty; Steps may be empty for
// a pure conversational turn. Dropped lists rejected steps for telemetry
// only and is never surfaced to the user.
type Plan struct {
	Steps    []Call
	Response string
	Dropped  []string
}

// Sentinel returns the fixed safe-default plan: a single reset step plus an
// apology response.
func Sentinel() Plan {
	return Plan{
		Steps:    []Call{{Name: "back_to_zero"}},
		Response: SentinelResponse,
	}
}

// IsSentinel reports whether p equals the sentinel plan.
func (p Plan) IsSentinel() bool {
	return len(p.Steps) == 1 && p.Steps[0].Name == "back_to_zero" &&
		len(p.Steps[0].Args) == 0 && p.Response == SentinelResponse
}

// wirePlan is the JSON shape the model is prompted to emit.
type wirePlan struct {
	Function []string `json:"function"`
	Response string   `json:"response"`
}

// Encode renders the plan back into the wire JSON form.
func (p Plan) Encode() string {
	w := wirePlan{Function: make([]string, 0, len(p.Steps)), Response: p.Response}
	for _, c := range p.Steps {
		w.Function = append(w.Function, c.String())
	}
	data, err := json.Marshal(w)
	if err != nil {
		return ""
	}
	return string(data)
}
