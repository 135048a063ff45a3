package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Argument is one raw, not-yet-typed argument extracted from a call token.
type Argument struct {
	Text   string
	Quoted bool
}

// StepValidator admits a proposed step into a plan. The capability registry
// implements it: name lookup plus argument count and type checks.
type StepValidator interface {
	ValidateCall(name string, args []Argument) (Call, error)
}

// aliases maps spellings the model is known to emit to registry names.
var aliases = map[string]string{
	"time.sleep": "wait",
}

// Parse converts one raw model response into a validated Plan. It is a
// total function: any decode failure degrades to the sentinel plan, and any
// single invalid step is dropped with a diagnostic note while the remaining
// steps are kept in order. Model output is untrusted input; call tokens are
// never executed as-is, only matched against the validator.
func Parse(raw string, v StepValidator) Plan {
	text := stripFence(raw)
	text = strings.TrimSpace(text)

	// Tolerate conversational preamble ahead of the JSON object.
	if !strings.HasPrefix(text, "{") {
		if idx := strings.Index(text, "{"); idx >= 0 {
			text = text[idx:]
		}
	}

	var wire wirePlan
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return Sentinel()
	}
	if strings.TrimSpace(wire.Response) == "" {
		return Sentinel()
	}

	p := Plan{Response: wire.Response}
	for _, token := range wire.Function {
		call, err := parseStep(token, v)
		if err != nil {
			p.Dropped = append(p.Dropped, fmt.Sprintf("%s: %v", token, err))
			continue
		}
		p.Steps = append(p.Steps, call)
	}
	return p
}

func parseStep(token string, v StepValidator) (Call, error) {
	name, args, err := splitCall(token)
	if err != nil {
		return Call{}, err
	}
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	return v.ValidateCall(name, args)
}

// splitCall decomposes a call token of the form name(arg, arg, ...).
func splitCall(token string) (string, []Argument, error) {
	token = strings.TrimSpace(token)
	open := strings.Index(token, "(")
	if open <= 0 || !strings.HasSuffix(token, ")") {
		return "", nil, fmt.Errorf("not a call token")
	}

	name := strings.TrimSpace(token[:open])
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return "", nil, fmt.Errorf("invalid name %q", name)
		}
	}

	inner := token[open+1 : len(token)-1]
	args, err := splitArgs(inner)
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

// splitArgs tokenizes an argument list, honoring single and double quotes
// with backslash escapes inside them.
func splitArgs(inner string) ([]Argument, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var (
		args    []Argument
		current strings.Builder
		quote   rune
		quoted  bool
		escaped bool
	)

	flush := func() error {
		text := strings.TrimSpace(current.String())
		current.Reset()
		wasQuoted := quoted
		quoted = false
		if text == "" && !wasQuoted {
			return fmt.Errorf("empty argument")
		}
		if !wasQuoted {
			// Keyword form (X=180): the value position carries the meaning.
			if eq := strings.Index(text, "="); eq >= 0 {
				text = strings.TrimSpace(text[eq+1:])
				if text == "" {
					return fmt.Errorf("empty keyword argument")
				}
			}
		}
		args = append(args, Argument{Text: text, Quoted: wasQuoted})
		return nil
	}

	for _, r := range inner {
		switch {
		case quote != 0:
			if escaped {
				switch r {
				case '\\', '\'', '"':
					current.WriteRune(r)
				case 'n':
					current.WriteRune('\n')
				case 't':
					current.WriteRune('\t')
				default:
					current.WriteRune('\\')
					current.WriteRune(r)
				}
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			quoted = true
		case r == ',':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			current.WriteRune(r)
		}
	}
	if escaped || quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return args, nil
}

// stripFence removes a wrapping Markdown code fence when present.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl >= 0 {
		// Drop the language tag line (```json).
		first := strings.TrimSpace(text[:nl])
		if first == "json" || first == "" {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
