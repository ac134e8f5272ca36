package world

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is a sealed interface representing a scalar entity parameter.
// Only IntParam, FloatParam and StringParam implement it.
type Param interface {
	param() // Sealed - only these types implement it
	String() string
}

// IntParam is an integer parameter value.
type IntParam int64

func (IntParam) param() {}

func (p IntParam) String() string { return strconv.FormatInt(int64(p), 10) }

// FloatParam is a floating-point parameter value.
type FloatParam float64

func (FloatParam) param() {}

// String always includes a fractional part or exponent so the value reads
// back as a float.
func (p FloatParam) String() string {
	s := strconv.FormatFloat(float64(p), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // NaN, Inf
		s += ".0"
	}
	return s
}

// StringParam is a string parameter value.
type StringParam string

func (StringParam) param() {}

func (p StringParam) String() string { return string(p) }

// Numeric reports the value of p as a float64 and whether p is numeric.
func Numeric(p Param) (float64, bool) {
	switch v := p.(type) {
	case IntParam:
		return float64(v), true
	case FloatParam:
		return float64(v), true
	default:
		return 0, false
	}
}

// Params is an ordered parameter list with type-preserving JSON and YAML
// encodings.
type Params []Param

// MarshalJSON encodes params as a JSON array. Floats always carry a
// fractional part so they decode back as FloatParam.
func (ps Params) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(',')
		}
		data, err := marshalParam(p)
		if err != nil {
			return nil, fmt.Errorf("parameters[%d]: %w", i, err)
		}
		b.Write(data)
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

func marshalParam(p Param) ([]byte, error) {
	switch v := p.(type) {
	case IntParam:
		return []byte(v.String()), nil
	case FloatParam:
		return []byte(v.String()), nil
	case StringParam:
		return json.Marshal(string(v))
	default:
		return nil, fmt.Errorf("unknown parameter type: %T", p)
	}
}

// UnmarshalJSON decodes a JSON array of scalars.
func (ps *Params) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*ps = make(Params, len(raw))
	for i, v := range raw {
		p, err := unmarshalParam(v)
		if err != nil {
			return fmt.Errorf("parameters[%d]: %w", i, err)
		}
		(*ps)[i] = p
	}
	return nil
}

// unmarshalParam decodes one JSON scalar. Numbers without a fraction or
// exponent become IntParam, other numbers FloatParam.
func unmarshalParam(data []byte) (Param, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return StringParam(s), nil
	case '{', '[', 't', 'f', 'n':
		return nil, fmt.Errorf("parameters must be numbers or strings, got %s", string(data))
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return ParseNumber(string(n))
}

// ParseNumber converts number text into IntParam or FloatParam.
func ParseNumber(s string) (Param, error) {
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return IntParam(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return FloatParam(f), nil
}

// MarshalYAML encodes params as a sequence of tagged scalars.
func (ps Params) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for i, p := range ps {
		node := &yaml.Node{Kind: yaml.ScalarNode, Value: p.String()}
		switch p.(type) {
		case IntParam:
			node.Tag = "!!int"
		case FloatParam:
			node.Tag = "!!float"
		case StringParam:
			node.Tag = "!!str"
		default:
			return nil, fmt.Errorf("parameters[%d]: unknown parameter type: %T", i, p)
		}
		seq.Content = append(seq.Content, node)
	}
	return seq, nil
}

// UnmarshalYAML decodes a sequence of scalars using their resolved tags.
func (ps *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: parameters must be a sequence", node.Line)
	}

	*ps = make(Params, len(node.Content))
	for i, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: parameters[%d] must be a scalar", item.Line, i)
		}
		switch item.ShortTag() {
		case "!!int":
			var n int64
			if err := item.Decode(&n); err != nil {
				return fmt.Errorf("line %d: parameters[%d]: %w", item.Line, i, err)
			}
			(*ps)[i] = IntParam(n)
		case "!!float":
			var f float64
			if err := item.Decode(&f); err != nil {
				return fmt.Errorf("line %d: parameters[%d]: %w", item.Line, i, err)
			}
			(*ps)[i] = FloatParam(f)
		case "!!str":
			(*ps)[i] = StringParam(item.Value)
		default:
			return fmt.Errorf("line %d: parameters[%d]: unsupported value %q (%s)", item.Line, i, item.Value, item.ShortTag())
		}
	}
	return nil
}
