package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sidecar file names.
const (
	JSONFilename = "tulip.json"
	YAMLFilename = "tulip.yaml"
)

// Codec converts descriptors to and from sidecar bytes.
type Codec interface {
	// Filename is the fixed sidecar name inside each entry's metadata
	// directory.
	Filename() string

	Encode(d *Descriptor) ([]byte, error)
	Decode(data []byte) (*Descriptor, error)
}

// NewCodec returns the codec for format ("json" or "yaml").
func NewCodec(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSONCodec stores descriptors as JSON objects in tulip.json.
//
// Keys are written in sorted order so identical descriptors encode to
// identical bytes. Numbers decode as int when they are whole and fit,
// float64 otherwise, matching YAMLCodec.
type JSONCodec struct {
	// Indent pretty-prints the output with the given indent string.
	Indent string
}

func (JSONCodec) Filename() string { return JSONFilename }

func (c JSONCodec) Encode(d *Descriptor) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(d.ToMap(), "", c.Indent)
	}
	return json.Marshal(d.ToMap())
}

func (JSONCodec) Decode(data []byte) (*Descriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not a mapping", ErrInvalidDescriptor)
	}
	return FromMap(normalizeNumbers(m).(map[string]any))
}

// normalizeNumbers replaces every json.Number below v with an int or a
// float64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

// YAMLCodec stores descriptors as YAML mappings in tulip.yaml.
type YAMLCodec struct{}

func (YAMLCodec) Filename() string { return YAMLFilename }

func (YAMLCodec) Encode(d *Descriptor) ([]byte, error) {
	return yaml.Marshal(d.ToMap())
}

func (YAMLCodec) Decode(data []byte) (*Descriptor, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not a mapping", ErrInvalidDescriptor)
	}
	return FromMap(m)
}
