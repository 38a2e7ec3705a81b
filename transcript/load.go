package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a decoder by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a transcript file and returns its raw records.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

// containerKeys are the wrapper keys accepted around a record list.
var containerKeys = []string{"utterances", "segments", "conversation"}

// Decode parses r into raw records. The document may be a list of records,
// an object holding the list under one of the container keys, or an object
// with a single key whose value is the list.
func Decode(r io.Reader, format Format) ([]Record, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("yaml decode: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("json decode: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("json decode: trailing data after offset %d", dec.InputOffset())
		}
	}
	return records(doc)
}

func records(doc any) ([]Record, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Record, 0, len(v))
		for i, item := range v {
			if item == nil {
				out = append(out, nil)
				continue
			}
			m, ok := item.(map[string]any)
			if !ok {
				return nil, &MalformedSegmentError{Index: i, Field: "record", Reason: fmt.Sprintf("must be an object, got %T", item)}
			}
			out = append(out, Record(m))
		}
		return out, nil
	case map[string]any:
		for _, k := range containerKeys {
			if inner, ok := v[k]; ok {
				return records(inner)
			}
		}
		if len(v) == 1 {
			for _, inner := range v {
				if _, ok := inner.([]any); ok {
					return records(inner)
				}
			}
		}
		return nil, fmt.Errorf("no segment list found (expected one of %v)", containerKeys)
	default:
		return nil, fmt.Errorf("unexpected document type %T", doc)
	}
}
