package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a world document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath selects a document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported world document extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Document is the on-disk shape of a world.
type Document struct {
	Entities []EntityDoc `json:"entities" yaml:"entities"`
}

// EntityDoc is the on-disk shape of one entity.
type EntityDoc struct {
	ID          string   `json:"id" yaml:"id"`
	Class       string   `json:"class" yaml:"class"`
	Type        string   `json:"type" yaml:"type"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Parameters  Params   `json:"parameters" yaml:"parameters"`
	Connections []string `json:"connections" yaml:"connections,flow"`
}

// DocumentError reports a malformed world document.
type DocumentError struct {
	Source  string // file name or "<input>"
	Path    string // position inside the document, e.g. "entities[3].class"
	Message string
}

func (e *DocumentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// NewDocument converts a world into its document form.
func NewDocument(w *World) Document {
	doc := Document{Entities: make([]EntityDoc, 0, w.Len())}
	for _, e := range w.Entities() {
		conns := make([]string, len(e.Connections))
		copy(conns, e.Connections)
		params := make(Params, len(e.Parameters))
		copy(params, e.Parameters)
		doc.Entities = append(doc.Entities, EntityDoc{
			ID:          e.ID,
			Class:       string(e.Class),
			Type:        e.Type,
			Name:        e.Name,
			Parameters:  params,
			Connections: conns,
		})
	}
	return doc
}

// Build converts a document into a World. Class names are validated and
// ids must be unique; connection integrity is left to World.Validate.
func (d Document) Build(source string) (*World, error) {
	entities := make([]*Entity, 0, len(d.Entities))
	for i, ed := range d.Entities {
		if ed.ID == "" {
			return nil, &DocumentError{Source: source, Path: fmt.Sprintf("entities[%d].id", i), Message: "id is required"}
		}
		class, err := ParseClass(ed.Class)
		if err != nil {
			return nil, &DocumentError{Source: source, Path: fmt.Sprintf("entities[%d].class", i), Message: err.Error()}
		}
		entities = append(entities, &Entity{
			ID:          ed.ID,
			Class:       class,
			Type:        ed.Type,
			Name:        ed.Name,
			Parameters:  ed.Parameters,
			Connections: ed.Connections,
		})
	}

	w, err := New(entities...)
	if err != nil {
		return nil, &DocumentError{Source: source, Message: err.Error()}
	}
	return w, nil
}

// ReadDocument decodes a world from r in the given format.
// source names the input in error messages.
func ReadDocument(r io.Reader, format Format, source string) (*World, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, &DocumentError{Source: source, Message: err.Error()}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &DocumentError{Source: source, Message: err.Error()}
		}
	case FormatCUE:
		doc, err = decodeCUE(data, source)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}

	return doc.Build(source)
}

// WriteDocument encodes w to out in the given format. CUE output is not
// supported; CUE documents are input-only.
func WriteDocument(out io.Writer, w *World, format Format) error {
	doc := NewDocument(w)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot write %s world documents", format)
	}
}

// ReadFile loads a world document, choosing the format by extension.
func ReadFile(path string) (*World, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open world: %w", err)
	}
	defer f.Close()
	return ReadDocument(f, format, path)
}

// WriteFile saves w to path, choosing the format by extension.
func WriteFile(path string, w *World) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteDocument(&buf, w, format); err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write world: %w", err)
	}
	return nil
}
