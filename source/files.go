package source

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Decoder turns the content of a file into flat key/value pairs.
type Decoder func(data []byte) (Map, error)

// DefaultDecoders returns the built-in decoders keyed by file extension.
func DefaultDecoders() map[string]Decoder {
	return map[string]Decoder{
		"env":  DecodeDotEnv,
		"yaml": DecodeYAML,
		"yml":  DecodeYAML,
		"json": DecodeJSON,
	}
}

// DecodeDotEnv decodes a .env document.
func DecodeDotEnv(data []byte) (Map, error) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, err
	}

	return Map(values), nil
}

// DecodeYAML decodes a YAML document and flattens it.
func DecodeYAML(data []byte) (Map, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return Flatten(raw)
}

// DecodeJSON decodes a JSON document and flattens it. Numbers keep their
// literal text.
func DecodeJSON(data []byte) (Map, error) {
	var raw any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return Flatten(raw)
}

// Flatten converts a decoded document into flat key/value pairs. Keys of
// nested maps are joined with "_", lists of scalars are joined with ",", and
// lists holding maps or lists are flattened by index.
func Flatten(doc any) (Map, error) {
	out := make(Map)

	switch doc.(type) {
	case nil:
		return out, nil
	case map[string]any, map[any]any:
	default:
		return nil, fmt.Errorf("source: document root must be a mapping, got %T", doc)
	}

	if err := flatten("", doc, out); err != nil {
		return nil, err
	}

	return out, nil
}

func flatten(prefix string, v any, out Map) error {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			if err := flatten(joinKey(prefix, k), item, out); err != nil {
				return err
			}
		}
	case map[any]any:
		for k, item := range v {
			if err := flatten(joinKey(prefix, fmt.Sprint(k)), item, out); err != nil {
				return err
			}
		}
	case []any:
		if !scalars(v) {
			for i, item := range v {
				if err := flatten(joinKey(prefix, strconv.Itoa(i)), item, out); err != nil {
					return err
				}
			}
			return nil
		}

		items := make([]string, len(v))
		for i, item := range v {
			items[i] = scalar(item)
		}
		out[prefix] = strings.Join(items, ",")
	default:
		if prefix == "" {
			return errors.New("source: scalar without a key")
		}
		out[prefix] = scalar(v)
	}

	return nil
}

func scalars(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, map[any]any, []any:
			return false
		}
	}

	return true
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "_" + key
}

// File is a settings file registered with Files.
type File struct {
	Path     string
	Decode   Decoder
	Optional bool
}

// Document is the decoded content of one file.
type Document struct {
	Path   string
	Values Map
}

// Files is an ordered set of settings files, each decoded by the decoder
// registered for its extension.
type Files struct {
	decoders map[string]Decoder
	files    []File
}

// NewFiles returns an empty file set. A nil decoders map registers
// DefaultDecoders.
func NewFiles(decoders map[string]Decoder) (*Files, error) {
	if decoders == nil {
		decoders = DefaultDecoders()
	}

	f := &Files{
		decoders: make(map[string]Decoder),
		files:    make([]File, 0),
	}

	for format, decoder := range decoders {
		if err := f.RegisterDecoder(format, decoder); err != nil {
			return nil, fmt.Errorf("failed to register decoder for format %q: %w", format, err)
		}
	}

	return f, nil
}

// RegisterDecoder registers a decoder for the given extension.
func (f *Files) RegisterDecoder(format string, decoder Decoder) error {
	if format == "" {
		return errors.New("format cannot be empty")
	}

	if decoder == nil {
		return errors.New("decoder cannot be nil")
	}

	format = strings.TrimPrefix(format, ".")

	if _, ok := f.decoders[format]; ok {
		return fmt.Errorf("decoder for format %q already registered", format)
	}

	f.decoders[format] = decoder

	return nil
}

// AddFile appends a file to the set. Optional files that do not exist are
// skipped when the set is read.
func (f *Files) AddFile(path string, optional bool) error {
	if path == "" {
		return nil
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	decoder, ok := f.decoders[ext]
	if !ok {
		return fmt.Errorf("no decoder registered for format %q", ext)
	}

	f.files = append(f.files, File{Path: path, Decode: decoder, Optional: optional})

	return nil
}

// AddFiles appends multiple files to the set.
func (f *Files) AddFiles(paths []string, optional bool) error {
	for _, path := range paths {
		if err := f.AddFile(path, optional); err != nil {
			return fmt.Errorf("failed to add file %q: %w", path, err)
		}
	}

	return nil
}

// Read decodes every file once, in registration order.
func (f *Files) Read() ([]Document, error) {
	docs := make([]Document, 0, len(f.files))

	for _, file := range f.files {
		data, err := os.ReadFile(file.Path)
		if err != nil {
			if file.Optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("source: read %s: %w", file.Path, err)
		}

		values, err := file.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("source: decode %s: %w", file.Path, err)
		}

		docs = append(docs, Document{Path: file.Path, Values: values})
	}

	return docs, nil
}

// Snapshot reads every file and merges them. Later files override keys of
// earlier ones.
func (f *Files) Snapshot() (Map, error) {
	docs, err := f.Read()
	if err != nil {
		return nil, err
	}

	m := make(Map)
	for _, doc := range docs {
		maps.Copy(m, doc.Values)
	}

	return m, nil
}
