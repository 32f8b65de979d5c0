package format

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/store"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

type descriptorFile struct {
	Formats []Descriptor `yaml:"formats"`
}

// Registry holds the known format descriptors by name.
type Registry struct {
	formats map[string]*Descriptor
	builtin map[string]bool
}

// NewRegistry returns a registry holding the built-in formats.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		formats: make(map[string]*Descriptor),
		builtin: make(map[string]bool),
	}
	descriptors, err := Decode(bytes.NewReader(builtinYAML))
	if err != nil {
		return nil, fmt.Errorf("built-in formats: %w", err)
	}
	for _, d := range descriptors {
		r.formats[d.Name] = d
		r.builtin[d.Name] = true
	}
	return r, nil
}

// Decode reads a descriptor file and validates every entry.
func Decode(r io.Reader) ([]*Descriptor, error) {
	var file descriptorFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("error parsing formats: %w", err)
	}

	out := make([]*Descriptor, 0, len(file.Formats))
	for i := range file.Formats {
		d := file.Formats[i]
		d.normalize()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, nil
}

// LoadFile merges the descriptors of a user file into the registry. A user
// descriptor replaces a built-in one with the same name.
func (r *Registry) LoadFile(s store.Store, filename string, logger logging.Logger) error {
	logger = logging.OrDefault(logger)

	rc, path, err := s.Open(filename)
	if err != nil {
		return err
	}
	defer rc.Close()

	descriptors, err := Decode(rc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, d := range descriptors {
		if r.builtin[d.Name] {
			logger.Info("User format replaces built-in", logging.F(logging.FieldFormat, d.Name))
		}
		r.formats[d.Name] = d
		delete(r.builtin, d.Name)
	}
	logger.Debug("Loaded formats", logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(descriptors)))
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.formats[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, r.Names())
	}
	return d, nil
}

// Names returns the registered format names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name refers to an unmodified built-in format.
func (r *Registry) IsBuiltin(name string) bool {
	return r.builtin[name]
}
