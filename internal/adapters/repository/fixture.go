package repository

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/okian/ringside/internal/domain/model"
)

// Fixture is a complete dataset in YAML form, used to seed a MemStore.
type Fixture struct {
	Coaches  []model.Coach   `yaml:"coaches"`
	Athletes []model.Athlete `yaml:"athletes"`
	Events   []model.Event   `yaml:"events"`
	Sessions []model.Session `yaml:"sessions"`
}

// ReadFixture decodes a YAML fixture.
func ReadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer fh.Close()
	return ReadFixture(fh)
}

// WriteFixture encodes f as YAML.
func WriteFixture(w io.Writer, f Fixture) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}
