package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/fretwise/internal/theory"
)

var setNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Document is the YAML form of a chord set.
type Document struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Chords      []ChordDocument `yaml:"chords" json:"chords"`
}

// ChordDocument is the YAML form of a chord template.
type ChordDocument struct {
	Name    string `yaml:"name" json:"name"`
	Offsets []int  `yaml:"offsets,flow" json:"offsets"`
}

// Validate validates the document.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 64), validation.Match(setNameRe)),
		validation.Field(&d.Chords, validation.Required, validation.By(uniqueChordNames)),
	)
}

// Validate validates one chord entry.
func (c ChordDocument) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&c.Offsets,
			validation.Required,
			validation.Each(validation.Min(0)),
			validation.By(rootFirst),
			validation.By(distinctPitchClasses),
		),
	)
}

func uniqueChordNames(value any) error {
	chords, _ := value.([]ChordDocument)
	seen := make(map[string]struct{}, len(chords))
	for _, c := range chords {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate chord %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

func rootFirst(value any) error {
	offs, _ := value.([]int)
	if len(offs) > 0 && offs[0] != 0 {
		return errors.New("first offset must be 0")
	}
	return nil
}

func distinctPitchClasses(value any) error {
	offs, _ := value.([]int)
	seen := make(map[int]struct{}, len(offs))
	for _, o := range offs {
		pc := ((o % theory.Count) + theory.Count) % theory.Count
		if _, dup := seen[pc]; dup {
			return fmt.Errorf("offset %d repeats a pitch class", o)
		}
		seen[pc] = struct{}{}
	}
	return nil
}

// Decode parses and validates a chord-set document.
func Decode(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", doc.Name, err)
	}
	return &doc, nil
}

// ChordSet converts a validated document into an immutable chord set.
func (d *Document) ChordSet() (*theory.ChordSet, error) {
	templates := make([]theory.ChordTemplate, 0, len(d.Chords))
	for _, c := range d.Chords {
		t, err := theory.NewChordTemplate(c.Name, c.Offsets...)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", d.Name, err)
		}
		templates = append(templates, t)
	}
	return theory.NewChordSet(d.Name, d.Description, templates...)
}

// Parse decodes data straight into a chord set.
func Parse(data []byte) (*theory.ChordSet, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return doc.ChordSet()
}

// FromChordSet builds the document form of set.
func FromChordSet(set *theory.ChordSet) Document {
	doc := Document{Name: set.Name(), Description: set.Description()}
	for _, t := range set.Templates() {
		doc.Chords = append(doc.Chords, ChordDocument{Name: t.Name(), Offsets: t.Offsets()})
	}
	return doc
}

// Encode renders set as YAML.
func Encode(set *theory.ChordSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromChordSet(set)); err != nil {
		return nil, fmt.Errorf("catalog: encode %s: %w", set.Name(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
