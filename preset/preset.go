// Package preset stores named UPI expressions and persists them as YAML
package preset

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidName = errors.New("invalid preset name")
	ErrNotFound    = errors.New("preset not found")
	ErrProtected   = errors.New("factory preset cannot be removed")
	ErrExpression  = errors.New("invalid preset expression")
)

// MaxNameLen bounds preset names
const MaxNameLen = 64

const invalidNameChars = `<>:"/\|?*`

// Preset is one named expression
type Preset struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category,omitempty"`
	Description string `yaml:"description,omitempty"`
	Expression  string `yaml:"expression"`
	Factory     bool   `yaml:"-"`
}

// Validator checks an expression without side effects; *upi.Parser satisfies it
type Validator interface {
	Validate(expr string) error
}

// document is the on-disk layout
type document struct {
	Presets []Preset `yaml:"presets"`
}

// Store is a concurrency-safe preset collection backed by one YAML file
type Store struct {
	mu        sync.RWMutex
	path      string
	validator Validator
	presets   map[string]Preset
}

// NewStore creates a store seeded with the factory presets; v may be nil to skip validation
func NewStore(path string, v Validator) *Store {
	s := &Store{
		path:      path,
		validator: v,
		presets:   make(map[string]Preset),
	}
	for _, p := range Factory() {
		s.presets[p.Name] = p
	}
	return s
}

// Factory returns the built-in presets
func Factory() []Preset {
	presets := []Preset{
		{"Tresillo Classic", "Basic Patterns", "Classic 3-against-8 Afro-Cuban tresillo", "E(3,8)", true},
		{"Son Clave", "Basic Patterns", "2-3 son clave as two scenes", "E(3,8)|E(2,8)", true},
		{"Cinquillo", "Basic Patterns", "Five-note Cuban pattern", "E(5,8)", true},
		{"Tresillo Growth", "Progressive", "Tresillo growing to five onsets", "E(3,8)>5", true},
		{"Euclidean Evolution", "Progressive", "Single onset evolving toward eight", "E(1,16)>8", true},
		{"Rotating Rhythm", "Progressive", "Tresillo with progressive rotation", "E(3,8)+1", true},
		{"Accented Tresillo", "Accent Patterns", "Tresillo with the first onset accented", "{100}E(3,8)", true},
		{"Polyrhythmic Accents", "Accent Patterns", "Five-onset accent cycle over cinquillo", "{10010}E(5,8)", true},
		{"Binary Accents", "Accent Patterns", "Alternating accents", "{10}E(4,8)", true},
		{"Progressive Scenes", "Advanced", "Scene cycling with a progressive first scene", "E(3,8)>5|E(5,13)|B(7,16)", true},
		{"Accented Evolution", "Advanced", "Progressive pattern under an accent layer", "{101}E(1,8)>8", true},
		{"Barlow Transformation", "Advanced", "Barlow indispensability progression", "E(3,8)B>8", true},
	}
	return presets
}

// ValidName reports whether name can be stored and saved
func ValidName(name string) bool {
	if name == "" || len(name) > MaxNameLen || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.ContainsAny(name, invalidNameChars)
}

// Put adds or replaces a user preset
func (s *Store) Put(p Preset) error {
	if !ValidName(p.Name) {
		return fmt.Errorf("%q: %w", p.Name, ErrInvalidName)
	}
	if s.validator != nil {
		if err := s.validator.Validate(p.Expression); err != nil {
			return fmt.Errorf("preset %q: %w: %v", p.Name, ErrExpression, err)
		}
	}
	p.Factory = false

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.presets[p.Name]; ok && existing.Factory {
		return fmt.Errorf("%q: %w", p.Name, ErrProtected)
	}
	s.presets[p.Name] = p
	return nil
}

// Get returns the preset called name
func (s *Store) Get(name string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[name]
	return p, ok
}

// Remove deletes a user preset
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if p.Factory {
		return fmt.Errorf("%q: %w", name, ErrProtected)
	}
	delete(s.presets, name)
	return nil
}

// List returns presets ordered by category, then name
func (s *Store) List() []Preset {
	s.mu.RLock()
	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories returns the distinct categories in sorted order
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	for _, p := range s.List() {
		seen[p.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Save writes the user presets to the store path; factory presets are never written
func (s *Store) Save() error {
	var doc document
	for _, p := range s.List() {
		if !p.Factory {
			doc.Presets = append(doc.Presets, p)
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	log.Printf("preset: saved %d presets to %s", len(doc.Presets), s.path)
	return nil
}

// Load merges user presets from the store path
// A missing file is not an error; invalid entries are skipped and logged
func (s *Store) Load() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("yaml unmarshal %s: %w", s.path, err)
	}

	loaded := 0
	for _, p := range doc.Presets {
		if err := s.Put(p); err != nil {
			log.Printf("preset: skipping %q: %v", p.Name, err)
			continue
		}
		loaded++
	}
	log.Printf("preset: loaded %d presets from %s", loaded, s.path)
	return loaded, nil
}
