package npc

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"gossip-lite/gossip"
)

//go:embed cast.yaml
var defaultCastYAML []byte

// PersonaRegistry holds all persona definitions.
type PersonaRegistry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewRegistry creates an empty registry.
func NewRegistry() *PersonaRegistry {
	return &PersonaRegistry{
		personas: make(map[string]*Persona),
	}
}

// NewDefaultRegistry returns a registry holding the built-in cast.
func NewDefaultRegistry() (*PersonaRegistry, error) {
	r := NewRegistry()
	if err := r.LoadFromYAML(defaultCastYAML); err != nil {
		return nil, fmt.Errorf("load built-in cast: %w", err)
	}
	return r, nil
}

// LoadFromFile loads personas from a .json, .yaml or .yml file.
func (r *PersonaRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return r.LoadFromYAML(data)
	default:
		return r.LoadFromJSON(data)
	}
}

// LoadFromJSON loads personas from a JSON array.
func (r *PersonaRegistry) LoadFromJSON(data []byte) error {
	var list []*Persona
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas JSON: %w", err)
	}
	r.add(list)
	return nil
}

// LoadFromYAML loads personas from a YAML document with a top-level
// "personas" list.
func (r *PersonaRegistry) LoadFromYAML(data []byte) error {
	var doc struct {
		Personas []*Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse personas YAML: %w", err)
	}
	r.add(doc.Personas)
	return nil
}

func (r *PersonaRegistry) add(list []*Persona) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		r.personas[p.ID] = p
	}
}

// Get returns a persona by ID.
func (r *PersonaRegistry) Get(id string) *Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns every persona ordered by seat, then ID.
func (r *PersonaRegistry) All() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seat != out[j].Seat {
			return out[i].Seat < out[j].Seat
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the total number of registered personas.
func (r *PersonaRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

// Cast resolves ids into personas in order. An empty id list selects the
// first n personas by seat.
func (r *PersonaRegistry) Cast(n int, ids ...string) ([]*Persona, error) {
	if len(ids) == 0 {
		all := r.All()
		if n > len(all) {
			return nil, fmt.Errorf("cast of %d requested, only %d personas", n, len(all))
		}
		return all[:n], nil
	}
	out := make([]*Persona, 0, len(ids))
	for _, id := range ids {
		p := r.Get(id)
		if p == nil {
			return nil, fmt.Errorf("unknown persona %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}

// Characters converts personas into engine cast members.
func Characters(personas []*Persona) []gossip.Character {
	out := make([]gossip.Character, 0, len(personas))
	for _, p := range personas {
		out = append(out, p.Character())
	}
	return out
}
