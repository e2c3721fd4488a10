package npc

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed scenarios.json
var defaultScenariosJSON []byte

// ScenarioRegistry holds scenario presets in load order.
type ScenarioRegistry struct {
	mu        sync.RWMutex
	scenarios map[string]*ScenarioConfig
	order     []string
}

func NewScenarioRegistry() *ScenarioRegistry {
	return &ScenarioRegistry{
		scenarios: make(map[string]*ScenarioConfig),
	}
}

// NewDefaultScenarioRegistry returns the built-in presets.
func NewDefaultScenarioRegistry() (*ScenarioRegistry, error) {
	r := NewScenarioRegistry()
	if err := r.LoadFromJSON(defaultScenariosJSON); err != nil {
		return nil, fmt.Errorf("load built-in scenarios: %w", err)
	}
	return r, nil
}

// LoadFromFile loads scenarios from a JSON file.
func (r *ScenarioRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenarios file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads scenarios from raw JSON bytes.
func (r *ScenarioRegistry) LoadFromJSON(data []byte) error {
	var list []*ScenarioConfig
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse scenarios JSON: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range list {
		if s == nil || s.ID == "" {
			continue
		}
		if _, ok := r.scenarios[s.ID]; !ok {
			r.order = append(r.order, s.ID)
		}
		r.scenarios[s.ID] = s
	}
	return nil
}

// Get returns a scenario by ID.
func (r *ScenarioRegistry) Get(id string) *ScenarioConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scenarios[id]
}

// Count returns the total number of scenarios.
func (r *ScenarioRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenarios)
}

// All returns all scenarios in load order.
func (r *ScenarioRegistry) All() []*ScenarioConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ScenarioConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.scenarios[id])
	}
	return out
}
