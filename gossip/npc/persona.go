package npc

import (
	"gossip-lite/bounded"
	"gossip-lite/gossip"
)

// TraitProfile holds the personality traits the simulation reads.
type TraitProfile struct {
	Dishonesty  float64 `json:"dishonesty" yaml:"dishonesty"`   // > 0 lies to please, < 0 blunt
	Gullibility float64 `json:"gullibility" yaml:"gullibility"` // 1 swallows anything, < 0 extra suspicious
	Vanity      float64 `json:"vanity" yaml:"vanity"`           // weight of flattery
}

// Phrasebook is the persona's vocabulary for rendering statements.
type Phrasebook struct {
	// GuyWords and GalWords describe someone at each affinity level.
	GuyWords []string `json:"guyWords" yaml:"guyWords"`
	GalWords []string `json:"galWords" yaml:"galWords"`
	// DirectFeedback is indexed [likeWhatIHear][suspicion].
	DirectFeedback [][]string `json:"directFeedback" yaml:"directFeedback"`
	// IndirectFeedback is indexed [2-suspicion].
	IndirectFeedback []string `json:"indirectFeedback" yaml:"indirectFeedback"`
}

// Persona defines a named character.
type Persona struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Gender  string       `json:"gender" yaml:"gender"` // "guy" or "gal"
	Tagline string       `json:"tagline" yaml:"tagline"`
	Seat    int          `json:"seat" yaml:"seat"` // position in the default cast
	Traits  TraitProfile `json:"traits" yaml:"traits"`
	Phrases Phrasebook   `json:"phrases" yaml:"phrases"`
}

// Character converts the persona into an engine cast member.
func (p *Persona) Character() gossip.Character {
	return gossip.Character{
		Name:        p.Name,
		Dishonesty:  p.Traits.Dishonesty,
		Gullibility: p.Traits.Gullibility,
		Vanity:      p.Traits.Vanity,
	}
}

// Describe is how p would describe someone of the given gender at level.
func (p *Persona) Describe(gender string, level int) string {
	words := p.Phrases.GalWords
	if gender == "guy" {
		words = p.Phrases.GuyWords
	}
	level = bounded.ClampLevel(level)
	if level < len(words) && words[level] != "" {
		return words[level]
	}
	return LevelText(level)
}

func (p *Persona) directFeedback(like, suspicion int) string {
	if like < 0 || like >= len(p.Phrases.DirectFeedback) {
		return ""
	}
	row := p.Phrases.DirectFeedback[like]
	if suspicion < 0 || suspicion >= len(row) {
		return ""
	}
	return row[suspicion]
}

func (p *Persona) indirectFeedback(suspicion int) string {
	i := 2 - suspicion
	if i < 0 || i >= len(p.Phrases.IndirectFeedback) {
		return ""
	}
	return p.Phrases.IndirectFeedback[i]
}

var levelTexts = [bounded.Levels]string{
	"hateful", "nasty", "not nice", "unpleasant", "so-so", "pleasant", "nice", "great", "adorable",
}

// LevelText is the neutral name of an affinity level.
func LevelText(level int) string {
	return levelTexts[bounded.ClampLevel(level)]
}
