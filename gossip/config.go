package gossip

import "fmt"

// Tunables are the constants of the trust and deception model.
type Tunables struct {
	DirectAgreementBonus float64 // nudge applied after a direct statement
	DisagreementScale    float64
	FlatteryBonus        float64 // nudge applied after an indirect statement
	FlatteryScale        float64
	ConsensusBonus       float64 // per-entry nudge before deviation is subtracted
	SuspicionScale       float64
	AsymmetryScale       float64 // spread of Affinity[j][i] around Affinity[i][j]
	PerceptionNoise      float64
	DifficultyBiasScale  float64
}

func DefaultTunables() Tunables {
	return Tunables{
		DirectAgreementBonus: 0.08,
		DisagreementScale:    4,
		FlatteryBonus:        0.08,
		FlatteryScale:        4,
		ConsensusBonus:       0.1,
		SuspicionScale:       10,
		AsymmetryScale:       0.25,
		PerceptionNoise:      0.5,
		DifficultyBiasScale:  0.25,
	}
}

type Config struct {
	// Cast
	Characters int         // 0 => len(Cast)
	Cast       []Character // nil => DefaultCast()
	Player     int

	Difficulty Difficulty

	// MaxTurns 0 => 3*(Characters-3), at least 1
	MaxTurns int

	// NpcTurnTicks is the number of resumes an NPC-to-NPC call lasts
	// (0 => DefaultNpcTurnTicks). InstantNpcTurns rotates without waiting.
	NpcTurnTicks    int
	InstantNpcTurns bool

	// DeceivePlayer routes NPC statements to the player through the planner.
	DeceivePlayer bool

	Tunables Tunables // zero => DefaultTunables()

	// RNG seed (0 => time-based)
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Cast == nil {
		c.Cast = DefaultCast()
	}
	if c.Characters == 0 {
		c.Characters = len(c.Cast)
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = 3 * (c.Characters - 3)
		if c.MaxTurns < 1 {
			c.MaxTurns = 1
		}
	}
	if c.NpcTurnTicks == 0 {
		c.NpcTurnTicks = DefaultNpcTurnTicks
	}
	if c.InstantNpcTurns {
		c.NpcTurnTicks = 0
	}
	if c.Tunables == (Tunables{}) {
		c.Tunables = DefaultTunables()
	}
	return c
}

func (c Config) validate() error {
	if c.Characters < MinCharacters {
		return fmt.Errorf("Characters must be >= %d", MinCharacters)
	}
	if c.Characters > len(c.Cast) {
		return fmt.Errorf("Characters %d exceeds cast size %d", c.Characters, len(c.Cast))
	}
	if c.Player < 0 || c.Player >= c.Characters {
		return fmt.Errorf("invalid player index %d", c.Player)
	}
	if _, ok := DifficultyDictionary[c.Difficulty]; !ok {
		return fmt.Errorf("invalid difficulty %d", c.Difficulty)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("MaxTurns must be >= 0")
	}
	if c.NpcTurnTicks < 0 {
		return fmt.Errorf("NpcTurnTicks must be >= 0")
	}
	if c.Tunables.DisagreementScale <= 0 || c.Tunables.FlatteryScale <= 0 {
		return fmt.Errorf("invalid tunables: scales must be > 0")
	}
	for i := 0; i < c.Characters; i++ {
		if c.Cast[i].Name == "" {
			return fmt.Errorf("cast member %d has no name", i)
		}
	}
	return nil
}
