package gossip

// Character is a fixed member of the cast. Traits are free reals, not
// bounded values.
type Character struct {
	Name        string
	Dishonesty  float64
	Gullibility float64
	Vanity      float64
}

// DefaultCast returns the six-character cast; index 0 is the player.
func DefaultCast() []Character {
	return []Character{
		{Name: "Bara", Dishonesty: 0, Gullibility: 0.5, Vanity: 0},
		{Name: "Owen", Dishonesty: 0.8, Gullibility: 0.2, Vanity: 0.4},
		{Name: "Max", Dishonesty: 0, Gullibility: 0.8, Vanity: 0.7},
		{Name: "Ella", Dishonesty: -0.7, Gullibility: 0.5, Vanity: 0.3},
		{Name: "Mort", Dishonesty: -0.8, Gullibility: -0.25, Vanity: 0.5},
		{Name: "Zoe", Dishonesty: 0, Gullibility: 0.7, Vanity: 0.8},
	}
}
