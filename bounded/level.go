package bounded

// Levels is the number of discrete affinity bins over (-1,1).
const Levels = 9

// edge replaces the exact endpoints ±1 produced by LevelToBounded.
const edge = 0.98

const levelEpsilon = 1e-9

// LevelToBounded returns the representative value of bin k.
func LevelToBounded(k int) float64 {
	b := 2*float64(k)/Levels - 1
	if b <= -1 {
		return -edge
	}
	if b >= 1 {
		return edge
	}
	return b
}

// BoundedToLevel returns the bin containing b, always in [0, Levels).
func BoundedToLevel(b float64) int {
	return ClampLevel(int(Levels*(1+b)/2 + levelEpsilon))
}

// ClampLevel forces k into [0, Levels).
func ClampLevel(k int) int {
	if k < 0 {
		return 0
	}
	if k > Levels-1 {
		return Levels - 1
	}
	return k
}
