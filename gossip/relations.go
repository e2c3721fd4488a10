package gossip

import "gossip-lite/bounded"

// relations holds true and perceived affinities. All writes go through
// setAffinity/setPerceived so that perceived[i][i] mirrors affinity[i].
type relations struct {
	n         int
	affinity  [][]float64   // [from][to]
	perceived [][][]float64 // [perceiver][from][to]
}

func newRelations(n int) *relations {
	r := &relations{
		n:         n,
		affinity:  make([][]float64, n),
		perceived: make([][][]float64, n),
	}
	for i := 0; i < n; i++ {
		r.affinity[i] = make([]float64, n)
		r.perceived[i] = make([][]float64, n)
		for j := 0; j < n; j++ {
			r.perceived[i][j] = make([]float64, n)
		}
	}
	return r
}

func (r *relations) setAffinity(from, to int, v float64) {
	if from == to {
		return
	}
	v = bounded.Clamp(v)
	r.affinity[from][to] = v
	r.perceived[from][from][to] = v
}

// nudge composes delta into affinity[from][to].
func (r *relations) nudge(from, to int, delta float64) {
	r.setAffinity(from, to, bounded.Compose(r.affinity[from][to], delta))
}

// setPerceived never overwrites a character's knowledge of itself.
func (r *relations) setPerceived(perceiver, from, to int, v float64) {
	if perceiver == from {
		return
	}
	r.perceived[perceiver][from][to] = bounded.Clamp(v)
}

func (r *relations) affinityLevels() [][]int {
	out := make([][]int, r.n)
	for i := range r.affinity {
		out[i] = make([]int, r.n)
		for j, v := range r.affinity[i] {
			out[i][j] = bounded.BoundedToLevel(v)
		}
	}
	return out
}

func (r *relations) perceivedLevels(perceiver int) [][]int {
	out := make([][]int, r.n)
	for i := range r.perceived[perceiver] {
		out[i] = make([]int, r.n)
		for j, v := range r.perceived[perceiver][i] {
			out[i][j] = bounded.BoundedToLevel(v)
		}
	}
	return out
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = append([]float64{}, m[i]...)
	}
	return out
}
