// Package bounded implements arithmetic over the open interval (-1, 1).
//
// Values are mapped to an unbounded line, added there and mapped back, so
// repeated composition saturates toward ±1 without ever reaching it.
package bounded

// Limit is the largest magnitude a composed value may take.
const Limit = 1 - 1e-12

// ToUnbounded maps b ∈ (-1,1) onto the real line.
func ToUnbounded(b float64) float64 {
	b = Clamp(b)
	if b > 0 {
		return 1/(1-b) - 1
	}
	return 1 - 1/(1+b)
}

// ToBounded is the inverse of ToUnbounded.
func ToBounded(u float64) float64 {
	var b float64
	if u > 0 {
		b = 1 - 1/(1+u)
	} else {
		b = 1/(1-u) - 1
	}
	return Clamp(b)
}

// Compose adds two bounded values in unbounded space. 0 is the identity.
func Compose(a, b float64) float64 {
	if a == 0 {
		return Clamp(b)
	}
	if b == 0 {
		return Clamp(a)
	}
	return ToBounded(ToUnbounded(a) + ToUnbounded(b))
}

// Blend interpolates from `from` (w=-1) to `to` (w=1). w=0 is the midpoint.
func Blend(from, to, w float64) float64 {
	if from == to {
		return from
	}
	if w < -1 {
		w = -1
	} else if w > 1 {
		w = 1
	}
	f := 1 - (1-w)/2
	return to*f + from*(1-f)
}

// Clamp pulls x into [-Limit, Limit].
func Clamp(x float64) float64 {
	if x > Limit {
		return Limit
	}
	if x < -Limit {
		return -Limit
	}
	return x
}
