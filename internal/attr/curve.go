package attr

import "math"

// Curve is a diminishing-return conversion: raw/(raw+Divisor)*100 + BaseOffset.
// Divisor must be > 0.
type Curve struct {
	Divisor    float64
	BaseOffset float64
}

// ValidRange returns the half-open percent domain [BaseOffset, 100+BaseOffset) accepted by Raw.
func (c Curve) ValidRange() (lo, hi float64) {
	return c.BaseOffset, 100 + c.BaseOffset
}

// Percent converts a raw stat into its effective percentage.
// Negative or non-finite input returns BaseOffset, the curve value at raw=0.
func (c Curve) Percent(raw float64) float64 {
	if !validInput(raw, 0, math.Inf(1)) || c.Divisor <= 0 {
		return c.BaseOffset
	}
	return raw/(raw+c.Divisor)*100 + c.BaseOffset
}

// Raw inverts Percent. Percentages outside ValidRange return 0.
func (c Curve) Raw(percent float64) float64 {
	lo, hi := c.ValidRange()
	if !validInput(percent, lo, hi) || percent >= hi || c.Divisor <= 0 {
		return 0
	}
	x := (percent - c.BaseOffset) / 100
	return x * c.Divisor / (1 - x)
}

// validInput reports whether v is a finite number inside [lo, hi].
func validInput(v, lo, hi float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= lo && v <= hi
}
