package core

import "math"

// Stroke is one drawn line segment in room-local (unscaled) coordinates.
type Stroke struct {
	FromX float64
	FromY float64
	ToX   float64
	ToY   float64
	Color string
	Size  float64
}

// Valid reports whether the segment has finite endpoints and a positive width.
func (s Stroke) Valid() bool {
	for _, v := range [...]float64{s.FromX, s.FromY, s.ToX, s.ToY, s.Size} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.Size > 0
}

func validStrokes(strokes []Stroke) bool {
	for _, s := range strokes {
		if !s.Valid() {
			return false
		}
	}
	return true
}
