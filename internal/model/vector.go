package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Component indexes into a Vec6
const (
	FX = iota
	FY
	FZ
	MX
	MY
	MZ
)

// ComponentNames are the report labels for the six Vec6 components
var ComponentNames = [6]string{"FX", "FY", "FZ", "MX", "MY", "MZ"}

// Vec6 is a force/moment vector: force X/Y/Z followed by moment X/Y/Z
type Vec6 [6]float64

// Add adds o to v elementwise
func (v *Vec6) Add(o Vec6) {
	floats.Add(v[:], o[:])
}

// Scaled returns v multiplied by f
func (v Vec6) Scaled(f float64) Vec6 {
	floats.Scale(f, v[:])
	return v
}

// IsZero reports whether every component is exactly zero
func (v Vec6) IsZero() bool {
	return v == Vec6{}
}

func (v Vec6) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g, %g, %g]", v[0], v[1], v[2], v[3], v[4], v[5])
}

// Sum returns the elementwise sum of vs
func Sum(vs ...Vec6) Vec6 {
	var total Vec6
	for _, v := range vs {
		total.Add(v)
	}
	return total
}
