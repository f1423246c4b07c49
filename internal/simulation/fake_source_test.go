package simulation

// fixedSource returns the same draw every time.
type fixedSource struct {
	uniform float64
	normal  float64
	index   int
}

func (s fixedSource) Float64() float64     { return s.uniform }
func (s fixedSource) NormFloat64() float64 { return s.normal }
func (s fixedSource) IntN(n int) int       { return min(s.index, n-1) }
