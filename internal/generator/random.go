package generator

import "math/rand/v2"

// Source is the randomness the generator consumes. Tests pass a seeded
// source; production uses an unseeded one.
type Source interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int
	// Float64 returns a uniform float64 in [0, 1)
	Float64() float64
}

type randSource struct {
	r *rand.Rand
}

func (s randSource) Intn(n int) int   { return s.r.IntN(n) }
func (s randSource) Float64() float64 { return s.r.Float64() }

// NewSource returns a deterministic source for seed
func NewSource(seed int64) Source {
	return randSource{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

type globalSource struct{}

func (globalSource) Intn(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// NewUnseededSource returns a source seeded from the runtime's entropy
func NewUnseededSource() Source {
	return globalSource{}
}

// SourceFor returns NewSource(seed) for a non-zero seed and an unseeded
// source otherwise.
func SourceFor(seed int64) Source {
	if seed == 0 {
		return NewUnseededSource()
	}
	return NewSource(seed)
}
