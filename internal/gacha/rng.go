package gacha

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the uniform draw so the sampler stays a pure
// function of (counters, config, randomness). Production uses crypto/rand;
// tests inject a seeded source.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto source unavailable, fall back to math/rand/v2
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the production random source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source for tests and simulations.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
