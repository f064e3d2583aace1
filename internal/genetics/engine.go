// Package genetics generates and combines creature genetic data.
package genetics

import (
	"encoding/binary"

	"creaturecore/pkg/domain"

	"golang.org/x/crypto/blake2b"
)

// Domain separation tags for randomness draws.
var (
	tagDNA    = []byte("dna")
	tagGender = []byte("gender")
)

// ParentLookup resolves parent creatures during combination. The service
// supplies its transaction snapshot so lookups observe consistent state.
type ParentLookup interface {
	FindCreature(id domain.ID) (domain.Creature, bool)
}

// Engine produces fresh genetic data and gender values and combines two
// parents' genetic data into offspring data.
type Engine struct {
	rand   domain.RandomnessSource
	height domain.HeightOracle
}

// NewEngine constructs an engine over the given randomness and height
// providers.
func NewEngine(rand domain.RandomnessSource, height domain.HeightOracle) *Engine {
	return &Engine{rand: rand, height: height}
}

// GenerateDNA derives a fresh 16-byte value as the BLAKE2b-128 digest of a
// domain-separated randomness draw concatenated with the current height.
// Two calls in the same evaluation context are only guaranteed distinct when
// the randomness output or height differs; the scheme is not hardened against
// validator-influenced randomness.
func (e *Engine) GenerateDNA() domain.DNA {
	out, _ := e.rand.Random(tagDNA)
	payload := make([]byte, 0, len(out)+8)
	payload = append(payload, out[:]...)
	payload = binary.BigEndian.AppendUint64(payload, e.height.Height())

	h, err := blake2b.New(domain.DNALength, nil)
	if err != nil {
		panic(err) // unkeyed blake2b with a valid size cannot fail
	}
	h.Write(payload)

	var dna domain.DNA
	copy(dna[:], h.Sum(nil))
	return dna
}

// GenerateGender draws fresh randomness under its own tag and maps the first
// byte modulo 2: 0 is male, anything else female.
func (e *Engine) GenerateGender() domain.Gender {
	out, _ := e.rand.Random(tagGender)
	if out[0]%2 == 0 {
		return domain.GenderMale
	}
	return domain.GenderFemale
}

// Combine looks up both parents and produces offspring genetic data under a
// fresh random mask. A missing parent fails with ErrNotFound and no mask is
// drawn.
func (e *Engine) Combine(view ParentLookup, parent1, parent2 domain.ID) (domain.DNA, error) {
	p1, ok := view.FindCreature(parent1)
	if !ok {
		return domain.DNA{}, domain.ErrNotFound{ID: parent1}
	}
	p2, ok := view.FindCreature(parent2)
	if !ok {
		return domain.DNA{}, domain.ErrNotFound{ID: parent2}
	}
	return CombineDNA(e.GenerateDNA(), p1.DNA, p2.DNA), nil
}

// CombineDNA applies the randomized bitwise inheritance rule: each child bit
// is taken from parent1 where the mask bit is 1 and from parent2 otherwise.
// Deterministic given the mask.
func CombineDNA(mask, dna1, dna2 domain.DNA) domain.DNA {
	var child domain.DNA
	for i := range child {
		child[i] = (mask[i] & dna1[i]) | (^mask[i] & dna2[i])
	}
	return child
}
