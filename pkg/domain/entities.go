// Package domain defines the core persistent entities, value types, error
// taxonomy, and rule evaluation primitives used by creaturecore.
package domain

import (
	"encoding/hex"
	"fmt"
	"time"
)

// AccountID identifies a controlling account in the host ledger.
type AccountID string

// Gender is derived once from a creature's genetic data and stored for fast access.
type Gender string

// Canonical gender values. Parity of the first DNA byte decides: even is male,
// odd is female.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DNALength is the fixed size of a creature's genetic data in bytes.
const DNALength = 16

// DNA holds a creature's genetic data. Immutable after creation.
type DNA [DNALength]byte

// Gender returns the gender encoded by the DNA's first byte.
func (d DNA) Gender() Gender {
	if d[0]%2 == 0 {
		return GenderMale
	}
	return GenderFemale
}

// String returns the lowercase hex encoding of the DNA.
func (d DNA) String() string { return hex.EncodeToString(d[:]) }

// MarshalText encodes the DNA as lowercase hex.
func (d DNA) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex-encoded DNA value.
func (d *DNA) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode dna: %w", err)
	}
	if len(raw) != DNALength {
		return fmt.Errorf("decode dna: expected %d bytes, got %d", DNALength, len(raw))
	}
	copy(d[:], raw)
	return nil
}

// IDLength is the size of a derived creature identifier in bytes.
const IDLength = 32

// ID is a content-derived unique key for a creature: the BLAKE2b-256 digest
// of the creature's canonical byte encoding at the moment of creation.
type ID [IDLength]byte

// String returns the lowercase hex encoding of the identifier.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether the identifier is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

// MarshalText encodes the identifier as lowercase hex.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex-encoded identifier.
func (id *ID) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if len(raw) != IDLength {
		return fmt.Errorf("decode id: expected %d bytes, got %d", IDLength, len(raw))
	}
	copy(id[:], raw)
	return nil
}

// ParseID decodes an identifier from its hex string form.
func ParseID(s string) (ID, error) {
	var id ID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return ID{}, err
	}
	return id, nil
}

// Creature is a uniquely identified digital asset with genetic data, a derived
// gender, an owner, and an optional sale price. Creatures are created exactly
// once (mint or breed) and are never deleted by this core.
type Creature struct {
	ID        ID        `json:"id"`
	DNA       DNA       `json:"dna"`
	Price     *uint64   `json:"price,omitempty"`
	Gender    Gender    `json:"gender"`
	Owner     AccountID `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ForSale reports whether the creature currently has an asking price.
func (c Creature) ForSale() bool { return c.Price != nil }

// CloneCreature returns a deep copy of the creature.
func CloneCreature(c Creature) Creature {
	cp := c
	if c.Price != nil {
		price := *c.Price
		cp.Price = &price
	}
	return cp
}
