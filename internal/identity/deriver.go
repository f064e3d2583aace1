// Package identity derives content-addressed creature identifiers.
package identity

import (
	"creaturecore/pkg/domain"

	"golang.org/x/crypto/blake2b"
)

// Derive computes the identifier for a creature as the BLAKE2b-256 digest of
// its canonical byte encoding. Pure function of the record content: two
// structurally equal records always yield the same identifier, so uniqueness
// must come from content differing, not from the deriver.
func Derive(c domain.Creature) domain.ID {
	return domain.ID(blake2b.Sum256(domain.CanonicalBytes(c)))
}
