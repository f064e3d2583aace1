package domain

import "encoding/binary"

// Canonical byte layout of a creature record. Identity derivation and
// structural equality operate on exactly these fields, in this order:
//
//	dna[16] ‖ gender(1: 0=male, 1=female) ‖ price-presence(1: 0/1) ‖
//	price(8, big-endian, only when present) ‖ owner-len(4, big-endian) ‖ owner
//
// ID, CreatedAt, and UpdatedAt are bookkeeping and never participate, so two
// records minted with identical dna, gender, price, and owner encode
// identically and collide on insert.
func AppendCanonical(dst []byte, c Creature) []byte {
	dst = append(dst, c.DNA[:]...)
	if c.Gender == GenderFemale {
		dst = append(dst, 1)
	} else {
		dst = append(dst, 0)
	}
	if c.Price != nil {
		dst = append(dst, 1)
		dst = binary.BigEndian.AppendUint64(dst, *c.Price)
	} else {
		dst = append(dst, 0)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(c.Owner)))
	dst = append(dst, c.Owner...)
	return dst
}

// CanonicalBytes returns the canonical encoding of the creature.
func CanonicalBytes(c Creature) []byte {
	// dna + gender + presence + price + owner length prefix
	return AppendCanonical(make([]byte, 0, DNALength+1+1+8+4+len(c.Owner)), c)
}

// Equal reports structural equality over the canonical fields.
func Equal(a, b Creature) bool {
	if a.DNA != b.DNA || a.Gender != b.Gender || a.Owner != b.Owner {
		return false
	}
	switch {
	case a.Price == nil && b.Price == nil:
		return true
	case a.Price == nil || b.Price == nil:
		return false
	default:
		return *a.Price == *b.Price
	}
}
