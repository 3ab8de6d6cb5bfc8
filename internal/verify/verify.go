// Package verify checks marking tables produced by the parallel strategies
// against an independent single-threaded sieve.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

var (
	ErrLength   = errors.New("verify: table length does not match reference")
	ErrMismatch = errors.New("verify: table does not match reference")
)

// Reference sieves [0, n] the classic way, starting each prime at p*p.
// Bit i is set iff i is prime.
func Reference(n int) *bitset.BitSet {
	if n < 0 {
		return bitset.New(0)
	}
	size := uint(n + 1)
	composite := bitset.New(size)

	for p := uint(2); p*p < size; p++ {
		if composite.Test(p) {
			continue
		}
		for j := p * p; j < size; j += p {
			composite.Set(j)
		}
	}

	primes := composite.Complement()
	primes.Clear(0)
	if size > 1 {
		primes.Clear(1)
	}
	return primes
}

// Compare returns nil when table[i] is true exactly for the primes in ref.
func Compare(table []bool, ref *bitset.BitSet) error {
	if uint(len(table)) != ref.Len() {
		return fmt.Errorf("%w: table has %d cells, reference has %d", ErrLength, len(table), ref.Len())
	}

	first, diffs := -1, 0
	for i, candidate := range table {
		if candidate != ref.Test(uint(i)) {
			if first < 0 {
				first = i
			}
			diffs++
		}
	}
	if diffs > 0 {
		return fmt.Errorf("%w: %d cells differ, first at %d (table=%v)", ErrMismatch, diffs, first, table[first])
	}
	return nil
}

// Digest is a hex sha256 over the table packed eight cells to a byte.
func Digest(table []bool) string {
	packed := make([]byte, (len(table)+7)/8)
	for i, candidate := range table {
		if candidate {
			packed[i>>3] |= 1 << uint(i&7)
		}
	}

	h := sha256.New()
	h.Write(packed)
	// Length disambiguates tables whose tails are all composite.
	h.Write([]byte(fmt.Sprintf(":%d", len(table))))
	return hex.EncodeToString(h.Sum(nil))
}

// Count returns the number of candidates left in the table.
func Count(table []bool) int {
	count := 0
	for _, candidate := range table {
		if candidate {
			count++
		}
	}
	return count
}

// Primes lists up to limit candidates in ascending order; limit <= 0 means all.
func Primes(table []bool, limit int) []int {
	var out []int
	for i, candidate := range table {
		if !candidate {
			continue
		}
		out = append(out, i)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
