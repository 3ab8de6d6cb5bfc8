package verify

import (
	"errors"
	"reflect"
	"testing"
)

func table(n int, primes ...int) []bool {
	t := make([]bool, n+1)
	for _, p := range primes {
		t[p] = true
	}
	return t
}

func TestReference(t *testing.T) {
	tests := []struct {
		n     int
		count uint
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{10, 4},
		{100, 25},
		{1000, 168},
		{100000, 9592},
	}
	for _, tt := range tests {
		ref := Reference(tt.n)
		if got := ref.Len(); got != uint(tt.n+1) {
			t.Errorf("Reference(%d).Len() = %d, want %d", tt.n, got, tt.n+1)
		}
		if got := ref.Count(); got != tt.count {
			t.Errorf("Reference(%d).Count() = %d, want %d", tt.n, got, tt.count)
		}
	}
}

func TestCompare(t *testing.T) {
	ref := Reference(10)

	if err := Compare(table(10, 2, 3, 5, 7), ref); err != nil {
		t.Errorf("Compare(correct) error = %v", err)
	}
	if err := Compare(table(10, 2, 3, 5, 7, 9), ref); !errors.Is(err, ErrMismatch) {
		t.Errorf("Compare(with 9) error = %v, want %v", err, ErrMismatch)
	}
	if err := Compare(table(11, 2, 3, 5, 7, 11), ref); !errors.Is(err, ErrLength) {
		t.Errorf("Compare(longer) error = %v, want %v", err, ErrLength)
	}
}

func TestDigest(t *testing.T) {
	a := table(20, 2, 3, 5, 7, 11, 13, 17, 19)
	b := table(20, 2, 3, 5, 7, 11, 13, 17, 19)
	if Digest(a) != Digest(b) {
		t.Errorf("Digest() differs for equal tables")
	}

	b[9] = true
	if Digest(a) == Digest(b) {
		t.Errorf("Digest() equal for different tables")
	}

	// Same packed bytes, different length.
	if Digest(table(8, 2)) == Digest(table(9, 2)) {
		t.Errorf("Digest() ignores table length")
	}
}

func TestCountAndPrimes(t *testing.T) {
	tab := table(30, 2, 3, 5, 7, 11, 13, 17, 19, 23, 29)

	if got := Count(tab); got != 10 {
		t.Errorf("Count() = %d, want 10", got)
	}
	if got, want := Primes(tab, 4), []int{2, 3, 5, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("Primes(4) = %v, want %v", got, want)
	}
	if got := Primes(tab, 0); len(got) != 10 {
		t.Errorf("Primes(0) returned %d primes, want 10", len(got))
	}
}
