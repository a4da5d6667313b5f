// Package bch implements the error-correction primitives POCSAG's
// BCH(31,21,2) code is built on: bit-vector polynomials over GF(2),
// the GF(2^5) extension field used for syndrome computation, and the
// BCH encode/decode/correct operations themselves.
package bch

import "math/bits"

// Poly is a polynomial over GF(2), stored as a bit vector in a single
// machine word (bit i is the coefficient of x^i). Addition is XOR;
// there is no separate subtraction in characteristic 2.
type Poly uint64

// Degree returns the polynomial's degree, or -1 for the zero
// polynomial.
func (p Poly) Degree() int {
	if p == 0 {
		return -1
	}
	return bits.Len64(uint64(p)) - 1
}

// Add (== Sub in GF(2)) returns p + q.
func (p Poly) Add(q Poly) Poly { return p ^ q }

// Mul returns p * q, carry-less (XOR shift-and-add) multiplication.
func (p Poly) Mul(q Poly) Poly {
	var result Poly
	for i := 0; i <= q.Degree(); i++ {
		if q&(1<<uint(i)) != 0 {
			result ^= p << uint(i)
		}
	}
	return result
}

// DivMod returns the quotient and remainder of p / d (d must be
// nonzero).
func (p Poly) DivMod(d Poly) (quotient, remainder Poly) {
	remainder = p
	dDeg := d.Degree()
	for remainder.Degree() >= dDeg {
		shift := remainder.Degree() - dDeg
		quotient |= 1 << uint(shift)
		remainder ^= d << uint(shift)
	}
	return quotient, remainder
}

// Mod returns p mod d.
func (p Poly) Mod(d Poly) Poly {
	_, r := p.DivMod(d)
	return r
}

// Div returns p / d (quotient only).
func (p Poly) Div(d Poly) Poly {
	q, _ := p.DivMod(d)
	return q
}

// Bit returns the coefficient of x^i as 0 or 1.
func (p Poly) Bit(i int) int {
	return int((p >> uint(i)) & 1)
}
