package bch

// Generator is POCSAG's BCH(31,21,2) generator polynomial.
const Generator Poly = 0b11101101001

// field is the GF(2^5) extension field syndromes are computed over;
// 2^5-1 == 31 matches the codeword length n.
var field = NewField(5)

const (
	n = 31 // codeword length
	k = 21 // payload length
	r = n - k
)

// Encode systematically encodes a 21-bit payload into a 31-bit BCH
// codeword: the payload occupies the high k bits, the low r bits are
// the remainder of payload*x^r divided by Generator.
func Encode(payload uint32) uint32 {
	payload &= (1 << k) - 1
	shifted := Poly(payload) << r
	remainder := shifted.Mod(Generator)
	return uint32(shifted ^ remainder)
}

// Correct attempts to locate and fix up to two bit errors in a
// received 31-bit codeword using Peterson-Gorenstein-Zierler syndrome
// decoding over GF(32). It returns the corrected codeword and
// true on success; if no valid error-locator polynomial is found
// (more than two errors, most likely) it returns ok=false and the
// word should be dropped.
func Correct(codeword uint32) (corrected uint32, ok bool) {
	word := Poly(codeword & ((1 << n) - 1))

	s1 := field.Eval(word, 1)
	s2 := field.Eval(word, 2)
	s3 := field.Eval(word, 3)
	s4 := field.Eval(word, 4)

	if s1 == 0 && s2 == 0 && s3 == 0 && s4 == 0 {
		return uint32(word), true
	}

	if corrected, ok := correctWeight2(word, s1, s2, s3, s4); ok {
		return corrected, true
	}
	if corrected, ok := correctWeight1(word, s1, s2); ok {
		return corrected, true
	}
	return 0, false
}

// Payload extracts the 21-bit payload from a corrected 31-bit codeword.
func Payload(codeword uint32) uint32 {
	return (codeword >> r) & ((1 << k) - 1)
}

func correctWeight2(word Poly, s1, s2, s3, s4 Poly) (uint32, bool) {
	det := field.Mul(s2, s2) ^ field.Mul(s1, s3)
	if det == 0 {
		return 0, false
	}
	sigma1 := field.Div(field.Mul(s3, s2)^field.Mul(s1, s4), det)
	sigma2 := field.Div(field.Mul(s2, s4)^field.Mul(s3, s3), det)

	roots := findRoots(func(beta Poly) Poly {
		return Poly(1) ^ field.Mul(sigma1, beta) ^ field.Mul(sigma2, field.Mul(beta, beta))
	})
	if len(roots) != 2 {
		return 0, false
	}
	return flip(word, roots), true
}

func correctWeight1(word Poly, s1, s2 Poly) (uint32, bool) {
	if s1 == 0 {
		return 0, false
	}
	sigma1 := field.Div(s2, s1)
	roots := findRoots(func(beta Poly) Poly {
		return Poly(1) ^ field.Mul(sigma1, beta)
	})
	if len(roots) != 1 {
		return 0, false
	}
	return flip(word, roots), true
}

// findRoots evaluates sigma at every nonzero field element and
// returns the bit positions (n - j) mod n for every root alpha^j.
func findRoots(sigma func(beta Poly) Poly) []int {
	var positions []int
	for j := 0; j < n; j++ {
		beta := field.Pow(j)
		if sigma(beta) == 0 {
			positions = append(positions, (n-j)%n)
		}
	}
	return positions
}

func flip(word Poly, positions []int) uint32 {
	for _, pos := range positions {
		word ^= 1 << uint(pos)
	}
	return uint32(word)
}
