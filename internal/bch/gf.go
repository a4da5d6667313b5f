package bch

// Field is GF(2^m), constructed from a primitive polynomial found by
// exhaustive trial division. It tabulates alpha^0 .. alpha^(2^m-2),
// both as GF(2) polynomials and as logarithms, giving O(1) multiply
// and divide.
type Field struct {
	m        int
	order    int // 2^m - 1, the multiplicative group order
	poly     Poly
	expTable []Poly // expTable[i] = alpha^i, for i in [0, order)
	logTable []int  // logTable[v] = i such that alpha^i == v, for v in [1, 2^m)
}

// NewField builds GF(2^m) by finding an irreducible (and, for the
// m=5 case BCH(31,21) needs, automatically primitive since 2^5-1=31
// is prime) degree-m polynomial over GF(2).
func NewField(m int) *Field {
	poly := findIrreducible(m)
	order := (1 << uint(m)) - 1

	f := &Field{
		m:        m,
		order:    order,
		poly:     poly,
		expTable: make([]Poly, order),
		logTable: make([]int, 1<<uint(m)),
	}

	alpha := Poly(2) // x
	acc := Poly(1)
	for i := 0; i < order; i++ {
		f.expTable[i] = acc
		f.logTable[acc] = i
		acc = acc.Mul(alpha).Mod(poly)
	}
	return f
}

// findIrreducible searches candidate degree-m polynomials (with
// nonzero constant term, so x never divides them) in increasing
// order and returns the first one with no nonconstant proper
// divisor, i.e. the first irreducible polynomial of degree m.
func findIrreducible(m int) Poly {
	high := Poly(1) << uint(m)
	for candidate := high | 1; candidate < high<<1; candidate += 2 {
		if isIrreducible(candidate, m) {
			return candidate
		}
	}
	panic("bch: no irreducible polynomial found")
}

func isIrreducible(p Poly, m int) bool {
	for d := Poly(2); d.Degree() <= m/2; d++ {
		if p.Mod(d) == 0 {
			return false
		}
	}
	return true
}

// Mul multiplies two field elements.
func (f *Field) Mul(a, b Poly) Poly {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%f.order]
}

// Div divides field element a by nonzero field element b.
func (f *Field) Div(a, b Poly) Poly {
	if a == 0 {
		return 0
	}
	la := f.logTable[a]
	lb := f.logTable[b]
	return f.expTable[((la-lb)%f.order+f.order)%f.order]
}

// Pow returns alpha^e.
func (f *Field) Pow(e int) Poly {
	e = ((e % f.order) + f.order) % f.order
	return f.expTable[e]
}

// Log returns the exponent i such that alpha^i == v, for nonzero v.
func (f *Field) Log(v Poly) int { return f.logTable[v] }

// Eval evaluates the GF(2) bit-vector r (read as coefficients of a
// polynomial over GF(2)) at alpha^power, i.e. sum_i r_i * alpha^(i*power).
func (f *Field) Eval(r Poly, power int) Poly {
	var sum Poly
	for i := 0; i <= r.Degree(); i++ {
		if r.Bit(i) == 1 {
			sum ^= f.Pow(i * power)
		}
	}
	return sum
}
