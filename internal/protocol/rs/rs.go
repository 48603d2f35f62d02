// Package rs implements systematic Reed-Solomon RS(26,k) block coding over GF(27).
//
// Symbol i of a block is the coefficient of x^(n-1-i): data occupies the
// high-degree end and parity the low-degree end, so the first k symbols of a
// codeword are the data verbatim. The generator has roots alpha^1..alpha^(n-k).
package rs

import (
	"errors"
	"fmt"

	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// N is the fixed block length.
const N = 26

var (
	ErrInvalidK      = errors.New("rs: k must be even and in [2,24]")
	ErrBlockLength   = errors.New("rs: invalid block length")
	ErrUncorrectable = errors.New("rs: uncorrectable block")
)

// Params describes one RS(n,k) code.
type Params struct {
	N int
	K int
}

// Parity returns n-k.
func (p Params) Parity() int { return p.N - p.K }

// Capacity returns the number of correctable symbol errors per block.
func (p Params) Capacity() int { return p.Parity() / 2 }

func (p Params) String() string { return fmt.Sprintf("RS(%d,%d)", p.N, p.K) }

// Coder encodes and decodes blocks for one parameter set. It is immutable
// after New and safe for concurrent use.
type Coder struct {
	field  *gf27.Field
	params Params
	// gen holds the monic generator, lowest degree first.
	gen []gf27.Element
}

// New builds the coder and its generator polynomial.
func New(field *gf27.Field, k int) (*Coder, error) {
	if k < 2 || k >= N || (N-k)%2 != 0 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidK, k)
	}
	if field == nil {
		field = gf27.Default()
	}
	c := &Coder{field: field, params: Params{N: N, K: k}}
	c.buildGenerator()
	return c, nil
}

func (c *Coder) buildGenerator() {
	r := c.params.Parity()
	g := []gf27.Element{1}
	for i := 1; i <= r; i++ {
		negRoot := gf27.Neg(c.field.Pow(i))
		next := make([]gf27.Element, len(g)+1)
		for j, coef := range g {
			next[j] = gf27.Add(next[j], c.field.Mul(coef, negRoot))
			next[j+1] = gf27.Add(next[j+1], coef)
		}
		g = next
	}
	c.gen = g
}

// Params returns the code parameters.
func (c *Coder) Params() Params { return c.params }

// Generator returns a copy of the generator polynomial, lowest degree first.
func (c *Coder) Generator() []gf27.Element {
	out := make([]gf27.Element, len(c.gen))
	copy(out, c.gen)
	return out
}

// Encode returns the n-symbol systematic codeword for k data symbols.
func (c *Coder) Encode(data []gf27.Element) ([]gf27.Element, error) {
	out := make([]gf27.Element, N)
	if err := c.EncodeTo(out, data); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTo writes the codeword for data into dst, which must hold n symbols.
func (c *Coder) EncodeTo(dst, data []gf27.Element) error {
	k, r := c.params.K, c.params.Parity()
	if len(data) != k {
		return fmt.Errorf("%w: data has %d symbols, want %d", ErrBlockLength, len(data), k)
	}
	if len(dst) != N {
		return fmt.Errorf("%w: destination has %d symbols, want %d", ErrBlockLength, len(dst), N)
	}

	// rem tracks data(x)*x^r mod g, lowest degree first.
	rem := make([]gf27.Element, r)
	for _, d := range data {
		fb := gf27.Add(d%gf27.Size, rem[r-1])
		for j := r - 1; j > 0; j-- {
			rem[j] = gf27.Sub(rem[j-1], c.field.Mul(fb, c.gen[j]))
		}
		rem[0] = gf27.Neg(c.field.Mul(fb, c.gen[0]))
	}

	for i, d := range data {
		dst[i] = d % gf27.Size
	}
	for j := 0; j < r; j++ {
		dst[N-1-j] = gf27.Neg(rem[j])
	}
	return nil
}

// syndromes evaluates the block at alpha^1..alpha^r. S[j] is S_(j+1).
func (c *Coder) syndromes(code []gf27.Element) ([]gf27.Element, bool) {
	r := c.params.Parity()
	s := make([]gf27.Element, r)
	clean := true
	for j := 0; j < r; j++ {
		x := c.field.Pow(j + 1)
		var acc gf27.Element
		for _, sym := range code {
			acc = gf27.Add(c.field.Mul(acc, x), sym%gf27.Size)
		}
		s[j] = acc
		if acc != 0 {
			clean = false
		}
	}
	return s, clean
}

// Decode corrects up to Capacity() symbol errors and returns the k data
// symbols plus the number of corrected symbols. The input is not modified.
//
// Failure is reported as ErrUncorrectable whenever the locator does not
// split into distinct roots inside the block, has degree above capacity, a
// Forney denominator vanishes, or the corrected block is not a codeword.
// Patterns beyond capacity that land within distance t of another codeword
// decode "successfully" to that codeword; no bounded-distance decoder can
// detect those.
func (c *Coder) Decode(code []gf27.Element) ([]gf27.Element, int, error) {
	if len(code) != N {
		return nil, 0, fmt.Errorf("%w: block has %d symbols, want %d", ErrBlockLength, len(code), N)
	}
	k, t := c.params.K, c.params.Capacity()

	work := make([]gf27.Element, N)
	for i, s := range code {
		work[i] = s % gf27.Size
	}

	synd, clean := c.syndromes(work)
	if clean {
		return work[:k:k], 0, nil
	}

	sigma, degree := c.berlekampMassey(synd)
	if degree > t {
		return nil, 0, fmt.Errorf("%w: locator degree %d exceeds capacity %d", ErrUncorrectable, degree, t)
	}

	positions := c.chienSearch(sigma)
	if len(positions) > t {
		return nil, 0, fmt.Errorf("%w: %d error positions exceed capacity %d", ErrUncorrectable, len(positions), t)
	}
	if len(positions) != degree {
		return nil, 0, fmt.Errorf("%w: locator degree %d but %d roots", ErrUncorrectable, degree, len(positions))
	}

	omega := c.evaluator(synd, sigma)
	deriv := formalDerivative(sigma)

	for _, p := range positions {
		xInv := c.field.Pow(-p)
		num := c.field.Eval(omega, xInv)
		den := c.field.Eval(deriv, xInv)
		if den == 0 {
			return nil, 0, fmt.Errorf("%w: zero Forney denominator at degree %d", ErrUncorrectable, p)
		}
		errVal := gf27.Neg(c.field.Div(num, den))
		pos := N - 1 - p
		work[pos] = gf27.Sub(work[pos], errVal)
	}

	if _, ok := c.syndromes(work); !ok {
		return nil, 0, fmt.Errorf("%w: residual syndrome after correction", ErrUncorrectable)
	}
	return work[:k:k], len(positions), nil
}

// berlekampMassey returns the error-locator polynomial (lowest degree
// first, sigma[0] == 1) and its linear complexity L.
func (c *Coder) berlekampMassey(synd []gf27.Element) ([]gf27.Element, int) {
	r := len(synd)
	sigma := make([]gf27.Element, r+1)
	prev := make([]gf27.Element, r+1)
	sigma[0], prev[0] = 1, 1
	L, m := 0, 1
	b := gf27.Element(1)

	for n := 0; n < r; n++ {
		d := synd[n]
		for i := 1; i <= L; i++ {
			d = gf27.Add(d, c.field.Mul(sigma[i], synd[n-i]))
		}
		if d == 0 {
			m++
			continue
		}
		scale := c.field.Div(d, b)
		if 2*L <= n {
			saved := make([]gf27.Element, len(sigma))
			copy(saved, sigma)
			subShifted(c.field, sigma, prev, scale, m)
			L = n + 1 - L
			prev = saved
			b = d
			m = 1
		} else {
			subShifted(c.field, sigma, prev, scale, m)
			m++
		}
	}
	return sigma[:L+1], L
}

// subShifted computes dst -= scale * x^shift * src in place.
func subShifted(f *gf27.Field, dst, src []gf27.Element, scale gf27.Element, shift int) {
	for i := 0; i+shift < len(dst) && i < len(src); i++ {
		if src[i] == 0 {
			continue
		}
		dst[i+shift] = gf27.Sub(dst[i+shift], f.Mul(scale, src[i]))
	}
}

// chienSearch returns the degrees p for which sigma(alpha^-p) == 0.
func (c *Coder) chienSearch(sigma []gf27.Element) []int {
	var found []int
	for p := 0; p < N; p++ {
		if c.field.Eval(sigma, c.field.Pow(-p)) == 0 {
			found = append(found, p)
		}
	}
	return found
}

// evaluator returns Omega(x) = S(x)*sigma(x) mod x^r.
func (c *Coder) evaluator(synd, sigma []gf27.Element) []gf27.Element {
	r := len(synd)
	omega := make([]gf27.Element, r)
	for i := 0; i < r; i++ {
		for j := 0; j < len(sigma) && i+j < r; j++ {
			omega[i+j] = gf27.Add(omega[i+j], c.field.Mul(synd[i], sigma[j]))
		}
	}
	return omega
}

// formalDerivative differentiates p in characteristic 3: the coefficient of
// x^i moves to x^(i-1) scaled by i mod 3.
func formalDerivative(p []gf27.Element) []gf27.Element {
	if len(p) < 2 {
		return []gf27.Element{0}
	}
	out := make([]gf27.Element, len(p)-1)
	for i := 1; i < len(p); i++ {
		switch i % 3 {
		case 0:
			out[i-1] = 0
		case 1:
			out[i-1] = p[i]
		case 2:
			out[i-1] = gf27.Double(p[i])
		}
	}
	return out
}
