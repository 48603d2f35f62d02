// Package gf27 implements arithmetic in GF(27) = GF(3)[x]/(x^3 + 2x + 1).
//
// Elements are stored as their three base-3 digits packed little-endian
// (t0 + 3*t1 + 9*t2). Addition and subtraction work digit-wise mod 3 with no
// carry; multiplication and inversion use tables built once per Field.
package gf27

import "sync"

const (
	// Size is the number of field elements.
	Size = 27
	// GroupOrder is the order of the multiplicative group.
	GroupOrder = 26
)

// Trit is one unbalanced base-3 digit in {0,1,2}.
type Trit uint8

// Element is a field element in [0,26].
type Element uint8

// Valid reports whether e is inside the field.
func (e Element) Valid() bool { return e < Size }

// Digits returns the three base-3 digits of e, least significant first.
func Digits(e Element) [3]Trit {
	v := uint8(e) % Size
	return [3]Trit{Trit(v % 3), Trit((v / 3) % 3), Trit((v / 9) % 3)}
}

// FromDigits packs three trits into an element. Digits above 2 are reduced mod 3.
func FromDigits(t0, t1, t2 Trit) Element {
	return Element(t0%3 + 3*(t1%3) + 9*(t2%3))
}

// Add is digit-wise addition mod 3.
func Add(a, b Element) Element {
	da, db := Digits(a), Digits(b)
	return FromDigits((da[0]+db[0])%3, (da[1]+db[1])%3, (da[2]+db[2])%3)
}

// Sub is digit-wise subtraction mod 3.
func Sub(a, b Element) Element {
	da, db := Digits(a), Digits(b)
	return FromDigits((da[0]+3-db[0])%3, (da[1]+3-db[1])%3, (da[2]+3-db[2])%3)
}

// Neg returns the additive inverse of a.
func Neg(a Element) Element {
	return Sub(0, a)
}

// Double returns a+a, which in characteristic 3 equals -a.
func Double(a Element) Element {
	return Add(a, a)
}

// mulPoly multiplies two elements as polynomials over GF(3) and reduces
// with x^3 = x + 2 and x^4 = x^2 + 2x.
func mulPoly(a, b Element) Element {
	if a == 0 || b == 0 {
		return 0
	}
	da, db := Digits(a), Digits(b)
	a0, a1, a2 := int(da[0]), int(da[1]), int(da[2])
	b0, b1, b2 := int(db[0]), int(db[1]), int(db[2])

	r0 := a0 * b0
	r1 := a0*b1 + a1*b0
	r2 := a0*b2 + a1*b1 + a2*b0
	r3 := a1*b2 + a2*b1
	r4 := a2 * b2

	r0 += 2 * r3
	r1 += r3 + 2*r4
	r2 += r4
	return FromDigits(Trit(r0%3), Trit(r1%3), Trit(r2%3))
}

// Field holds the precomputed tables. A Field is immutable after New returns
// and safe for concurrent use.
type Field struct {
	primitive Element
	exp       [GroupOrder * 3]Element
	log       [Size]int
	mul       [Size * Size]Element
	inv       [Size]Element
}

var (
	defaultOnce  sync.Once
	defaultField *Field
)

// Default returns the process-wide field, built on first use.
func Default() *Field {
	defaultOnce.Do(func() {
		defaultField = New()
	})
	return defaultField
}

// New builds the field tables. The primitive element is the smallest
// element (searching upward from 2) whose multiplicative order is 26.
func New() *Field {
	f := &Field{}
	for c := Element(2); c < Size; c++ {
		if orderOf(c) == GroupOrder {
			f.primitive = c
			break
		}
	}

	for i := range f.log {
		f.log[i] = -1
	}
	f.exp[0] = 1
	f.log[1] = 0
	for i := 1; i < GroupOrder; i++ {
		f.exp[i] = mulPoly(f.exp[i-1], f.primitive)
		f.log[f.exp[i]] = i
	}
	for i := GroupOrder; i < len(f.exp); i++ {
		f.exp[i] = f.exp[i-GroupOrder]
	}

	for a := 0; a < Size; a++ {
		for b := 0; b < Size; b++ {
			f.mul[a*Size+b] = mulPoly(Element(a), Element(b))
		}
	}

	for a := 1; a < Size; a++ {
		f.inv[a] = f.exp[(GroupOrder-f.log[a])%GroupOrder]
	}
	return f
}

func orderOf(g Element) int {
	if g == 0 || g == 1 {
		return -1
	}
	x := Element(1)
	for i := 1; i <= GroupOrder; i++ {
		x = mulPoly(x, g)
		if x == 1 {
			return i
		}
	}
	return -1
}

// Primitive returns the generator alpha used for the exp/log tables.
func (f *Field) Primitive() Element { return f.primitive }

// Mul multiplies two elements.
func (f *Field) Mul(a, b Element) Element {
	return f.mul[int(a%Size)*Size+int(b%Size)]
}

// Inv returns the multiplicative inverse of a. Inv(0) is 0.
func (f *Field) Inv(a Element) Element {
	return f.inv[a%Size]
}

// Div returns a / b. Division by zero yields 0.
func (f *Field) Div(a, b Element) Element {
	if b == 0 {
		return 0
	}
	return f.Mul(a, f.Inv(b))
}

// Pow returns alpha^e for any integer e, negative exponents included.
func (f *Field) Pow(e int) Element {
	m := e % GroupOrder
	if m < 0 {
		m += GroupOrder
	}
	return f.exp[m]
}

// Log returns the discrete logarithm of a base alpha. ok is false for 0.
func (f *Field) Log(a Element) (int, bool) {
	l := f.log[a%Size]
	return l, l >= 0
}

// Eval evaluates the polynomial p at x. p holds coefficients lowest degree first.
func (f *Field) Eval(p []Element, x Element) Element {
	var acc Element
	for i := len(p) - 1; i >= 0; i-- {
		acc = Add(f.Mul(acc, x), p[i])
	}
	return acc
}
