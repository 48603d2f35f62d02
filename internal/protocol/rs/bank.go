package rs

import (
	"fmt"
	"sync"

	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// Selector K values, indexed by UEP band selector 0..3.
var selectorK = [4]int{24, 22, 20, 18}

// HeaderK is the payload length of the two header codewords.
const HeaderK = 18

// KForSelector maps a band selector to its payload length.
func KForSelector(sel uint8) (int, error) {
	if int(sel) >= len(selectorK) {
		return 0, fmt.Errorf("%w: selector %d", ErrInvalidK, sel)
	}
	return selectorK[sel], nil
}

// Bank holds one coder per band selector plus the header coder.
type Bank struct {
	field  *gf27.Field
	coders [len(selectorK)]*Coder
	header *Coder
}

var (
	defaultBankOnce sync.Once
	defaultBank     *Bank
)

// DefaultBank returns the shared bank built over gf27.Default.
func DefaultBank() *Bank {
	defaultBankOnce.Do(func() {
		b, err := NewBank(gf27.Default())
		if err != nil {
			panic(err)
		}
		defaultBank = b
	})
	return defaultBank
}

// NewBank builds every coder over field.
func NewBank(field *gf27.Field) (*Bank, error) {
	if field == nil {
		field = gf27.Default()
	}
	b := &Bank{field: field}
	for i, k := range selectorK {
		c, err := New(field, k)
		if err != nil {
			return nil, err
		}
		b.coders[i] = c
	}
	h, err := New(field, HeaderK)
	if err != nil {
		return nil, err
	}
	b.header = h
	return b, nil
}

// Field returns the field the bank was built over.
func (b *Bank) Field() *gf27.Field { return b.field }

// Coder returns the coder for band selector sel.
func (b *Bank) Coder(sel uint8) (*Coder, error) {
	if int(sel) >= len(b.coders) {
		return nil, fmt.Errorf("%w: selector %d", ErrInvalidK, sel)
	}
	return b.coders[sel], nil
}

// Header returns the RS(26,18) coder used for the superframe header.
func (b *Bank) Header() *Coder { return b.header }
