package protocol

import "github.com/danmuck/t3codec/internal/protocol/gf27"

// Trit is an unbalanced ternary digit in {0,1,2}.
type Trit = gf27.Trit

// FromBalanced maps a balanced digit {-1,0,+1} to {0,1,2}. Values outside the
// balanced range are clamped first.
func FromBalanced(b int8) Trit {
	b = min(max(b, -1), 1)
	return Trit(b + 1)
}

// Balanced maps an unbalanced digit back to {-1,0,+1}, clamping values above 2.
func Balanced(t Trit) int8 {
	return int8(min(t, 2)) - 1
}

// ValidTrit reports whether t is in {0,1,2}.
func ValidTrit(t Trit) bool { return t <= 2 }
