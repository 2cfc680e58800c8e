// Package value implements the ZOMBIE runtime's dynamic Value type.
//
// Every operation is total: arithmetic or domain failures never return a Go
// error, they produce a corrupted Infernal value instead.
package value

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"math/rand/v2"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindVoid Kind = iota
	KindInteger
	KindString
	KindBoolean
	KindInfernal
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindInteger:
		return "Integer"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindInfernal:
		return "Infernal"
	default:
		return "Unknown"
	}
}

// Value is a ZOMBIE runtime value. Concrete types implement it.
type Value interface {
	Kind() Kind
	// Display renders the value the way Say prints it.
	Display() string
	fmt.Stringer
	Clone() Value
}

// Void is the default, empty value.
type Void struct{}

func (Void) Kind() Kind      { return KindVoid }
func (Void) Display() string { return "" }
func (Void) String() string  { return "Void" }
func (Void) Clone() Value    { return Void{} }

// Integer is an arbitrary-precision signed integer.
type Integer struct {
	n *big.Int
}

// NewInteger wraps a *big.Int. The Value takes ownership; callers that keep
// their own reference to n must clone it first.
func NewInteger(n *big.Int) Integer {
	return Integer{n: new(big.Int).Set(n)}
}

// NewIntegerFromInt64 builds an Integer from a machine int64.
func NewIntegerFromInt64(n int64) Integer {
	return Integer{n: big.NewInt(n)}
}

// ParseInteger parses a decimal literal into an Integer.
func ParseInteger(text string) (Integer, bool) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return Integer{}, false
	}
	return Integer{n: n}, true
}

func (i Integer) Kind() Kind      { return KindInteger }
func (i Integer) Display() string { return i.n.String() }
func (i Integer) String() string  { return "Integer(" + i.n.String() + ")" }
func (i Integer) Clone() Value    { return Integer{n: new(big.Int).Set(i.n)} }

// Int returns the underlying big.Int (read-only; do not mutate).
func (i Integer) Int() *big.Int { return i.n }

// String is UTF-8 text.
type String struct {
	s string
}

func NewString(s string) String { return String{s: s} }

func (s String) Kind() Kind      { return KindString }
func (s String) Display() string { return s.s }
func (s String) String() string  { return fmt.Sprintf("String(%q)", s.s) }
func (s String) Clone() Value    { return s }
func (s String) Raw() string     { return s.s }

// Boolean is true/false.
type Boolean struct {
	b bool
}

func NewBoolean(b bool) Boolean { return Boolean{b: b} }

func (b Boolean) Kind() Kind      { return KindBoolean }
func (b Boolean) Display() string { return strings.ToLower(fmt.Sprint(b.b)) }
func (b Boolean) String() string  { return fmt.Sprintf("Boolean(%t)", b.b) }
func (b Boolean) Clone() Value    { return b }
func (b Boolean) Bool() bool      { return b.b }

// Infernal is a corrupted value, produced whenever an operation has no
// meaningful result. It carries an opaque 7-13 char alphanumeric token.
type Infernal struct {
	token string
}

// NewInfernal builds a corrupted value carrying an explicit token (used when
// propagating corruption through an operation).
func NewInfernal(token string) Infernal { return Infernal{token: token} }

// Corrupt mints a fresh corrupted value with a random token.
func Corrupt() Infernal { return Infernal{token: randomToken()} }

func (i Infernal) Kind() Kind      { return KindInfernal }
func (i Infernal) Display() string { return zalgo(i.token) }
func (i Infernal) String() string  { return "Infernal(" + i.token + ")" }
func (i Infernal) Clone() Value    { return i }
func (i Infernal) Token() string   { return i.token }

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomToken() string {
	n := 7 + rand.IntN(7) // 7..13 inclusive
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(tokenAlphabet[rand.IntN(len(tokenAlphabet))])
	}
	return b.String()
}

// combining marks (Unicode combining diacritical marks block) used to
// zalgo-render an Infernal token for display.
var combiningMarks = []rune{
	0x0300, 0x0301, 0x0302, 0x0303, 0x0304, 0x0306, 0x0307, 0x0308,
	0x030a, 0x030b, 0x030c, 0x0310, 0x0315, 0x031a, 0x0321, 0x0322,
	0x0327, 0x0328, 0x0330, 0x0333, 0x033d, 0x033e, 0x0346, 0x034a,
}

// zalgo renders a token deterministically: the same token always produces
// the same corrupted text within (and across) runs, since the marks are
// drawn from a generator seeded by the token itself.
func zalgo(token string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var b strings.Builder
	for _, r := range token {
		b.WriteRune(r)
		marks := 1 + rng.IntN(3)
		for range marks {
			b.WriteRune(combiningMarks[rng.IntN(len(combiningMarks))])
		}
	}
	return b.String()
}

// plainText returns the textual coercion used for mixed-type concatenation
// and for folding an Infernal token into a new one. Unlike Display, an
// Infernal's plain text is its raw token, not the zalgo rendering.
func plainText(v Value) string {
	switch t := v.(type) {
	case Integer:
		return t.n.String()
	case String:
		return t.s
	case Boolean:
		return t.Display()
	case Void:
		return ""
	case Infernal:
		return t.token
	default:
		return ""
	}
}

// Add implements a + b.
func Add(a, b Value) Value {
	if _, ok := a.(Infernal); ok {
		return NewInfernal(plainText(a) + plainText(b))
	}
	if _, ok := b.(Infernal); ok {
		return NewInfernal(plainText(a) + plainText(b))
	}
	if _, ok := a.(Void); ok {
		return b.Clone()
	}
	if _, ok := b.(Void); ok {
		return a.Clone()
	}

	switch av := a.(type) {
	case Integer:
		if bv, ok := b.(Integer); ok {
			return Integer{n: new(big.Int).Add(av.n, bv.n)}
		}
	case String:
		switch bv := b.(type) {
		case String:
			return NewString(av.s + bv.s)
		case Integer, Boolean:
			return NewString(av.s + plainText(bv))
		}
	case Boolean:
		if bv, ok := b.(String); ok {
			return NewString(plainText(av) + bv.s)
		}
	}
	if _, ok := a.(Integer); ok {
		if _, ok := b.(String); ok {
			return NewString(plainText(a) + plainText(b))
		}
	}
	return Corrupt()
}

// Div implements numerator / denominator. Division is not
// commutative: the receiver is always the numerator.
func Div(numerator, denominator Value) Value {
	if _, ok := numerator.(Void); ok {
		return denominator.Clone()
	}
	if _, ok := denominator.(Void); ok {
		return numerator.Clone()
	}
	if nv, ok := numerator.(Integer); ok {
		if dv, ok := denominator.(Integer); ok {
			if dv.n.Sign() == 0 {
				return Corrupt()
			}
			return Integer{n: new(big.Int).Quo(nv.n, dv.n)}
		}
	}
	return Corrupt()
}

// Neg implements -a.
func Neg(a Value) Value {
	switch av := a.(type) {
	case Integer:
		return Integer{n: new(big.Int).Neg(av.n)}
	case Void:
		return Void{}
	default:
		return Corrupt()
	}
}

// Equal implements ZOMBIE's ==. Any comparison involving an
// Infernal value is always false.
func Equal(a, b Value) bool {
	if _, ok := a.(Infernal); ok {
		return false
	}
	if _, ok := b.(Infernal); ok {
		return false
	}
	switch av := a.(type) {
	case Void:
		_, ok := b.(Void)
		return ok
	case Integer:
		bv, ok := b.(Integer)
		return ok && av.n.Cmp(bv.n) == 0
	case String:
		bv, ok := b.(String)
		return ok && av.s == bv.s
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av.b == bv.b
	default:
		return false
	}
}
