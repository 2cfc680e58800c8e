package value

import (
	"math/big"
	"testing"
)

func TestAddIntegers(t *testing.T) {
	a := NewIntegerFromInt64(40)
	b := NewIntegerFromInt64(2)
	sum := Add(a, b)
	i, ok := sum.(Integer)
	if !ok || i.Int().Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected Integer(42), got %v", sum)
	}
}

func TestAddBignum(t *testing.T) {
	big1, _ := ParseInteger("100000000000000000000000000000000000000")
	one := NewIntegerFromInt64(1)
	sum := Add(big1, one)
	want, _ := new(big.Int).SetString("100000000000000000000000000000000000001", 10)
	i := sum.(Integer)
	if i.Int().Cmp(want) != 0 {
		t.Fatalf("bignum add mismatch: got %s want %s", i.Int().String(), want.String())
	}
}

func TestAddVoidIdentity(t *testing.T) {
	v := NewString("hi")
	if got := Add(Void{}, v); !Equal(got, v) {
		t.Fatalf("Void + v should equal v, got %v", got)
	}
	if got := Add(v, Void{}); !Equal(got, v) {
		t.Fatalf("v + Void should equal v, got %v", got)
	}
}

func TestAddStringCoercions(t *testing.T) {
	cases := []struct {
		a, b Value
		want string
	}{
		{NewString("n="), NewIntegerFromInt64(5), "n=5"},
		{NewIntegerFromInt64(5), NewString("=n"), "5=n"},
		{NewString("ok="), NewBoolean(true), "ok=true"},
		{NewBoolean(false), NewString("=ok"), "false=ok"},
	}
	for _, c := range cases {
		got := Add(c.a, c.b)
		s, ok := got.(String)
		if !ok || s.Raw() != c.want {
			t.Errorf("Add(%v,%v) = %v, want String(%q)", c.a, c.b, got, c.want)
		}
	}
}

func TestAddOtherCombinationsCorrupt(t *testing.T) {
	got := Add(NewIntegerFromInt64(1), NewBoolean(true))
	if got.Kind() != KindInfernal {
		t.Fatalf("expected Infernal, got %v", got)
	}
}

func TestAddInfernalPropagates(t *testing.T) {
	inf := NewInfernal("abc123z")
	got := Add(inf, NewIntegerFromInt64(9))
	gi, ok := got.(Infernal)
	if !ok {
		t.Fatalf("expected Infernal, got %v", got)
	}
	if gi.Token() != "abc123z9" {
		t.Fatalf("expected concatenated token abc123z9, got %s", gi.Token())
	}
}

func TestDivIntegers(t *testing.T) {
	got := Div(NewIntegerFromInt64(7), NewIntegerFromInt64(2))
	i := got.(Integer)
	if i.Int().Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected 3, got %s", i.Int().String())
	}
}

func TestDivByZeroCorrupts(t *testing.T) {
	got := Div(NewIntegerFromInt64(7), NewIntegerFromInt64(0))
	if got.Kind() != KindInfernal {
		t.Fatalf("expected Infernal, got %v", got)
	}
}

func TestDivVoidIdentity(t *testing.T) {
	v := NewIntegerFromInt64(9)
	if got := Div(Void{}, v); !Equal(got, v) {
		t.Fatalf("Void / v should equal v, got %v", got)
	}
	if got := Div(v, Void{}); !Equal(got, v) {
		t.Fatalf("v / Void should equal v, got %v", got)
	}
}

func TestNegDoubleNegation(t *testing.T) {
	n := NewIntegerFromInt64(7)
	got := Neg(Neg(n))
	if !Equal(got, n) {
		t.Fatalf("-(-n) should equal n, got %v", got)
	}
}

func TestNegVoidAndOther(t *testing.T) {
	if got := Neg(Void{}); got.Kind() != KindVoid {
		t.Fatalf("-Void should be Void, got %v", got)
	}
	if got := Neg(NewString("x")); got.Kind() != KindInfernal {
		t.Fatalf("-String should corrupt, got %v", got)
	}
}

func TestEqualityInfernalNeverEqual(t *testing.T) {
	a := NewInfernal("sametoken")
	b := NewInfernal("sametoken")
	if Equal(a, b) {
		t.Fatalf("Infernal values must never equal, even with identical tokens")
	}
}

func TestEqualityStructural(t *testing.T) {
	if !Equal(NewIntegerFromInt64(3), NewIntegerFromInt64(3)) {
		t.Fatalf("equal integers should compare equal")
	}
	if Equal(NewIntegerFromInt64(3), NewString("3")) {
		t.Fatalf("different kinds should never compare equal")
	}
}

func TestDisplay(t *testing.T) {
	if Void{}.Display() != "" {
		t.Fatalf("Void display should be empty string")
	}
	if NewBoolean(true).Display() != "true" {
		t.Fatalf("bool display mismatch")
	}
	if NewIntegerFromInt64(-5).Display() != "-5" {
		t.Fatalf("int display mismatch")
	}
}

func TestInfernalTokenLength(t *testing.T) {
	for range 50 {
		tok := Corrupt().(Infernal).Token()
		if len(tok) < 7 || len(tok) > 13 {
			t.Fatalf("token %q out of 7-13 char range", tok)
		}
	}
}

func TestZalgoDeterministicForSameToken(t *testing.T) {
	a := NewInfernal("tok1").Display()
	b := NewInfernal("tok1").Display()
	if a != b {
		t.Fatalf("zalgo rendering of the same token should be self-consistent, got %q vs %q", a, b)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	i, _ := ParseInteger("12345678901234567890")
	c := i.Clone().(Integer)
	c.Int().Add(c.Int(), big.NewInt(1))
	if i.Int().Cmp(c.Int()) == 0 {
		t.Fatalf("clone should not alias the original big.Int")
	}
}
