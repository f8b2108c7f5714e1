package fixed

import "testing"

func TestFromRawIntRoundTrip(t *testing.T) {
	// For every representable integer k, FromRawInt(..., k).ToInt64() == k.
	for _, k := range []int64{0, 1, -1, 127, -128, 255} {
		f, err := FromRawInt(true, 9, 0, k)
		if err != nil {
			t.Fatalf("FromRawInt(true,9,0,%d): %v", k, err)
		}
		got, err := f.ToInt64()
		if err != nil {
			t.Fatalf("ToInt64(): %v", err)
		}
		if got != k {
			t.Errorf("round trip: got %d, want %d", got, k)
		}
	}

	if _, err := FromRawInt(true, 9, 0, 256); err == nil {
		t.Error("FromRawInt(true,9,0,256) should be out of range")
	}
	if _, err := FromRawInt(false, 8, 0, -1); err == nil {
		t.Error("FromRawInt(false,8,0,-1) should be out of range")
	}
}

func TestFromFloat64AndBack(t *testing.T) {
	f, err := FromFloat64(true, 4, 4, 3.5)
	if err != nil {
		t.Fatalf("FromFloat64: %v", err)
	}
	if got := f.ToFloat64(); got != 3.5 {
		t.Errorf("ToFloat64() = %v, want 3.5", got)
	}
	if raw, _ := f.ToInt64(); raw != 56 { // 3.5 * 2^4
		t.Errorf("raw = %d, want 56", raw)
	}
}

func TestNotIsBooleanEqualsZero(t *testing.T) {
	zero, _ := FromRawInt(true, 8, 0, 0)
	nonzero, _ := FromRawInt(true, 8, 0, 5)
	if !zero.Not() {
		t.Error("Not() on zero value should be true")
	}
	if nonzero.Not() {
		t.Error("Not() on nonzero value should be false")
	}
}

func TestComplementIsBitwise(t *testing.T) {
	x, _ := FromRawInt(false, 8, 0, 0)
	c := x.Complement()
	got, _ := c.ToInt64()
	if got != 255 {
		t.Errorf("Complement of 0 in an 8-bit unsigned value = %d, want 255", got)
	}
	// Complement is its own inverse.
	back := c.Complement()
	gotBack, _ := back.ToInt64()
	if gotBack != 0 {
		t.Errorf("Complement(Complement(x)) = %d, want 0", gotBack)
	}
}

func TestAddSubAreInverse(t *testing.T) {
	for _, tc := range []struct{ a, b int64 }{
		{5, 3}, {-5, 3}, {100, 100}, {-128, -1}, {127, 1},
	} {
		af, _ := FromRawInt(true, 9, 0, tc.a)
		bf, _ := FromRawInt(true, 9, 0, tc.b)
		sum, _, err := af.Add(bf)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		back, _, err := sum.Sub(bf)
		if err != nil {
			t.Fatalf("Sub: %v", err)
		}
		if !back.Equal(af) {
			t.Errorf("(%d+%d)-%d = %v, want %v", tc.a, tc.b, tc.b, back, af)
		}
	}
}

func TestAddCarryOut(t *testing.T) {
	a, _ := FromRawInt(false, 8, 0, 200)
	b, _ := FromRawInt(false, 8, 0, 100)
	sum, carry, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !carry {
		t.Error("200+100 over 8 unsigned bits should carry out")
	}
	got, _ := sum.ToInt64()
	if got != (200+100)%256 {
		t.Errorf("sum = %d, want %d", got, (200+100)%256)
	}
}

func TestSubBorrowOut(t *testing.T) {
	a, _ := FromRawInt(false, 8, 0, 10)
	b, _ := FromRawInt(false, 8, 0, 20)
	_, borrow, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if !borrow {
		t.Error("10-20 over 8 unsigned bits should borrow out")
	}
}

// TestSignedMultiplyRoundTrip is the worked example from the end-to-end
// scenarios: fixed<true,9,0>(-17) * fixed<true,9,0>(13) ==
// fixed<true,18,0>(-221).
func TestSignedMultiplyRoundTrip(t *testing.T) {
	a, _ := FromRawInt(true, 9, 0, -17)
	b, _ := FromRawInt(true, 9, 0, 13)
	product, err := a.Mul(b)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if product.M() != 18 || product.F() != 0 {
		t.Errorf("product shape = <%d,%d>, want <18,0>", product.M(), product.F())
	}
	got, _ := product.ToInt64()
	if got != -221 {
		t.Errorf("product = %d, want -221", got)
	}
}

func TestMulWidthNeverOverflows(t *testing.T) {
	tests := []struct {
		aM, aF, bM, bF int
		aRaw, bRaw     int64
	}{
		{4, 0, 4, 0, 7, 7},
		{8, 8, 8, 8, -32768, 32767},
		{1, 7, 1, 7, -128, -128},
	}
	for _, tc := range tests {
		a, err := FromRawInt(true, tc.aM, tc.aF, tc.aRaw)
		if err != nil {
			t.Fatalf("FromRawInt a: %v", err)
		}
		b, err := FromRawInt(true, tc.bM, tc.bF, tc.bRaw)
		if err != nil {
			t.Fatalf("FromRawInt b: %v", err)
		}
		if _, err := a.Mul(b); err != nil {
			t.Errorf("Mul(%+v) unexpectedly errored: %v", tc, err)
		}
	}
}

func TestNegateOverflow(t *testing.T) {
	SetSymmetric(false)
	mostNeg, _ := FromRawInt(true, 8, 0, -128)
	if _, err := mostNeg.Negate(); err == nil {
		t.Error("negating the most-negative value without symmetric mode should error")
	}

	SetSymmetric(true)
	defer SetSymmetric(false)
	got, err := mostNeg.Negate()
	if err != nil {
		t.Fatalf("Negate() with symmetric mode enabled: %v", err)
	}
	want := mostNeg.Complement()
	if !got.Equal(want) {
		t.Errorf("symmetric Negate(-128) = %v, want bitwise inverse %v", got, want)
	}
}

func TestShiftSaturates(t *testing.T) {
	x, _ := FromRawInt(true, 8, 0, -5)
	allOnes := x.Shr(100)
	got, _ := allOnes.ToInt64()
	if got != -1 {
		t.Errorf("arithmetic right shift of a negative value by more than N should saturate to -1, got %d", got)
	}

	pos, _ := FromRawInt(true, 8, 0, 5)
	zero := pos.Shl(100)
	gotZero, _ := zero.ToInt64()
	if gotZero != 0 {
		t.Errorf("left shift by more than N should saturate to 0, got %d", gotZero)
	}
}

func TestShiftNegativeAmountInvertsDirection(t *testing.T) {
	x, _ := FromRawInt(true, 8, 0, 5)
	left := x.Shl(2)
	right := x.Shr(-2)
	if !left.Equal(right) {
		t.Errorf("Shl(2) = %v, Shr(-2) = %v, want equal", left, right)
	}
}

func TestResizeSymmetricSubstitution(t *testing.T) {
	SetSymmetric(true)
	defer SetSymmetric(false)

	x, _ := FromRawInt(true, 9, 0, -128) // exactly the most-negative value of an 8-bit target
	resized := x.Resize(true, 8, 0)
	got, _ := resized.ToInt64()
	if got != -127 {
		t.Errorf("symmetric resize of -128 into <true,8,0> = %d, want -127", got)
	}
}

func TestResizeSignExtendsAndTruncates(t *testing.T) {
	small, _ := FromRawInt(true, 4, 0, -3)
	wide := small.Resize(true, 8, 0)
	got, _ := wide.ToInt64()
	if got != -3 {
		t.Errorf("sign-extending resize of -3 = %d, want -3", got)
	}

	back := wide.Resize(true, 4, 0)
	gotBack, _ := back.ToInt64()
	if gotBack != -3 {
		t.Errorf("truncating resize back = %d, want -3", gotBack)
	}
}

func TestCompareTwosComplementAware(t *testing.T) {
	neg, _ := FromRawInt(true, 8, 0, -1)
	pos, _ := FromRawInt(true, 8, 0, 1)
	c, err := neg.Compare(pos)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if c >= 0 {
		t.Errorf("Compare(-1, 1) = %d, want < 0", c)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		m, f int
		raw  int64
		want string
	}{
		{9, 0, -17, "-17"},
		{4, 4, 56, "3.5"},
		{4, 4, -8, "-0.5"},
	}
	for _, tc := range tests {
		f, err := FromRawInt(true, tc.m, tc.f, tc.raw)
		if err != nil {
			t.Fatalf("FromRawInt: %v", err)
		}
		if got := f.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestBitwiseShapeMismatch(t *testing.T) {
	a, _ := FromRawInt(true, 8, 0, 1)
	b, _ := FromRawInt(true, 4, 4, 1)
	if _, err := a.And(b); err == nil {
		t.Error("And() across mismatched shapes should error")
	}
	if _, err := a.Compare(b); err == nil {
		t.Error("Compare() across mismatched shapes should error")
	}
}
