package pica

import "testing"

func TestFloat24RoundTrip(t *testing.T) {
	cases := []float32{0, 1, -1, 0.5, 100, -100, 3.14159, 1e-6, -1e-6}
	for _, want := range cases {
		got := FromFloat32(want).ToFloat32()
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		tol := abs32(want)*0.001 + 1e-4
		if diff > tol {
			t.Errorf("FromFloat32(%v).ToFloat32() = %v, diff %v exceeds tolerance %v", want, got, diff, tol)
		}
	}
}

func TestFloat24ZeroIsAllZeroBits(t *testing.T) {
	if Zero24 != 0 {
		t.Fatalf("Zero24 = 0x%x, want 0", uint32(Zero24))
	}
	if !FromFloat32(0).IsZero() {
		t.Fatalf("FromFloat32(0) is not IsZero")
	}
}

func TestFloat24DivByZeroDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Div by zero panicked: %v", r)
		}
	}()
	one := FromFloat32(1)
	result := one.Div(Zero24)
	if result.ToFloat32() == 0 {
		t.Fatalf("expected a large finite magnitude, got zero")
	}
}

func TestFloat24Arithmetic(t *testing.T) {
	a := FromFloat32(2)
	b := FromFloat32(3)
	if got := a.Add(b).ToFloat32(); got != 5 {
		t.Errorf("2+3 = %v, want 5", got)
	}
	if got := a.Mul(b).ToFloat32(); got != 6 {
		t.Errorf("2*3 = %v, want 6", got)
	}
	if got := a.Neg().ToFloat32(); got != -2 {
		t.Errorf("-2 = %v, want -2", got)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
