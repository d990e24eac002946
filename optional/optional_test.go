package optional

import "testing"

func TestValue(t *testing.T) {
	t.Parallel()
	some := Some(3)
	if v, ok := some.Get(); !ok || v != 3 {
		t.Fatalf("%d %v, expected 3 true", v, ok)
	}
	if !some.IsSome() {
		t.Fatalf("present value is absent")
	}

	var zero Value[[]complex128]
	if zero.IsSome() {
		t.Fatalf("zero value is present")
	}
	if v, ok := None[float64]().Get(); ok || v != 0 {
		t.Fatalf("%f %v, expected 0 false", v, ok)
	}
}
