package mat

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// equal reports whether a and b hold the same elements in the same order.
func equal(a, b *COO) bool {
	return a.rows == b.rows && a.cols == b.cols && slices.Equal(a.Data, b.Data)
}

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a          *COO
		c          complex128
		b          *COO
		z          *COO
		numNonZero int
	}{
		{
			a: M([][]complex128{
				{1, 0},
				{0, 2i},
			}),
			c: 1i,
			b: M([][]complex128{
				{1i, 0},
				{2, -5},
			}),
			z: M([][]complex128{
				{0, 0},
				{2i, -3i},
			}),
			numNonZero: 2,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Add(test.c, test.b)
			if !equal(test.a, test.z) {
				t.Fatalf("%s, expected %s", test.a, test.z)
			}
			if test.a.NumNonZero() != test.numNonZero {
				t.Fatalf("%d, expected %d", test.a.NumNonZero(), test.numNonZero)
			}
		})
	}
}

func TestKron(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex128{
				{1, -4, 7},
				{-2, 0, 3},
			}),
			b: M([][]complex128{
				{8, -9, -6, 5},
				{1, -3, 0, 7},
				{2, 8, -8, -3},
				{1, 2, -5, -1},
			}),
			c: M([][]complex128{
				{8, -9, -6, 5, -32, 36, 24, -20, 56, -63, -42, 35},
				{1, -3, 0, 7, -4, 12, 0, -28, 7, -21, 0, 49},
				{2, 8, -8, -3, -8, -32, 32, 12, 14, 56, -56, -21},
				{1, 2, -5, -1, -4, -8, 20, 4, 7, 14, -35, -7},
				{-16, 18, 12, -10, 0, 0, 0, 0, 24, -27, -18, 15},
				{-2, 6, 0, -14, 0, 0, 0, 0, 3, -9, 0, 21},
				{-4, -16, 16, 6, 0, 0, 0, 0, 6, 24, -24, -9},
				{-2, -4, 10, 2, 0, 0, 0, 0, 3, 6, -15, -3},
			}),
		},
		// Scalar kronecker.
		{
			a: M([][]complex128{{1}}),
			b: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
			c: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Kron(test.b)
			if !equal(test.a, test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestProduct(t *testing.T) {
	t.Parallel()
	a := M([][]complex128{
		{1, 2i, 0},
		{0, -1, 3},
	})
	b := M([][]complex128{
		{1, 0},
		{1i, 2},
		{0, 1},
	})
	expected := M([][]complex128{
		{-1, 4i},
		{-1i, 1},
	})
	if p := Product(a, b); !equal(p, expected) {
		t.Fatalf("%s, expected %s", p, expected)
	}

	h := M([][]complex128{
		{1, 0},
		{-2i, -1},
		{0, 3},
	})
	if ah := a.H(); !equal(ah, h) {
		t.Fatalf("%s, expected %s", ah, h)
	}

	if v := a.At(1, 2); v != 3 {
		t.Fatalf("%v, expected 3", v)
	}
	if v := a.At(1, 0); v != 0 {
		t.Fatalf("%v, expected 0", v)
	}
}

func TestCSR(t *testing.T) {
	t.Parallel()
	m := COOZeros(3, 3)
	m.Append(2, 1, 1)
	m.Append(0, 2, 2i)
	m.Append(2, 1, 4)
	m.Append(1, 1, 5)
	m.Append(1, 1, -5)
	m.Append(0, 0, 1)

	c := m.CSR()
	if c.NumNonZero() != 3 {
		t.Fatalf("%d, expected 3", c.NumNonZero())
	}
	expected := M([][]complex128{
		{1, 0, 2i},
		{0, 0, 0},
		{0, 5, 0},
	})
	if coo := c.COO(); !equal(coo, expected) {
		t.Fatalf("%s, expected %s", coo, expected)
	}
	cols, vals := c.Row(0)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 2 || vals[1] != 2i {
		t.Fatalf("%v %v", cols, vals)
	}
	if c.Rows() != 3 {
		t.Fatalf("%d, expected 3", c.Rows())
	}
}

func TestJordanWigner(t *testing.T) {
	t.Parallel()
	const n = 3
	cs := JordanWigner(n)
	identity := COOIdentity(1 << n)
	for p := range n {
		for q := range n {
			// {c_p, c†_q} = δ_pq.
			anti := Product(cs[p], cs[q].H())
			anti.Add(1, Product(cs[q].H(), cs[p]))
			expected := COOZeros(1<<n, 1<<n)
			if p == q {
				expected = identity
			}
			if !equal(anti, expected) {
				t.Fatalf("%d %d\n%s", p, q, anti)
			}

			// {c_p, c_q} = 0.
			anti = Product(cs[p], cs[q])
			anti.Add(1, Product(cs[q], cs[p]))
			if anti.NumNonZero() != 0 {
				t.Fatalf("%d %d\n%s", p, q, anti)
			}
		}
	}

	// c_1 on |011> = -|001>.
	if v := cs[1].At(0b001, 0b011); v != -1 {
		t.Fatalf("%v, expected -1", v)
	}
	// c_2 on |110> = -|010>, c_2 on |100> = |000>.
	if v := cs[2].At(0b010, 0b110); v != -1 {
		t.Fatalf("%v, expected -1", v)
	}
	if v := cs[2].At(0b000, 0b100); v != 1 {
		t.Fatalf("%v, expected 1", v)
	}
}

func TestLowestHermitian(t *testing.T) {
	t.Parallel()
	tests := []struct {
		h   [][]complex128
		val float64
	}{
		{
			h:   [][]complex128{{2}},
			val: 2,
		},
		{
			h: [][]complex128{
				{0, -1i},
				{1i, 0},
			},
			val: -1,
		},
		{
			h: [][]complex128{
				{1, 1 - 1i, 0},
				{1 + 1i, 0, 2i},
				{0, -2i, -1},
			},
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			vv, err := LowestHermitian(test.h)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if test.val != 0 && math.Abs(vv.Val-test.val) > 1e-12 {
				t.Fatalf("%f, expected %f", vv.Val, test.val)
			}

			// h v = λ v.
			for r, row := range test.h {
				var x complex128
				for c, v := range row {
					x += v * vv.Vec[c]
				}
				if cmplx.Abs(x-complex(vv.Val, 0)*vv.Vec[r]) > 1e-10 {
					t.Fatalf("%d %v %v", r, x, complex(vv.Val, 0)*vv.Vec[r])
				}
			}
		})
	}

	if _, err := LowestHermitian([][]complex128{{0, 1}, {2, 0}}); err == nil {
		t.Fatalf("expected error for non hermitian matrix")
	}
}

func TestCOOFile(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	m := M([][]complex128{
		{1, 1, 0, 0},
		{0, 0, 2.5 - 1i, 2.5 - 1i},
		{0, 0, 0, 0},
		{-3e-9, 0, 0, 1i},
	})
	if err := m.WriteCSV(dir); err != nil {
		t.Fatalf("%+v", err)
	}
	read, err := ReadCSV(dir)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !equal(read, m) {
		t.Fatalf("%s, expected %s", read, m)
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	m := M([][]complex128{
		{1, 0},
		{-2.5 + 1i, 0.5i},
	})
	expected := "1\t0\n(-2.5+1j)\t(0+0.5j)"
	if s := m.String(); s != expected {
		t.Fatalf("%q, expected %q", s, expected)
	}
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shape string
		coo   string
	}{
		{shape: "2", coo: ""},
		{shape: "2,2\n3,3", coo: ""},
		{shape: "2,x", coo: ""},
		{shape: "2,2", coo: "0,2,1"},
		{shape: "2,2", coo: "0,1"},
		{shape: "2,2", coo: "0,1,abc"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FnameShape), []byte(test.shape), 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, FnameCOO), []byte(test.coo), 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			if _, err := ReadCSV(dir); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
