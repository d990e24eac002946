// Package mat implements the sparse matrices of the solver:
// an accumulating coordinate format, a compressed sparse row format, and dense reference operators.
package mat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

var (
	// Annihilation is the single mode annihilation operator, a|1> = |0>.
	Annihilation = [][]complex128{
		{0, 1},
		{0, 0},
	}
	// PauliZ is the Jordan-Wigner string factor of an occupied mode.
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format, kept in row major order.
type COO struct {
	rows int
	cols int
	Data []vRowCol

	m map[[2]int]complex128
}

func M(dense [][]complex128) *COO {
	m := COOZeros(len(dense), len(dense[0]))
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]vRowCol, 0), m: make(map[[2]int]complex128)}
}

func COOIdentity(rows int) *COO {
	m := COOZeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

// NumNonZero returns the number of stored elements.
func (m *COO) NumNonZero() int { return len(m.Data) }

// Append stores v at (row, col).
// Duplicate coordinates are summed by CSR.
func (m *COO) Append(row, col int, v complex128) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("%d %d outside %d %d", row, col, m.rows, m.cols))
	}
	m.Data = append(m.Data, vRowCol{v: v, row: row, col: col})
}

// At returns the element at (i, j).
// It relies on the row major order kept by every operation except Append.
func (m *COO) At(i, j int) complex128 {
	k, ok := slices.BinarySearchFunc(m.Data, vRowCol{row: i, col: j}, rowMajor)
	if !ok {
		return 0
	}
	return m.Data[k].v
}

// Add computes a += c*b.
func (a *COO) Add(c complex128, b *COO) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("wrong dimensions %d %d %d %d", a.rows, a.cols, b.rows, b.cols))
	}
	clear(b.m)
	for _, v := range b.Data {
		b.m[[2]int{v.row, v.col}] += v.v
	}

	for i, av := range a.Data {
		byx := [2]int{av.row, av.col}
		bv := b.m[byx]
		delete(b.m, byx)

		a.Data[i].v = av.v + c*bv
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	for yx, bv := range b.m {
		if c*bv == 0 {
			continue
		}
		a.Data = append(a.Data, vRowCol{v: c * bv, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(a.Data, rowMajor)
	clear(b.m)
}

// Kron replaces a with the Kronecker product a ⊗ b.
func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols
	a.rows, a.cols = rows, cols

	prevElemNum := len(a.Data)
	for i := prevElemNum - 1; i >= 0; i-- {
		av := a.Data[i]
		a.Data[i].v = 0
		for _, bv := range b.Data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			a.Data = append(a.Data, vRowCol{v: av.v * bv.v, row: ky, col: kx})
		}
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	slices.SortFunc(a.Data, rowMajor)
}

// Product returns the matrix product a @ b.
func Product(a, b *COO) *COO {
	if a.cols != b.rows {
		panic(fmt.Sprintf("wrong dimensions %d %d %d %d", a.rows, a.cols, b.rows, b.cols))
	}
	byRow := make(map[int][]vRowCol)
	for _, v := range b.Data {
		byRow[v.row] = append(byRow[v.row], v)
	}

	p := COOZeros(a.rows, b.cols)
	for _, av := range a.Data {
		for _, bv := range byRow[av.col] {
			p.m[[2]int{av.row, bv.col}] += av.v * bv.v
		}
	}
	for yx, v := range p.m {
		if v == 0 {
			continue
		}
		p.Data = append(p.Data, vRowCol{v: v, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(p.Data, rowMajor)
	clear(p.m)
	return p
}

// H returns the conjugate transpose.
func (m *COO) H() *COO {
	h := COOZeros(m.cols, m.rows)
	for _, v := range m.Data {
		h.Data = append(h.Data, vRowCol{v: complex(real(v.v), -imag(v.v)), row: v.col, col: v.row})
	}
	slices.SortFunc(h.Data, rowMajor)
	return h
}

// Dense returns m as a dense matrix.
func (m *COO) Dense() [][]complex128 {
	dense := make([][]complex128, m.rows)
	for i := range dense {
		dense[i] = make([]complex128, m.cols)
	}

	for _, v := range m.Data {
		dense[v.row][v.col] += v.v
	}

	return dense
}

// String formats m densely, one row per line and columns separated by tabs.
func (m *COO) String() string {
	var b strings.Builder
	for i, row := range m.Dense() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(FormatNumpy(v))
		}
	}
	return b.String()
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}
