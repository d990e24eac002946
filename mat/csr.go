package mat

import "slices"

// CSR is a sparse matrix in compressed sparse row format.
// The columns of row i are Cols[RowPtr[i]:RowPtr[i+1]], in ascending order.
type CSR struct {
	rows int
	cols int

	RowPtr []int32
	Cols   []int32
	Vals   []complex128
}

// CSR compresses m, summing duplicate coordinates and dropping zeros.
func (m *COO) CSR() *CSR {
	data := slices.Clone(m.Data)
	slices.SortStableFunc(data, rowMajor)

	c := &CSR{rows: m.rows, cols: m.cols, RowPtr: make([]int32, m.rows+1)}
	for i := 0; i < len(data); {
		v := data[i]
		j := i + 1
		for ; j < len(data) && data[j].row == v.row && data[j].col == v.col; j++ {
			v.v += data[j].v
		}
		i = j
		if v.v == 0 {
			continue
		}
		c.Cols = append(c.Cols, int32(v.col))
		c.Vals = append(c.Vals, v.v)
		c.RowPtr[v.row+1]++
	}
	for i := range m.rows {
		c.RowPtr[i+1] += c.RowPtr[i]
	}
	return c
}

// Rows returns the number of rows.
func (c *CSR) Rows() int { return c.rows }

// NumNonZero returns the number of stored elements.
func (c *CSR) NumNonZero() int { return len(c.Vals) }

// Row returns the columns and values of row i.
func (c *CSR) Row(i int) ([]int32, []complex128) {
	lo, hi := c.RowPtr[i], c.RowPtr[i+1]
	return c.Cols[lo:hi], c.Vals[lo:hi]
}

// COO expands c into coordinate format.
func (c *CSR) COO() *COO {
	m := COOZeros(c.rows, c.cols)
	for i := range c.rows {
		cols, vals := c.Row(i)
		for k, j := range cols {
			m.Data = append(m.Data, vRowCol{v: vals[k], row: i, col: int(j)})
		}
	}
	return m
}
