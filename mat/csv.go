package mat

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"
)

// WriteCSV writes m to dir as two files:
// shape.csv holding "rows,cols", and coo.csv holding one "row,col,value" line per element.
// Values are in numpy notation, so the files load with numpy.loadtxt(dtype=complex).
func (m *COO) WriteCSV(dir string) error {
	shape := [][]string{{strconv.Itoa(m.rows), strconv.Itoa(m.cols)}}
	if err := writeRecords(filepath.Join(dir, FnameShape), shape); err != nil {
		return errors.Wrap(err, "")
	}

	elems := make([][]string, 0, len(m.Data))
	for _, v := range m.Data {
		elems = append(elems, []string{strconv.Itoa(v.row), strconv.Itoa(v.col), FormatNumpy(v.v)})
	}
	if err := writeRecords(filepath.Join(dir, FnameCOO), elems); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// ReadCSV reads a matrix written by WriteCSV.
func ReadCSV(dir string) (*COO, error) {
	shape, err := readRecords(filepath.Join(dir, FnameShape), 2)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if len(shape) != 1 {
		return nil, errors.Errorf("%d shape lines", len(shape))
	}
	dims, err := atoi(shape[0])
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := COOZeros(dims[0], dims[1])

	elems, err := readRecords(filepath.Join(dir, FnameCOO), 3)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for i, rec := range elems {
		yx, err := atoi(rec[:2])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("line %d", i+1))
		}
		if yx[0] < 0 || yx[0] >= m.rows || yx[1] < 0 || yx[1] >= m.cols {
			return nil, errors.Errorf("line %d %v outside %d %d", i+1, yx, m.rows, m.cols)
		}
		v, err := ParseNumpy(rec[2])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("line %d", i+1))
		}
		m.Append(yx[0], yx[1], v)
	}
	slices.SortStableFunc(m.Data, rowMajor)
	return m, nil
}

func writeRecords(fpath string, records [][]string) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := csv.NewWriter(f).WriteAll(records); err != nil {
		f.Close()
		return errors.Wrap(err, fpath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func readRecords(fpath string, fields int) ([][]string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return records, nil
}

func atoi(fields []string) ([]int, error) {
	ints := make([]int, len(fields))
	for i, s := range fields {
		var err error
		if ints[i], err = strconv.Atoi(s); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return ints, nil
}

// FormatNumpy formats v the way numpy prints complex numbers, with j as the imaginary unit.
func FormatNumpy(v complex128) string {
	switch {
	case imag(v) == 0:
		return strconv.FormatFloat(real(v), 'g', -1, 64)
	default:
		s := strconv.FormatComplex(v, 'g', -1, 128)
		s = strings.ReplaceAll(s, "i", "j")
		return s
	}
}

// ParseNumpy parses the output of FormatNumpy.
func ParseNumpy(s string) (complex128, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "j", "i")
	v, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return v, nil
}
