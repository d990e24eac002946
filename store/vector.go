package store

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// FnameVector is the restart vector of a solve.
	FnameVector = "evec.csv"
)

// WriteVector writes v to dir, one element per line.
func WriteVector(dir string, v []complex128) error {
	fpath := filepath.Join(dir, FnameVector)
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	row := make([]string, 1)
	for _, x := range v {
		row[0] = strconv.FormatComplex(x, 'g', -1, 128)
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// ReadVector reads the vector written by WriteVector.
func ReadVector(dir string) ([]complex128, error) {
	fpath := filepath.Join(dir, FnameVector)
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = 1

	v := make([]complex128, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		x, err := strconv.ParseComplex(record[0], 128)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		v = append(v, x)
	}
	return v, nil
}
