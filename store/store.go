// Package store keeps the named numeric arrays of impurities in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableDataset = "dataset"
)

// Names of the inputs of an impurity.
const (
	NameNorb       = "NORB"
	NameNvalBot    = "NVAL_BOT"
	NameNvalTop    = "NVAL_TOP"
	NameH1E        = "H1E"
	NameD          = "D"
	NameLambda     = "LAMBDA"
	NameV2E        = "V2E"
	NameNorbMott   = "NORB_MOTT"
	NameNelectMott = "NELECT_MOTT"
	NameIorbMott   = "IORB_MOTT"
	NameSz         = "SZ"
	NameLz         = "LZ"
)

// Names of the results of an impurity.
const (
	NameEmol = "EMOL"
	NameDM   = "DM"
	NameDimV = "DIMV"
	NameEvec = "EVEC"
)

var (
	// ErrNotFound is returned for datasets absent from the store.
	ErrNotFound = errors.New("dataset not found")
)

// Codec is the element type of a dataset.
type Codec string

const (
	CodecComplex128 Codec = "c128"
	CodecFloat64    Codec = "f64"
	CodecInt64      Codec = "i64"
)

func (c Codec) size() int {
	switch c {
	case CodecComplex128:
		return 16
	default:
		return 8
	}
}

// Store is a SQLite database of datasets addressed by impurity and name.
// Elements are stored little endian and zstd compressed.
// A Store is safe for concurrent use.
type Store struct {
	Path string
	db   *sql.DB

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens the store at dbPath, creating it if it does not exist.
func Open(dbPath string) (*Store, error) {
	s := &Store{Path: dbPath}
	var err error
	s.db, err = sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	// SQLite allows a single writer.
	s.db.SetMaxOpenConns(1)
	if err := prepareDB(s.db); err != nil {
		s.db.Close()
		return nil, errors.Wrap(err, "")
	}

	s.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		s.db.Close()
		return nil, errors.Wrap(err, "")
	}
	s.dec, err = zstd.NewReader(nil)
	if err != nil {
		s.enc.Close()
		s.db.Close()
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

func (s *Store) Close() error {
	var err error
	if err1 := s.enc.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	s.dec.Close()
	if err1 := s.db.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// Dataset is a named array of one impurity.
type Dataset struct {
	Impurity int
	Name     string
	Dims     []int
	Codec    Codec
	data     []byte
}

// Len returns the number of elements.
func (d Dataset) Len() int { return len(d.data) / d.Codec.size() }

// Complex returns the elements as complex numbers.
func (d Dataset) Complex() ([]complex128, error) {
	v := make([]complex128, d.Len())
	switch d.Codec {
	case CodecComplex128:
		for i := range v {
			re := math.Float64frombits(binary.LittleEndian.Uint64(d.data[16*i:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(d.data[16*i+8:]))
			v[i] = complex(re, im)
		}
	case CodecFloat64:
		f, _ := d.Float()
		for i, x := range f {
			v[i] = complex(x, 0)
		}
	case CodecInt64:
		n, _ := d.Int()
		for i, x := range n {
			v[i] = complex(float64(x), 0)
		}
	default:
		return nil, errors.Errorf("%s %s: codec %q", d.Name, dims(d.Dims), d.Codec)
	}
	return v, nil
}

// Float returns the elements as real numbers.
// Complex elements must have zero imaginary parts.
func (d Dataset) Float() ([]float64, error) {
	v := make([]float64, d.Len())
	switch d.Codec {
	case CodecFloat64:
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.data[8*i:]))
		}
	case CodecInt64:
		n, _ := d.Int()
		for i, x := range n {
			v[i] = float64(x)
		}
	case CodecComplex128:
		c, _ := d.Complex()
		for i, x := range c {
			if imag(x) != 0 {
				return nil, errors.Errorf("%s: complex element %d %v", d.Name, i, x)
			}
			v[i] = real(x)
		}
	default:
		return nil, errors.Errorf("%s %s: codec %q", d.Name, dims(d.Dims), d.Codec)
	}
	return v, nil
}

// Int returns the elements as integers.
// Real elements must be integral.
func (d Dataset) Int() ([]int, error) {
	v := make([]int, d.Len())
	switch d.Codec {
	case CodecInt64:
		for i := range v {
			v[i] = int(int64(binary.LittleEndian.Uint64(d.data[8*i:])))
		}
	case CodecFloat64, CodecComplex128:
		f, err := d.Float()
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		for i, x := range f {
			if x != math.Trunc(x) {
				return nil, errors.Errorf("%s: non integral element %d %f", d.Name, i, x)
			}
			v[i] = int(x)
		}
	default:
		return nil, errors.Errorf("%s %s: codec %q", d.Name, dims(d.Dims), d.Codec)
	}
	return v, nil
}

// PutComplex stores v under name, replacing any previous dataset.
// Without dims, v is stored as a vector.
func (s *Store) PutComplex(ctx context.Context, impurity int, name string, v []complex128, dims ...int) error {
	b := make([]byte, 0, 16*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(real(x)))
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(imag(x)))
	}
	return s.put(ctx, impurity, name, CodecComplex128, len(v), dims, b)
}

// PutFloat stores v under name, replacing any previous dataset.
func (s *Store) PutFloat(ctx context.Context, impurity int, name string, v []float64, dims ...int) error {
	b := make([]byte, 0, 8*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	}
	return s.put(ctx, impurity, name, CodecFloat64, len(v), dims, b)
}

// PutInt stores v under name, replacing any previous dataset.
func (s *Store) PutInt(ctx context.Context, impurity int, name string, v []int, dims ...int) error {
	b := make([]byte, 0, 8*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint64(b, uint64(int64(x)))
	}
	return s.put(ctx, impurity, name, CodecInt64, len(v), dims, b)
}

func (s *Store) put(ctx context.Context, impurity int, name string, codec Codec, n int, shape []int, b []byte) error {
	if len(shape) == 0 {
		shape = []int{n}
	}
	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != n {
		return errors.Errorf("%s: %d elements, dims %v", name, n, shape)
	}

	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (impurity, name, dims, codec, data) VALUES (?, ?, ?, ?, ?)`, tableDataset)
	args := []any{impurity, name, dims(shape), string(codec), s.enc.EncodeAll(b, nil)}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%d %s", impurity, name))
	}
	return nil
}

// Get returns the dataset name of impurity, or ErrNotFound.
func (s *Store) Get(ctx context.Context, impurity int, name string) (Dataset, error) {
	sqlStr := fmt.Sprintf(`SELECT dims, codec, data FROM %s WHERE impurity=? AND name=?`, tableDataset)
	var dimsStr, codec string
	var blob []byte
	err := s.db.QueryRowContext(ctx, sqlStr, impurity, name).Scan(&dimsStr, &codec, &blob)
	switch {
	case err == sql.ErrNoRows:
		return Dataset{}, errors.Wrap(ErrNotFound, fmt.Sprintf("%d %s", impurity, name))
	case err != nil:
		return Dataset{}, errors.Wrap(err, fmt.Sprintf("%d %s", impurity, name))
	}

	d := Dataset{Impurity: impurity, Name: name, Codec: Codec(codec)}
	d.Dims, err = parseDims(dimsStr)
	if err != nil {
		return Dataset{}, errors.Wrap(err, fmt.Sprintf("%d %s", impurity, name))
	}
	switch d.Codec {
	case CodecComplex128, CodecFloat64, CodecInt64:
	default:
		return Dataset{}, errors.Errorf("%d %s: codec %q", impurity, name, codec)
	}
	d.data, err = s.dec.DecodeAll(blob, nil)
	if err != nil {
		return Dataset{}, errors.Wrap(err, fmt.Sprintf("%d %s", impurity, name))
	}

	size := 1
	for _, n := range d.Dims {
		size *= n
	}
	if len(d.data) != size*d.Codec.size() {
		return Dataset{}, errors.Errorf("%d %s: %d bytes, dims %v codec %s", impurity, name, len(d.data), d.Dims, d.Codec)
	}
	return d, nil
}

// Complex returns the elements of a dataset as complex numbers.
func (s *Store) Complex(ctx context.Context, impurity int, name string) ([]complex128, error) {
	d, err := s.Get(ctx, impurity, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	v, err := d.Complex()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return v, nil
}

// Float returns the elements of a dataset as real numbers.
func (s *Store) Float(ctx context.Context, impurity int, name string) ([]float64, error) {
	d, err := s.Get(ctx, impurity, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	v, err := d.Float()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return v, nil
}

// Int returns the elements of a dataset as integers.
func (s *Store) Int(ctx context.Context, impurity int, name string) ([]int, error) {
	d, err := s.Get(ctx, impurity, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	v, err := d.Int()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return v, nil
}

// Scalar returns the single integer of a dataset.
func (s *Store) Scalar(ctx context.Context, impurity int, name string) (int, error) {
	v, err := s.Int(ctx, impurity, name)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	if len(v) != 1 {
		return -1, errors.Errorf("%d %s: %d elements", impurity, name, len(v))
	}
	return v[0], nil
}

// Names returns the names of the datasets of impurity, in ascending order.
func (s *Store) Names(ctx context.Context, impurity int) ([]string, error) {
	sqlStr := fmt.Sprintf(`SELECT name FROM %s WHERE impurity=? ORDER BY name`, tableDataset)
	rows, err := s.db.QueryContext(ctx, sqlStr, impurity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return names, nil
}

// Impurities returns the impurities having a NORB dataset, in ascending order.
func (s *Store) Impurities(ctx context.Context) ([]int, error) {
	sqlStr := fmt.Sprintf(`SELECT impurity FROM %s WHERE name=? ORDER BY impurity`, tableDataset)
	rows, err := s.db.QueryContext(ctx, sqlStr, NameNorb)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	imps := make([]int, 0)
	for rows.Next() {
		var imp int
		if err := rows.Scan(&imp); err != nil {
			return nil, errors.Wrap(err, "")
		}
		imps = append(imps, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return imps, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (impurity INTEGER, name TEXT, dims TEXT, codec TEXT, data BLOB, PRIMARY KEY (impurity, name)) STRICT`, tableDataset)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func dims(shape []int) string {
	strs := make([]string, 0, len(shape))
	for _, d := range shape {
		strs = append(strs, strconv.Itoa(d))
	}
	return strings.Join(strs, ",")
}

func parseDims(s string) ([]int, error) {
	shape := make([]int, 0)
	for _, str := range strings.Split(s, ",") {
		d, err := strconv.Atoi(str)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%q", s))
		}
		if d < 0 {
			return nil, errors.Errorf("%q", s)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
