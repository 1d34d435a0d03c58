package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrMatrixShape  = errors.New("bit matrix rows and columns must be positive multiples of 8")
	ErrColumnLength = errors.New("column length does not match the number of rows")
)

// A BitMatrix is a rows by cols matrix of bits stored column by column:
// column i occupies rows/8 consecutive bytes and the bit for row j of
// column i lives at bit index i*rows+j, most significant bit first.
//
// A BitMatrix produced during OT extension holds correlated secret randomness,
// callers drop it as soon as the protocol run returns.
type BitMatrix struct {
	rows, cols int
	data       []byte
}

// NewBitMatrix returns a zeroed rows x cols bit matrix.
func NewBitMatrix(rows, cols int) (*BitMatrix, error) {
	if rows <= 0 || cols <= 0 || rows%8 != 0 || cols%8 != 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrMatrixShape, rows, cols)
	}
	return &BitMatrix{rows: rows, cols: cols, data: make([]byte, rows*cols/8)}, nil
}

// Pack copies len(columns) == cols bit columns of rows/8 bytes each
// into a new matrix.
func Pack(columns [][]byte, rows, cols int) (*BitMatrix, error) {
	m, err := NewBitMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(columns) != cols {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrMatrixShape, len(columns), cols)
	}
	for i, c := range columns {
		if len(c) != rows/8 {
			return nil, ErrColumnLength
		}
		copy(m.column(i), c)
	}
	return m, nil
}

// SampleBitMatrix returns a rows x cols matrix filled with bits read from r.
func SampleBitMatrix(r io.Reader, rows, cols int) (*BitMatrix, error) {
	m, err := NewBitMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, m.data); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *BitMatrix) Rows() int { return m.rows }
func (m *BitMatrix) Cols() int { return m.cols }

func (m *BitMatrix) column(i int) []byte {
	return m.data[i*m.rows/8 : (i+1)*m.rows/8]
}

// Column returns a copy of column i.
func (m *BitMatrix) Column(i int) []byte {
	if i < 0 || i >= m.cols {
		panic(fmt.Sprintf("bit matrix column %d out of range [0,%d)", i, m.cols))
	}
	c := make([]byte, m.rows/8)
	copy(c, m.column(i))
	return c
}

// Columns returns copies of every column, in order.
func (m *BitMatrix) Columns() [][]byte {
	cols := make([][]byte, m.cols)
	for i := range cols {
		cols[i] = m.Column(i)
	}
	return cols
}

func (m *BitMatrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("bit matrix index (%d,%d) out of range for %dx%d", row, col, m.rows, m.cols))
	}
}

// Get reports whether the bit at (row, col) is set.
func (m *BitMatrix) Get(row, col int) bool {
	m.checkBounds(row, col)
	return BitSet(m.data, col*m.rows+row)
}

// Set sets the bit at (row, col).
func (m *BitMatrix) Set(row, col int, v bool) {
	m.checkBounds(row, col)
	SetBit(m.data, col*m.rows+row, v)
}

// Equal reports whether m and o have the same shape and bits.
func (m *BitMatrix) Equal(o *BitMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// XorColumns returns a new matrix whose every column is the matching
// column of m xored with v. v must hold rows/8 bytes. m is left untouched.
func (m *BitMatrix) XorColumns(v []byte) (*BitMatrix, error) {
	if len(v) != m.rows/8 {
		return nil, ErrColumnLength
	}
	out := &BitMatrix{rows: m.rows, cols: m.cols, data: make([]byte, len(m.data))}
	copy(out.data, m.data)
	for i := 0; i < m.cols; i++ {
		Xor(out.column(i), v)
	}
	return out, nil
}

// Transpose returns the cols x rows matrix whose column j is row j of m,
// so that every row of m becomes contiguous. The matrix is walked in 8x8
// bit blocks, each transposed inside a single uint64.
func (m *BitMatrix) Transpose() *BitMatrix {
	t := &BitMatrix{rows: m.cols, cols: m.rows, data: make([]byte, len(m.data))}
	rowBytes, colBytes := m.rows/8, m.cols/8

	var block [8]byte
	for bi := 0; bi < colBytes; bi++ {
		for bj := 0; bj < rowBytes; bj++ {
			for k := 0; k < 8; k++ {
				block[k] = m.data[(8*bi+k)*rowBytes+bj]
			}
			x := transpose8(binary.BigEndian.Uint64(block[:]))
			binary.BigEndian.PutUint64(block[:], x)
			for k := 0; k < 8; k++ {
				t.data[(8*bj+k)*colBytes+bi] = block[k]
			}
		}
	}
	return t
}

// transpose8 transposes the 8x8 bit matrix packed in x, one row per byte
// with row 0 in the most significant byte.
// Hacker's Delight, 2nd ed., figure 7-6.
func transpose8(x uint64) uint64 {
	t := (x ^ (x >> 7)) & 0x00AA00AA00AA00AA
	x = x ^ t ^ (t << 7)
	t = (x ^ (x >> 14)) & 0x0000CCCC0000CCCC
	x = x ^ t ^ (t << 14)
	t = (x ^ (x >> 28)) & 0x00000000F0F0F0F0
	return x ^ t ^ (t << 28)
}
