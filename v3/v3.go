/*
 * v3.go, part of goensemble.
 *
 * Copyright 2026 The goensemble developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package v3 implements matrices of 3D coordinates, i.e. matrices with
// N rows and exactly 3 columns, on top of gonum Dense matrices. Within
// the package a "vector" is a row of such a matrix, the cartesian
// coordinates of one point in space.
package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space. It embeds a gonum Dense
// matrix with 3 columns, so every gonum method operating on a Dense is
// available.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps a 3-column Dense into a Matrix. It panics if A
// does not have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

// NVecs returns the number of vectors in the matrix.
func (F *Matrix) NVecs() int {
	r, _ := F.Dims()
	return r
}

// VecView returns a view of the ith vector of the matrix. Changes in
// the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from i,0 and spanning r rows and
// all 3 columns.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// SomeVecs puts in F copies of the vectors of A indexed by clist, in
// the given order. Panics if the shapes do not match.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if len(clist) > fr {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= ar {
			panic(ErrIndexOutOfRange)
		}
		F.SetRow(key, A.RawRowView(val))
	}
}

// SomeVecsSafe is as SomeVecs, but returns an error instead of
// panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	f := func() { F.SomeVecs(A, clist) }
	defer func() {
		if r := recover(); r != nil {
			err = Error{fmt.Sprint(r), []string{"SomeVecsSafe"}, true}
		}
	}()
	f()
	return err
}

// SetVecs copies the consecutive vectors of A into the vectors of F
// indexed by clist, the inverse of SomeVecs.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	fr, _ := F.Dims()
	for key, val := range clist {
		if val >= fr {
			panic(ErrIndexOutOfRange)
		}
		F.SetRow(val, A.RawRowView(key))
	}
}

// SwapVecs swaps the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	ri := append([]float64{}, F.RawRowView(i)...)
	F.SetRow(i, F.RawRowView(j))
	F.SetRow(j, ri)
}

// AddVec adds the single vector vec to each vector of A, putting the
// result in the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	if vec.NVecs() != 1 {
		panic(ErrShape)
	}
	v := vec.RawRowView(0)
	ar := A.NVecs()
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		F.SetRow(i, []float64{a[0] + v[0], a[1] + v[1], a[2] + v[2]})
	}
}

// SubVec subtracts the single vector vec from each vector of A,
// putting the result in the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	if vec.NVecs() != 1 {
		panic(ErrShape)
	}
	v := vec.RawRowView(0)
	ar := A.NVecs()
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		F.SetRow(i, []float64{a[0] - v[0], a[1] - v[1], a[2] - v[2]})
	}
}

// ScaleByCol scales each vector i of A by the ith element of col.
func (F *Matrix) ScaleByCol(A *Matrix, col []float64) {
	ar := A.NVecs()
	if len(col) != ar {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		F.SetRow(i, []float64{a[0] * col[i], a[1] * col[i], a[2] * col[i]})
	}
}

// DelVec puts in the receiver a copy of A without the vector i. The
// receiver must have one vector less than A.
func (F *Matrix) DelVec(A *Matrix, i int) {
	ar := A.NVecs()
	if i >= ar || F.NVecs() != ar-1 {
		panic(ErrShape)
	}
	for j := 0; j < ar; j++ {
		switch {
		case j < i:
			F.SetRow(j, A.RawRowView(j))
		case j > i:
			F.SetRow(j-1, A.RawRowView(j))
		}
	}
}

// Errors

// Error is the v3 implementation of the goensemble error interface.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate adds the dec string to the decoration slice of strings of
// the error, and returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or can be ignored.
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics. It does satisfy the error
// interface, but for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("goensemble/v3: A Matrix should have 3 columns")
	ErrShape           = PanicMsg("goensemble/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goensemble/v3: Index out of range")
)
