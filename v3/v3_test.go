/*
 * v3_test.go, part of goensemble.
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

package v3

import (
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	ar, ac := A.Dims()
	if ar != 3 || ac != 3 {
		Te.Errorf("wrong dimensions %d,%d", ar, ac)
	}
	if _, err = NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("expected an error for a slice of length 4")
	}
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Error("changes in a VecView should be reflected in the viewed matrix")
	}
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	err = B.SomeVecsSafe(A, cind)
	if err != nil {
		Te.Error(err)
	}
	for k, v := range cind {
		for j := 0; j < 3; j++ {
			if B.At(k, j) != A.At(v, j) {
				Te.Errorf("SomeVecs: row %d mismatch", k)
			}
		}
	}
	B.Set(1, 1, 55)
	B.Set(2, 2, 66)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 55 || A.At(5, 2) != 66 {
		Te.Error("SetVecs did not write the vectors back")
	}
	err = Zeros(2).SomeVecsSafe(A, cind)
	if err == nil {
		Te.Error("expected a shape error from SomeVecsSafe")
	}
}

func TestVecArithmetic(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	row, _ := NewMatrix([]float64{10, 20, 30})
	A.AddVec(A, row)
	if A.At(0, 0) != 11 || A.At(1, 2) != 36 {
		Te.Error("AddVec gave a wrong result")
	}
	A.SubVec(A, row)
	if A.At(0, 0) != 1 || A.At(1, 2) != 6 {
		Te.Error("SubVec gave a wrong result")
	}
	A.ScaleByCol(A, []float64{2, 3})
	if A.At(0, 1) != 4 || A.At(1, 0) != 12 {
		Te.Error("ScaleByCol gave a wrong result")
	}
}

func TestRowMod(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	B := Zeros(5)
	B.DelVec(A, 3)
	want := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 13, 14, 15, 16, 17, 18}
	for i := 0; i < 5; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(B.At(i, j)-want[i*3+j]) > 1e-12 {
				Te.Errorf("DelVec: element %d,%d is %f, want %f", i, j, B.At(i, j), want[i*3+j])
			}
		}
	}
	A.SwapVecs(0, 5)
	if A.At(0, 0) != 16 || A.At(5, 2) != 3 {
		Te.Error("SwapVecs gave a wrong result")
	}
}
