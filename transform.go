/*
 * transform.go, part of goensemble.
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

package ensemble

import (
	v3 "github.com/goensemble/ensemble/v3"
	"gonum.org/v1/gonum/mat"
)

// Transformation is a rigid-body operator: a rotation followed by a
// translation. Coordinates here are row vectors, so applying it to a
// set of coordinates X gives X*Rot^T + Trans, one row at a time.
type Transformation struct {
	rot   *mat.Dense // 3x3
	trans *v3.Matrix // 1x3
}

// NewTransformation builds a Transformation from a 3x3 rotation and a
// 1x3 translation.
func NewTransformation(rot *mat.Dense, trans *v3.Matrix) (*Transformation, error) {
	r, c := rot.Dims()
	if r != 3 || c != 3 {
		return nil, errorf(true, "NewTransformation", "rotation must be 3x3, got %dx%d", r, c)
	}
	if trans.NVecs() != 1 {
		return nil, errorf(true, "NewTransformation", "translation must be a single vector")
	}
	return &Transformation{rot: rot, trans: trans}, nil
}

// Rotation returns a copy of the 3x3 rotation matrix.
func (T *Transformation) Rotation() *mat.Dense {
	ret := mat.NewDense(3, 3, nil)
	ret.Copy(T.rot)
	return ret
}

// Translation returns a copy of the translation vector.
func (T *Transformation) Translation() *v3.Matrix {
	ret := v3.Zeros(1)
	ret.Copy(T.trans)
	return ret
}

// Apply transforms coords in place.
func (T *Transformation) Apply(coords *v3.Matrix) {
	rotated := mat.NewDense(coords.NVecs(), 3, nil)
	rotated.Mul(coords, T.rot.T())
	coords.Copy(rotated)
	coords.AddVec(coords, T.trans)
}

// Compose returns the transformation equivalent to applying first T
// and then next.
func (T *Transformation) Compose(next *Transformation) *Transformation {
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(next.rot, T.rot)
	trans := v3.Zeros(1)
	trans.Copy(T.trans)
	next.Apply(trans)
	return &Transformation{rot: rot, trans: trans}
}

// newDense3 builds a 3x3 gonum matrix from 9 row-major values.
func newDense3(data []float64) *mat.Dense {
	return mat.NewDense(3, 3, data)
}

// IdentityTransformation returns the do-nothing transformation.
func IdentityTransformation() *Transformation {
	rot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		rot.Set(i, i, 1)
	}
	return &Transformation{rot: rot, trans: v3.Zeros(1)}
}
