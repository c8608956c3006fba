/*
 * superpose.go, part of goensemble.
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

// Convergence settings for iterative superposition. A round where the
// mean coordinates move by less than iterposeTol (RMSD between
// successive means) stops the iteration.
const (
	iterposeTol     = 1e-4
	iterposeMaxIter = 100
)

// weightedCenter returns the weight-averaged centroid of coords as a
// 1x3 matrix, plus the total weight. A nil weights slice means all
// weights are one.
func weightedCenter(coords *v3.Matrix, weights []float64) (*v3.Matrix, float64) {
	n := coords.NVecs()
	var cx, cy, cz, wsum float64
	for i := 0; i < n; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		row := coords.RawRowView(i)
		cx += row[0] * w
		cy += row[1] * w
		cz += row[2] * w
		wsum += w
	}
	center := v3.Zeros(1)
	if wsum > 0 {
		center.SetRow(0, []float64{cx / wsum, cy / wsum, cz / wsum})
	}
	return center, wsum
}

// FitTransformation computes the rigid-body transformation that best
// superposes mobile onto target in the least-squares sense, weighted
// by weights (nil means uniform). Atoms with zero weight contribute
// nothing to the fit. The returned transformation is not applied.
func FitTransformation(mobile, target *v3.Matrix, weights []float64) (*Transformation, error) {
	n := mobile.NVecs()
	if target.NVecs() != n {
		return nil, errorf(true, "FitTransformation", "mobile has %d vectors, target %d", n, target.NVecs())
	}
	if weights != nil && len(weights) != n {
		return nil, errorf(true, "FitTransformation", "%d weights for %d vectors", len(weights), n)
	}
	cm, wsum := weightedCenter(mobile, weights)
	if wsum <= 0 {
		return nil, errorf(true, "FitTransformation", "total weight is zero, nothing to fit")
	}
	ct, _ := weightedCenter(target, weights)

	// Weighted covariance H = sum_i w_i * (m_i - cm)^T (t_i - ct),
	// accumulated by hand; it is only ever 3x3.
	var h [9]float64
	mc := cm.RawRowView(0)
	tc := ct.RawRowView(0)
	for i := 0; i < n; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w == 0 {
			continue
		}
		m := mobile.RawRowView(i)
		t := target.RawRowView(i)
		dm := [3]float64{m[0] - mc[0], m[1] - mc[1], m[2] - mc[2]}
		dt := [3]float64{t[0] - tc[0], t[1] - tc[1], t[2] - tc[2]}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				h[a*3+b] += w * dm[a] * dt[b]
			}
		}
	}
	H := mat.NewDense(3, 3, h[:])

	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, errorf(true, "FitTransformation", "SVD of the covariance matrix failed")
	}
	U := mat.NewDense(3, 3, nil)
	V := mat.NewDense(3, 3, nil)
	svd.UTo(U)
	svd.VTo(V)

	// R = V D U^T with D correcting for improper rotations: if
	// det(V U^T) is negative the last singular direction is flipped
	// to keep a right-handed system.
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(V, U.T())
	if mat.Det(rot) < 0 {
		D := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, -1})
		VD := mat.NewDense(3, 3, nil)
		VD.Mul(V, D)
		rot.Mul(VD, U.T())
	}

	// t = ct - cm*R^T so that centered rotation plus t maps cm to ct.
	rcm := v3.Zeros(1)
	rcm.Mul(cm, rot.T())
	trans := v3.Zeros(1)
	trans.SubVec(ct, rcm)
	return &Transformation{rot: rot, trans: trans}, nil
}

// Super superposes mobile onto target (as FitTransformation), applies
// the result to mobile in place and returns the transformation.
func Super(mobile, target *v3.Matrix, weights []float64) (*Transformation, error) {
	t, err := FitTransformation(mobile, target, weights)
	if err != nil {
		return nil, errDecorate(err, "Super")
	}
	t.Apply(mobile)
	return t, nil
}

// Superpose rigidly superposes every conformation onto the fixed
// reference coordinates, exactly once. The fit uses only the active
// atoms, weighted by presence; the resulting transformation is applied
// to the whole conformation and stored with it, replacing (composing
// with) any previous one.
func (E *Ensemble) Superpose() error {
	if E.NumConfs() == 0 {
		return errorf(true, "Superpose", "ensemble %q contains no conformations", E.title)
	}
	target := E.activeView(E.ref)
	for i := range E.confs {
		t, err := FitTransformation(E.activeView(E.confs[i]), target, E.activeWeights(i))
		if err != nil {
			return errDecorate(err, "Superpose")
		}
		t.Apply(E.confs[i])
		E.storeTransformation(i, t)
	}
	return nil
}

// Iterpose iteratively superposes the conformations onto their
// evolving presence-weighted mean: superpose all onto the mean,
// recompute the mean, and repeat until it stabilizes. Returns the
// number of rounds performed.
func (E *Ensemble) Iterpose() (int, error) {
	if E.NumConfs() == 0 {
		return 0, errorf(true, "Iterpose", "ensemble %q contains no conformations", E.title)
	}
	mean := E.MeanCoords()
	var rounds int
	for rounds = 1; rounds <= iterposeMaxIter; rounds++ {
		target := E.activeView(mean)
		for i := range E.confs {
			t, err := FitTransformation(E.activeView(E.confs[i]), target, E.activeWeights(i))
			if err != nil {
				return rounds, errDecorate(err, "Iterpose")
			}
			t.Apply(E.confs[i])
			E.storeTransformation(i, t)
		}
		newmean := E.MeanCoords()
		shift, err := RMSD(E.activeView(newmean), target, nil)
		if err != nil {
			return rounds, errDecorate(err, "Iterpose")
		}
		mean = newmean
		if shift < iterposeTol {
			break
		}
	}
	return rounds, nil
}
