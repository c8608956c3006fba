/*
 * rmsd.go, part of goensemble.
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
	"math"

	v3 "github.com/goensemble/ensemble/v3"
)

// RMSD returns the weighted root-mean-square deviation between the
// vectors of a and b, without aligning them first. A nil weights slice
// means uniform weights; a zero-weight vector contributes nothing.
func RMSD(a, b *v3.Matrix, weights []float64) (float64, error) {
	n := a.NVecs()
	if b.NVecs() != n {
		return 0, errorf(true, "RMSD", "matrices have %d and %d vectors", n, b.NVecs())
	}
	if weights != nil && len(weights) != n {
		return 0, errorf(true, "RMSD", "%d weights for %d vectors", len(weights), n)
	}
	var sum, wsum float64
	for i := 0; i < n; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w == 0 {
			continue
		}
		ra := a.RawRowView(i)
		rb := b.RawRowView(i)
		dx := ra[0] - rb[0]
		dy := ra[1] - rb[1]
		dz := ra[2] - rb[2]
		sum += w * (dx*dx + dy*dy + dz*dz)
		wsum += w
	}
	if wsum <= 0 {
		return 0, errorf(true, "RMSD", "total weight is zero")
	}
	return math.Sqrt(sum / wsum), nil
}

// RMSDs returns the RMSD of each conformation to the reference
// coordinates, over the active atoms, weighted by presence.
func (E *Ensemble) RMSDs() ([]float64, error) {
	if E.NumConfs() == 0 {
		return nil, errorf(true, "RMSDs", "ensemble %q contains no conformations", E.title)
	}
	ref := E.activeView(E.ref)
	ret := make([]float64, E.NumConfs())
	for i := range E.confs {
		r, err := RMSD(E.activeView(E.confs[i]), ref, E.activeWeights(i))
		if err != nil {
			return nil, errDecorate(err, "RMSDs")
		}
		ret[i] = r
	}
	return ret, nil
}

// PairwiseRMSDs returns the full symmetric matrix of RMSDs between
// every pair of conformations, over the active atoms. For a weighted
// ensemble the pair weight of an atom is the product of both presence
// weights, so an atom missing from either conformation is ignored.
func (E *Ensemble) PairwiseRMSDs() ([][]float64, error) {
	n := E.NumConfs()
	if n == 0 {
		return nil, errorf(true, "PairwiseRMSDs", "ensemble %q contains no conformations", E.title)
	}
	ret := make([][]float64, n)
	for i := range ret {
		ret[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		ci := E.activeView(E.confs[i])
		wi := E.activeWeights(i)
		for j := i + 1; j < n; j++ {
			wj := E.activeWeights(j)
			var w []float64
			switch {
			case wi == nil:
				w = wj
			case wj == nil:
				w = wi
			default:
				w = make([]float64, len(wi))
				for k := range wi {
					w[k] = wi[k] * wj[k]
				}
			}
			r, err := RMSD(ci, E.activeView(E.confs[j]), w)
			if err != nil {
				return nil, errDecorate(err, "PairwiseRMSDs")
			}
			ret[i][j] = r
			ret[j][i] = r
		}
	}
	return ret, nil
}
