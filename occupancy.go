/*
 * occupancy.go, part of goensemble.
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
)

// CalcOccupancies returns, per active atom, the number of
// conformations in which that atom is present (any nonzero presence
// weight counts as one). With normed the counts are divided by the
// number of conformations, giving values in [0,1]. This is how one
// sees how often a residue is resolved across an ensemble of X-ray
// structures.
func CalcOccupancies(ens *Ensemble, normed bool) ([]float64, error) {
	if !ens.Weighted() {
		return nil, errorf(true, "CalcOccupancies", "ensemble %q carries no presence weights", ens.Title())
	}
	if ens.NumConfs() == 0 {
		return nil, errorf(true, "CalcOccupancies", "ensemble %q contains no conformations", ens.Title())
	}
	occ := make([]float64, ens.NumAtoms())
	for i := 0; i < ens.NumConfs(); i++ {
		w := ens.activeWeights(i)
		if w == nil {
			return nil, errorf(true, "CalcOccupancies", "conformation %d of %q has no weights", i, ens.Title())
		}
		for k, v := range w {
			if v != 0 {
				occ[k]++
			}
		}
	}
	if normed {
		n := float64(ens.NumConfs())
		for k := range occ {
			occ[k] /= n
		}
	}
	return occ, nil
}

// Trim returns a new ensemble restricted to the active atoms whose
// normalized occupancy is at least occupancy (0 < occupancy <= 1). An
// occupancy <= 0 means "no threshold": hard mode is forced and every
// currently active atom is kept.
//
// In hard mode the kept atoms become the whole reference frame of the
// returned ensemble: atom columns are physically discarded from every
// conformation, the coordinates and weights are re-allocated, and any
// selection view is materialized away. Stored transformations are
// carried over unchanged, not recomputed; re-superpose if the
// discarded atoms mattered to the fit.
//
// In soft mode nothing is discarded: the returned ensemble shares the
// underlying storage and only narrows the active-selection view,
// composing with any pre-existing one, so repeated soft trims
// intersect. Auxiliary metadata is shared by reference either way.
func Trim(ens *Ensemble, occupancy float64, hard bool) (*Ensemble, error) {
	if ens.NumConfs() == 0 || ens.FullAtoms() == 0 {
		return nil, errorf(true, "Trim", "ensemble %q must have conformations and atoms", ens.Title())
	}
	if occupancy > 1 {
		return nil, errorf(true, "Trim", "occupancy must be in (0,1], got %g", occupancy)
	}

	// keep-mask over the active atoms
	var torf []bool
	if occupancy > 0 {
		occ, err := CalcOccupancies(ens, true)
		if err != nil {
			return nil, errDecorate(err, "Trim")
		}
		torf = make([]bool, len(occ))
		for k, v := range occ {
			torf[k] = v >= occupancy
		}
	} else {
		hard = true
		torf = make([]bool, ens.NumAtoms())
		for k := range torf {
			torf[k] = true
		}
	}
	active := ens.activeIndices()
	keptActive := make([]int, 0, len(active)) // positions within the active view
	keptFull := make([]int, 0, len(active))   // positions within the full frame
	for k, keep := range torf {
		if keep {
			keptActive = append(keptActive, k)
			keptFull = append(keptFull, active[k])
		}
	}

	trimmed := NewEnsemble(ens.Title(), ens.Weighted())
	trimmed.data = ens.data

	if !hard {
		trimmed.top = ens.top
		trimmed.ref = ens.ref
		trimmed.confs = ens.confs
		trimmed.weights = ens.weights
		trimmed.labels = ens.labels
		trimmed.trans = ens.trans
		trimmed.seqs = ens.seqs
		trimmed.indices = keptFull
		return trimmed, nil
	}

	if ens.Atoms() == nil {
		return nil, errorf(true, "Trim", "hard trimming needs an atom set attached to %q", ens.Title())
	}
	top, err := ens.Atoms().SomeAtoms(keptFull)
	if err != nil {
		return nil, errDecorate(err, "Trim")
	}
	if err := trimmed.SetAtoms(top); err != nil {
		return nil, errDecorate(err, "Trim")
	}
	ref := v3.Zeros(len(keptFull))
	ref.SomeVecs(ens.ref, keptFull)
	if err := trimmed.SetCoords(ref); err != nil {
		return nil, errDecorate(err, "Trim")
	}
	for i := 0; i < ens.NumConfs(); i++ {
		coords := v3.Zeros(len(keptFull))
		coords.SomeVecs(ens.confs[i], keptFull)
		var w []float64
		if ens.weights[i] != nil {
			w = make([]float64, len(keptFull))
			for k, v := range keptFull {
				w[k] = ens.weights[i][v]
			}
		}
		seq := ens.seqs[i]
		switch len(seq) {
		case ens.NumAtoms():
			seq = trimSeq(seq, keptActive)
		case ens.FullAtoms():
			seq = trimSeq(seq, keptFull)
		}
		if err := trimmed.AddConformation(coords, w, ens.labels[i], seq); err != nil {
			return nil, errDecorate(err, "Trim")
		}
		trimmed.trans[i] = ens.trans[i]
	}
	return trimmed, nil
}

// trimSeq slices a per-atom sequence string by the kept positions.
func trimSeq(seq string, kept []int) string {
	b := make([]byte, 0, len(kept))
	for _, k := range kept {
		b = append(b, seq[k])
	}
	return string(b)
}
