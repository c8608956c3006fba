/*
 * ensemble.go, part of goensemble.
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

// Package ensemble assembles and curates structural ensembles:
// collections of conformations of possibly different, partially
// overlapping structures, normalized onto one reference atom ordering
// so that per-atom comparisons (occupancy, RMSD, superposition) are
// meaningful.
package ensemble

import (
	v3 "github.com/goensemble/ensemble/v3"
)

// Ensemble holds a reference frame (an ordered atom set plus its
// coordinates, fixed at creation) and an ordered sequence of
// conformations positionally aligned to it. A weighted ensemble
// carries a per-atom presence weight for each conformation: nonzero
// where the atom was actually resolved in the source data, zero where
// it was imputed. Zero-weight atoms contribute nothing to any
// statistic computed from the ensemble.
//
// An optional index-selection view restricts the "active" atoms
// without discarding data; all derived statistics (occupancies, RMSDs,
// superposition fits) run over the active atoms only.
type Ensemble struct {
	title    string
	top      *Topology
	ref      *v3.Matrix
	confs    []*v3.Matrix
	weights  [][]float64
	labels   []string
	trans    []*Transformation
	seqs     []string
	indices  []int // active selection; nil means all atoms
	weighted bool
	data     map[string]interface{}
}

// NewEnsemble creates an empty ensemble with a title. weighted decides
// whether the ensemble carries per-atom presence weights; the builder
// pipeline always creates weighted ensembles.
func NewEnsemble(title string, weighted bool) *Ensemble {
	return &Ensemble{title: title, weighted: weighted, data: make(map[string]interface{})}
}

// Title returns the title of the ensemble.
func (E *Ensemble) Title() string { return E.title }

// SetTitle sets the title of the ensemble.
func (E *Ensemble) SetTitle(t string) { E.title = t }

// Weighted reports whether the ensemble carries per-atom presence
// weights.
func (E *Ensemble) Weighted() bool { return E.weighted }

// SetAtoms attaches the reference atom set. It can only be called
// before any conformation is added.
func (E *Ensemble) SetAtoms(top *Topology) error {
	if len(E.confs) > 0 {
		return errorf(true, "SetAtoms", "the reference frame is fixed once conformations are added")
	}
	E.top = top
	return nil
}

// Atoms returns the reference atom set, or nil if none is attached.
func (E *Ensemble) Atoms() *Topology { return E.top }

// SetCoords sets the reference coordinates. Like the atom set, they
// are fixed once conformations are added. If an atom set is attached
// it must have the same length.
func (E *Ensemble) SetCoords(ref *v3.Matrix) error {
	if len(E.confs) > 0 {
		return errorf(true, "SetCoords", "the reference frame is fixed once conformations are added")
	}
	if E.top != nil && ref.NVecs() != E.top.Len() {
		return errorf(true, "SetCoords", "%d coordinates for %d reference atoms", ref.NVecs(), E.top.Len())
	}
	E.ref = ref
	return nil
}

// Coords returns a copy of the reference coordinates restricted to the
// active atoms, or nil if no reference coordinates are set.
func (E *Ensemble) Coords() *v3.Matrix {
	if E.ref == nil {
		return nil
	}
	ret := v3.Zeros(E.NumAtoms())
	ret.Copy(E.activeView(E.ref))
	return ret
}

// NumAtoms returns the number of active atoms.
func (E *Ensemble) NumAtoms() int {
	if E.indices != nil {
		return len(E.indices)
	}
	if E.ref == nil {
		return 0
	}
	return E.ref.NVecs()
}

// FullAtoms returns the total number of atoms in the reference frame,
// ignoring any active selection.
func (E *Ensemble) FullAtoms() int {
	if E.ref == nil {
		return 0
	}
	return E.ref.NVecs()
}

// NumConfs returns the number of conformations in the ensemble.
func (E *Ensemble) NumConfs() int { return len(E.confs) }

// Len is NumConfs, so an Ensemble can be ranged over by index with the
// usual idiom.
func (E *Ensemble) Len() int { return len(E.confs) }

// AddConformation appends one conformation. coords must have exactly
// one row per reference atom. weights may be nil; for a weighted
// ensemble that means full presence. seq is an optional per-residue
// sequence string aligned to the reference atoms ("" for none).
func (E *Ensemble) AddConformation(coords *v3.Matrix, weights []float64, label, seq string) error {
	if E.ref == nil {
		return errorf(true, "AddConformation", "the ensemble has no reference coordinates")
	}
	n := E.ref.NVecs()
	if coords.NVecs() != n {
		return errorf(true, "AddConformation", "conformation %q has %d atoms, the reference frame %d", label, coords.NVecs(), n)
	}
	if weights != nil && len(weights) != n {
		return errorf(true, "AddConformation", "conformation %q has %d weights for %d atoms", label, len(weights), n)
	}
	if E.weighted && weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}
	if !E.weighted {
		weights = nil
	}
	E.confs = append(E.confs, coords)
	E.weights = append(E.weights, weights)
	E.labels = append(E.labels, label)
	E.trans = append(E.trans, nil)
	E.seqs = append(E.seqs, seq)
	return nil
}

// Labels returns a copy of the conformation labels, in order.
func (E *Ensemble) Labels() []string {
	return append([]string{}, E.labels...)
}

// Label returns the label of conformation i.
func (E *Ensemble) Label(i int) string { return E.labels[i] }

// index resolves a label to the index of the first conformation
// carrying it.
func (E *Ensemble) index(label string) (int, error) {
	for i, l := range E.labels {
		if l == label {
			return i, nil
		}
	}
	return -1, errorf(true, "index", "no conformation with the label %q in the ensemble", label)
}

// Conformation returns a copy of the coordinates of conformation i
// restricted to the active atoms.
func (E *Ensemble) Conformation(i int) *v3.Matrix {
	ret := v3.Zeros(E.NumAtoms())
	ret.Copy(E.activeView(E.confs[i]))
	return ret
}

// Weights returns the presence weights of conformation i over the
// active atoms, or nil for an unweighted ensemble. The slice is a
// copy.
func (E *Ensemble) Weights(i int) []float64 {
	w := E.activeWeights(i)
	if w == nil {
		return nil
	}
	return append([]float64{}, w...)
}

// Transformation returns the stored rigid-body transformation of
// conformation i, or nil if no superposition pass has been run.
func (E *Ensemble) Transformation(i int) *Transformation { return E.trans[i] }

// Sequence returns the sequence string of conformation i ("" if none).
func (E *Ensemble) Sequence(i int) string { return E.seqs[i] }

// storeTransformation records t for conformation i, composing it with
// any previously stored transformation so the stored operator always
// maps the original source coordinates onto the current ones.
func (E *Ensemble) storeTransformation(i int, t *Transformation) {
	if E.trans[i] != nil {
		t = E.trans[i].Compose(t)
	}
	E.trans[i] = t
}

// activeIndices returns the active selection, or every index when no
// selection view is set.
func (E *Ensemble) activeIndices() []int {
	if E.indices != nil {
		return E.indices
	}
	n := E.FullAtoms()
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}

// activeView returns m restricted to the active atoms. Without a
// selection view it is m itself, not a copy.
func (E *Ensemble) activeView(m *v3.Matrix) *v3.Matrix {
	if E.indices == nil {
		return m
	}
	ret := v3.Zeros(len(E.indices))
	ret.SomeVecs(m, E.indices)
	return ret
}

// activeWeights returns the presence weights of conformation i over
// the active atoms, or nil for an unweighted ensemble. Without a
// selection view the underlying slice is returned, not a copy.
func (E *Ensemble) activeWeights(i int) []float64 {
	w := E.weights[i]
	if w == nil || E.indices == nil {
		return w
	}
	ret := make([]float64, len(E.indices))
	for k, v := range E.indices {
		ret[k] = w[v]
	}
	return ret
}

// MeanCoords returns the presence-weighted mean coordinates over all
// conformations, full-length (one row per reference atom). Atoms
// present in no conformation keep their reference coordinates.
func (E *Ensemble) MeanCoords() *v3.Matrix {
	n := E.FullAtoms()
	mean := v3.Zeros(n)
	wsum := make([]float64, n)
	for ci, c := range E.confs {
		w := E.weights[ci]
		for i := 0; i < n; i++ {
			wi := 1.0
			if w != nil {
				wi = w[i]
			}
			if wi == 0 {
				continue
			}
			row := c.RawRowView(i)
			m := mean.RawRowView(i)
			mean.SetRow(i, []float64{m[0] + wi*row[0], m[1] + wi*row[1], m[2] + wi*row[2]})
			wsum[i] += wi
		}
	}
	for i := 0; i < n; i++ {
		if wsum[i] == 0 {
			mean.SetRow(i, E.ref.RawRowView(i))
			continue
		}
		m := mean.RawRowView(i)
		mean.SetRow(i, []float64{m[0] / wsum[i], m[1] / wsum[i], m[2] / wsum[i]})
	}
	return mean
}

// Subset returns a new ensemble containing the conformations indexed
// by confs, in that order. This is a slice operation: the reference
// frame, selection view and per-conformation fields are shared with
// the source, not rebuilt.
func (E *Ensemble) Subset(confs []int) (*Ensemble, error) {
	ret := NewEnsemble(E.title, E.weighted)
	ret.top = E.top
	ret.ref = E.ref
	ret.indices = E.indices
	ret.data = E.data
	for _, i := range confs {
		if i < 0 || i >= len(E.confs) {
			return nil, errorf(true, "Subset", "conformation index %d out of range (%d conformations)", i, len(E.confs))
		}
		ret.confs = append(ret.confs, E.confs[i])
		ret.weights = append(ret.weights, E.weights[i])
		ret.labels = append(ret.labels, E.labels[i])
		ret.trans = append(ret.trans, E.trans[i])
		ret.seqs = append(ret.seqs, E.seqs[i])
	}
	return ret, nil
}

// SetData attaches an auxiliary metadata entry to the ensemble.
// Derived ensembles (trim, refine) share the metadata map by
// reference.
func (E *Ensemble) SetData(key string, value interface{}) {
	E.data[key] = value
}

// Data retrieves an auxiliary metadata entry.
func (E *Ensemble) Data(key string) (interface{}, bool) {
	v, ok := E.data[key]
	return v, ok
}
