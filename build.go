/*
 * build.go, part of goensemble.
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
	"fmt"
	"sort"
	"strings"
	"time"

	v3 "github.com/goensemble/ensemble/v3"
)

const buildProgressKey = "goensemble_build"

// BuildOptions configures the ensemble builder.
type BuildOptions struct {
	// Labels for the conformations, one per input structure. Nil
	// means each structure's own title.
	Labels []string
	// Subset is the named atom filter applied to the reference and
	// every input ("calpha", "backbone" or "all").
	Subset string
	// Degeneracy selects only the currently active coordinate state
	// of each input. When false every state is ingested, with _m<n>
	// appended to the labels of multi-state inputs.
	Degeneracy bool
	// Occupancy, when > 0, hard-trims atom columns below this
	// normalized occupancy after all inputs are ingested.
	Occupancy float64
	// Superpose is "iter" for iterative mean-reference superposition
	// or "ref" for a single superposition onto the fixed reference.
	Superpose string
	// The reference: RefStructure if set, else input RefIndex. When
	// Extend is set it overrides both and the inputs are appended to
	// that existing ensemble.
	RefIndex     int
	RefStructure *Structure
	Extend       *Ensemble
	// Title of the built ensemble.
	Title string
}

// DefaultBuildOptions returns the builder defaults: one representative
// atom per residue, only active states, iterative superposition.
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		Subset:     "calpha",
		Degeneracy: true,
		Superpose:  "iter",
		Title:      "Unknown",
	}
}

// Build turns a batch of heterogeneous structures into one consistent
// weighted ensemble. Every input is filtered by the subset, mapped
// onto the filtered reference through mapper, and each resulting
// AtomMap is appended as one conformation whose presence weights mark
// the actually matched reference positions. Nil inputs and inputs with
// no correspondence are not errors: their labels are appended to
// unmapped (if non-nil) and the batch continues. After ingestion the
// ensemble is optionally occupancy-trimmed and then superposed
// according to the options.
//
// At least two inputs are required. obs may be nil.
func Build(structures []*Structure, mapper AtomMapper, obs Observer, unmapped *[]string, o *BuildOptions) (*Ensemble, error) {
	if o == nil {
		o = DefaultBuildOptions()
	}
	obs = orSilent(obs)
	if len(structures) < 2 {
		return nil, errorf(true, "Build", "at least two input structures are needed, got %d", len(structures))
	}
	labels := o.Labels
	if labels != nil {
		if len(labels) != len(structures) {
			return nil, errorf(true, "Build", "%d labels for %d structures", len(labels), len(structures))
		}
	} else {
		labels = make([]string, len(structures))
		for i, s := range structures {
			if s != nil {
				labels[i] = s.Title()
			}
		}
	}

	ens, target, err := buildTarget(structures, o)
	if err != nil {
		return nil, errDecorate(err, "Build")
	}

	start := time.Now()
	skipped := 0
	for i, s := range structures {
		if s == nil {
			if unmapped != nil {
				*unmapped = append(*unmapped, labels[i])
			}
			skipped++
			continue
		}
		obs.Progress(i+1, len(structures), fmt.Sprintf("Mapping %s to the reference...", s.Title()), buildProgressKey)
		sel, err := s.Select(o.Subset)
		if err != nil {
			return nil, errDecorate(err, "Build")
		}
		maps, err := mapper.MapAtoms(sel, target)
		if err != nil {
			obs.Warn(fmt.Sprintf("mapping %s failed: %v", labels[i], err))
			maps = nil
		}
		if len(maps) == 0 {
			if unmapped != nil {
				*unmapped = append(*unmapped, labels[i])
			}
			skipped++
			continue
		}
		for _, m := range maps {
			lbl := labels[i]
			if len(maps) > 1 {
				lbl += "_" + strings.Join(dedupSorted(m.Chains()), "")
			}
			if err := addMap(ens, m, lbl, o.Degeneracy); err != nil {
				return nil, errDecorate(err, "Build")
			}
		}
	}

	if o.Occupancy > 0 {
		ens, err = Trim(ens, o.Occupancy, true)
		if err != nil {
			return nil, errDecorate(err, "Build")
		}
	}
	if o.Superpose == "iter" {
		if _, err := ens.Iterpose(); err != nil {
			return nil, errDecorate(err, "Build")
		}
	} else {
		if err := ens.Superpose(); err != nil {
			return nil, errDecorate(err, "Build")
		}
	}
	obs.Info(fmt.Sprintf("Ensemble (%d conformations) built in %.2fs.", ens.NumConfs(), time.Since(start).Seconds()))
	if skipped > 0 {
		obs.Warn(fmt.Sprintf("%d structures could not be mapped.", skipped))
	}
	return ens, nil
}

// buildTarget resolves the reference designator into the ensemble to
// fill and the subset-filtered reference structure to map against.
func buildTarget(structures []*Structure, o *BuildOptions) (*Ensemble, *Structure, error) {
	if o.Extend != nil {
		ens := o.Extend
		if ens.top == nil || ens.ref == nil {
			return nil, nil, errorf(true, "buildTarget", "the ensemble to extend has no reference frame")
		}
		// The atoms of an existing ensemble were already subset-
		// filtered when it was built, so no filter is applied here.
		target, err := NewStructure(ens.top, []*v3.Matrix{ens.ref}, ens.Title())
		if err != nil {
			return nil, nil, errDecorate(err, "buildTarget")
		}
		return ens, target, nil
	}
	var ref *Structure
	if o.RefStructure != nil {
		ref = o.RefStructure
	} else {
		if o.RefIndex < 0 || o.RefIndex >= len(structures) || structures[o.RefIndex] == nil {
			return nil, nil, errorf(true, "buildTarget", "reference index %d does not designate an available structure", o.RefIndex)
		}
		ref = structures[o.RefIndex]
	}
	target, err := ref.Select(o.Subset)
	if err != nil {
		return nil, nil, errDecorate(err, "buildTarget")
	}
	ens := NewEnsemble(o.Title, true)
	if err := ens.SetAtoms(target.Topology()); err != nil {
		return nil, nil, errDecorate(err, "buildTarget")
	}
	if err := ens.SetCoords(target.CurrentCoords()); err != nil {
		return nil, nil, errDecorate(err, "buildTarget")
	}
	return ens, target, nil
}

// addMap appends the conformations an AtomMap contributes: the current
// source state only under degeneracy, otherwise every state.
func addMap(ens *Ensemble, m *AtomMap, label string, degeneracy bool) error {
	src := m.Source()
	states := []int{src.Current()}
	if !degeneracy && src.States() > 1 {
		states = make([]int, src.States())
		for i := range states {
			states[i] = i
		}
	}
	weights := m.Weights()
	for _, st := range states {
		coords, err := m.CoordsOn(st)
		if err != nil {
			return errDecorate(err, "addMap")
		}
		lbl := label
		if len(states) > 1 {
			lbl = fmt.Sprintf("%s_m%d", label, st+1)
		}
		w := append([]float64{}, weights...)
		if err := ens.AddConformation(coords, w, lbl, ""); err != nil {
			return errDecorate(err, "addMap")
		}
	}
	return nil
}

// dedupSorted sorts strs and removes duplicates.
func dedupSorted(strs []string) []string {
	sort.Strings(strs)
	ret := strs[:0]
	for i, s := range strs {
		if i == 0 || s != strs[i-1] {
			ret = append(ret, s)
		}
	}
	return ret
}
