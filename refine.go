/*
 * refine.go, part of goensemble.
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
	"math"
	"sort"
	"time"
)

// RefineOptions configures ensemble refinement. A threshold that is
// NaN or <= 0 means "no constraint on that side", so the zero value
// of the struct refines nothing away.
type RefineOptions struct {
	// Lower is the smallest allowed RMSD between two conformations;
	// pairs closer than this are redundant and one of them goes.
	Lower float64
	// Upper is the largest allowed RMSD between two conformations;
	// pairs farther than this are outliers to each other.
	Upper float64
	// The reference conformation, by index or (if RefLabel is
	// non-empty) by label. It is always kept.
	Ref      int
	RefLabel string
	// Conformations exempt from removal, by index and/or label.
	Protected       []int
	ProtectedLabels []string
}

// DefaultRefineOptions returns the customary thresholds: conformations
// within 0.5 A of another are redundant, beyond 10 A outliers.
func DefaultRefineOptions() *RefineOptions {
	return &RefineOptions{Lower: 0.5, Upper: 10, Ref: 0}
}

// Refine selects the conformations satisfying the pairwise-RMSD
// bounds, by greedily pruning, for each bound independently, the
// conformations involved in the most violations, and intersecting the
// two survivor sets. Protected conformations (the reference always
// among them) are only removed when a violating pair is protected on
// both sides, in which case the non-reference side that comes first in
// the pruning order goes; the pruning order is by ascending violation
// count with ties broken by ascending index, so the whole pass is
// deterministic.
//
// Returns a new index-subset ensemble in ascending original order. The
// source ensemble is left untouched. obs may be nil.
func Refine(ens *Ensemble, obs Observer, o *RefineOptions) (*Ensemble, error) {
	if o == nil {
		o = DefaultRefineOptions()
	}
	obs = orSilent(obs)
	n := ens.NumConfs()
	if n == 0 {
		return nil, errorf(true, "Refine", "ensemble %q contains no conformations", ens.Title())
	}
	refi := o.Ref
	if o.RefLabel != "" {
		var err error
		refi, err = ens.index(o.RefLabel)
		if err != nil {
			return nil, errDecorate(err, "Refine")
		}
	}
	if refi < 0 || refi >= n {
		return nil, errorf(true, "Refine", "reference index %d out of range (%d conformations)", refi, n)
	}
	protected := []int{refi}
	for _, p := range o.Protected {
		if p < 0 || p >= n {
			return nil, errorf(true, "Refine", "protected index %d out of range (%d conformations)", p, n)
		}
		if !isInInt(protected, p) {
			protected = append(protected, p)
		}
	}
	for _, l := range o.ProtectedLabels {
		p, err := ens.index(l)
		if err != nil {
			return nil, errDecorate(err, "Refine")
		}
		if !isInInt(protected, p) {
			protected = append(protected, p)
		}
	}

	start := time.Now()
	rmsds, err := ens.PairwiseRMSDs()
	if err != nil {
		return nil, errDecorate(err, "Refine")
	}

	survivors := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		survivors[i] = true
	}
	if !math.IsNaN(o.Lower) && o.Lower > 0 {
		tooClose := relation(rmsds, func(r float64) bool { return r < o.Lower })
		intersect(survivors, prune(tooClose, refi, protected))
	}
	if !math.IsNaN(o.Upper) && o.Upper > 0 {
		tooFar := relation(rmsds, func(r float64) bool { return r > o.Upper })
		intersect(survivors, prune(tooFar, refi, protected))
	}

	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if survivors[i] {
			kept = append(kept, i)
		}
	}
	ret, err := ens.Subset(kept)
	if err != nil {
		return nil, errDecorate(err, "Refine")
	}
	obs.Info(fmt.Sprintf("Ensemble refined in %.2fs.", time.Since(start).Seconds()))
	obs.Info(fmt.Sprintf("%d conformations removed from the ensemble.", n-len(kept)))
	return ret, nil
}

// relation builds the boolean adjacency matrix of the pairs violating
// the given predicate. The diagonal is never a violation.
func relation(rmsds [][]float64, violates func(float64) bool) [][]bool {
	n := len(rmsds)
	ret := make([][]bool, n)
	for i := range ret {
		ret[i] = make([]bool, n)
		for j := range ret[i] {
			ret[i][j] = i != j && violates(rmsds[i][j])
		}
	}
	return ret
}

// prune runs one greedy pass over a violation relation and returns the
// surviving indexes. Conformations are visited by ascending violation
// degree (ties by index), reference first.
func prune(adj [][]bool, refi int, protected []int) []int {
	n := len(adj)
	deg := make([]int, n)
	for i := range adj {
		for _, v := range adj[i] {
			if v {
				deg[i]++
			}
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return deg[order[a]] < deg[order[b]] })
	for k, v := range order {
		if v == refi {
			copy(order[1:], order[:k])
			order[0] = refi
			break
		}
	}

	isdel := make([]bool, n)
	for a := 0; a < n; a++ {
		i := order[a]
		for b := a + 1; b < n; b++ {
			j := order[b]
			if isdel[i] || isdel[j] {
				continue
			}
			if !adj[i][j] {
				continue
			}
			switch {
			case !isInInt(protected, j):
				isdel[j] = true
			case !isInInt(protected, i):
				isdel[i] = true
			case i != refi:
				// both protected: the earlier-ordered,
				// non-reference side goes
				isdel[i] = true
			default:
				isdel[j] = true
			}
		}
	}
	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !isdel[i] {
			kept = append(kept, i)
		}
	}
	return kept
}

// intersect removes from set every index not present in kept.
func intersect(set map[int]bool, kept []int) {
	in := make(map[int]bool, len(kept))
	for _, k := range kept {
		in[k] = true
	}
	for i := range set {
		if !in[i] {
			set[i] = false
		}
	}
}
