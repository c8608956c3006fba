/*
 * refine_test.go, part of goensemble.
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
	"testing"
)

func identicalEnsemble(t *testing.T, n int) *Ensemble {
	t.Helper()
	ens := NewEnsemble("identical", false)
	ens.SetAtoms(caTopology(4))
	ref := refCoords(t)
	ens.SetCoords(ref)
	labels := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff"}
	for i := 0; i < n; i++ {
		ens.AddConformation(ref, nil, labels[i], "")
	}
	return ens
}

func TestRefineLower(t *testing.T) {
	ens := identicalEnsemble(t, 4)
	o := &RefineOptions{Lower: 0.5, Upper: math.NaN(), Ref: 0}
	out, err := Refine(ens, nil, o)
	if err != nil {
		t.Fatal(err)
	}
	// every pair is below the similarity threshold, only the
	// reference survives
	if out.NumConfs() != 1 {
		t.Fatalf("got %d conformations, want 1", out.NumConfs())
	}
	if out.Label(0) != "aaaa" {
		t.Errorf("survivor is %q, want the reference aaaa", out.Label(0))
	}
	// the input is untouched
	if ens.NumConfs() != 4 {
		t.Errorf("refine modified its input: %d conformations", ens.NumConfs())
	}
}

func TestRefineUnconstrained(t *testing.T) {
	ens := identicalEnsemble(t, 4)
	// NaN thresholds and the zero value both mean unconstrained
	for _, o := range []*RefineOptions{
		{Lower: math.NaN(), Upper: math.NaN(), Ref: 0},
		{},
	} {
		out, err := Refine(ens, nil, o)
		if err != nil {
			t.Fatal(err)
		}
		if out.NumConfs() != ens.NumConfs() {
			t.Fatalf("unconstrained refinement removed conformations: %d of %d left",
				out.NumConfs(), ens.NumConfs())
		}
		for i := 0; i < out.NumConfs(); i++ {
			if out.Label(i) != ens.Label(i) {
				t.Errorf("conformation %d relabeled: %q vs %q", i, out.Label(i), ens.Label(i))
			}
		}
	}
}

func TestRefineUpper(t *testing.T) {
	ens := NewEnsemble("outlier", false)
	ens.SetAtoms(caTopology(4))
	ref := refCoords(t)
	ens.SetCoords(ref)
	ens.AddConformation(ref, nil, "aaaa", "")
	ens.AddConformation(shiftedCoords(t, ref, 0.1), nil, "bbbb", "")
	ens.AddConformation(shiftedCoords(t, ref, 50), nil, "far1", "")

	o := &RefineOptions{Lower: math.NaN(), Upper: 10, Ref: 0}
	out, err := Refine(ens, nil, o)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumConfs() != 2 {
		t.Fatalf("got %d conformations, want 2", out.NumConfs())
	}
	for i := 0; i < out.NumConfs(); i++ {
		if out.Label(i) == "far1" {
			t.Error("the outlier survived the upper threshold")
		}
	}
}

func TestRefineProtected(t *testing.T) {
	// bbbb and cccc are near-duplicates of each other but well apart
	// from the reference; only one of the pair can survive
	newEns := func() *Ensemble {
		ens := NewEnsemble("pair", false)
		ens.SetAtoms(caTopology(4))
		ref := refCoords(t)
		ens.SetCoords(ref)
		ens.AddConformation(ref, nil, "aaaa", "")
		ens.AddConformation(shiftedCoords(t, ref, 20), nil, "bbbb", "")
		ens.AddConformation(shiftedCoords(t, ref, 20.1), nil, "cccc", "")
		return ens
	}
	o := &RefineOptions{Lower: 0.5, Upper: math.NaN(), Ref: 0}
	out, err := Refine(newEns(), nil, o)
	if err != nil {
		t.Fatal(err)
	}
	if !isInString(out.Labels(), "bbbb") || isInString(out.Labels(), "cccc") {
		t.Errorf("unprotected pruning kept %v, want [aaaa bbbb]", out.Labels())
	}
	o.ProtectedLabels = []string{"cccc"}
	out, err = Refine(newEns(), nil, o)
	if err != nil {
		t.Fatal(err)
	}
	if !isInString(out.Labels(), "cccc") || isInString(out.Labels(), "bbbb") {
		t.Errorf("protection ignored, survivors: %v", out.Labels())
	}
	if _, err := Refine(newEns(), nil, &RefineOptions{Lower: 0.5, Upper: math.NaN(), RefLabel: "zzzz"}); err == nil {
		t.Error("expected an error for an unknown reference label")
	}
}

func TestRefineDeterministic(t *testing.T) {
	for run := 0; run < 5; run++ {
		ens := identicalEnsemble(t, 6)
		out, err := Refine(ens, nil, &RefineOptions{Lower: 0.5, Upper: math.NaN(), Ref: 2})
		if err != nil {
			t.Fatal(err)
		}
		if out.NumConfs() != 1 || out.Label(0) != "cccc" {
			t.Fatalf("run %d: got %v, want [cccc]", run, out.Labels())
		}
	}
}
