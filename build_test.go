/*
 * build_test.go, part of goensemble.
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
	"testing"

	v3 "github.com/goensemble/ensemble/v3"
)

func caStructure(t *testing.T, title string, coords ...*v3.Matrix) *Structure {
	t.Helper()
	s, err := NewStructure(caTopology(coords[0].NVecs()), coords, title)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuild(t *testing.T) {
	ref := refCoords(t)
	s1 := caStructure(t, "one", ref)
	s2 := caStructure(t, "two", applyKnown(t, ref, rotZ90, []float64{2, -1, 0}))

	var unmapped []string
	ens, err := Build([]*Structure{s1, s2}, SeqIDMapper{}, nil, &unmapped, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ens.NumConfs() != 2 {
		t.Fatalf("got %d conformations, want 2", ens.NumConfs())
	}
	if len(unmapped) != 0 {
		t.Fatalf("unexpected unmapped structures: %v", unmapped)
	}
	if ens.Label(0) != "one" || ens.Label(1) != "two" {
		t.Errorf("got labels %v, want the structure titles", ens.Labels())
	}
	for i := 0; i < ens.NumConfs(); i++ {
		for k, w := range ens.Weights(i) {
			if w != 1 {
				t.Errorf("conformation %d atom %d has weight %f, want 1", i, k, w)
			}
		}
	}
	// both inputs share one shape, so the built ensemble is superposed
	rmsds, err := ens.PairwiseRMSDs()
	if err != nil {
		t.Fatal(err)
	}
	if rmsds[0][1] > 1e-3 {
		t.Errorf("conformations not superposed: RMSD %g", rmsds[0][1])
	}

	if _, err := Build([]*Structure{s1}, SeqIDMapper{}, nil, nil, nil); err == nil {
		t.Error("expected an error for a single input")
	}
}

func TestBuildUnmapped(t *testing.T) {
	ref := refCoords(t)
	s1 := caStructure(t, "one", ref)
	s2 := caStructure(t, "two", shiftedCoords(t, ref, 1))
	// a chain-B structure shares no identity keys with the reference
	foreign := caStructure(t, "foreign", ref)
	for i := 0; i < foreign.Len(); i++ {
		foreign.Atom(i).Chain = "B"
	}

	var unmapped []string
	ens, err := Build([]*Structure{s1, foreign, nil, s2}, SeqIDMapper{}, nil, &unmapped, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ens.NumConfs() != 2 {
		t.Fatalf("got %d conformations, want 2", ens.NumConfs())
	}
	if len(unmapped) != 2 || unmapped[0] != "foreign" {
		t.Errorf("got unmapped %v, want [foreign <nil-label>]", unmapped)
	}
}

func TestBuildPartialAndTrim(t *testing.T) {
	ref := refCoords(t)
	s1 := caStructure(t, "full", ref)
	// a 3-atom structure misses residue 4 of the reference
	short := caStructure(t, "short", mustMatrix(t, []float64{
		0, 0, 0,
		3.8, 0, 0,
		3.8, 3.8, 0,
	}))

	var unmapped []string
	ens, err := Build([]*Structure{s1, short}, SeqIDMapper{}, nil, &unmapped, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := ens.Weights(1)
	if w[3] != 0 {
		t.Errorf("missing atom has weight %f, want 0", w[3])
	}
	if w[0] != 1 || w[1] != 1 || w[2] != 1 {
		t.Errorf("matched atoms have weights %v, want 1", w[:3])
	}

	o := DefaultBuildOptions()
	o.Occupancy = 1.0
	trimmed, err := Build([]*Structure{s1, short}, SeqIDMapper{}, nil, nil, o)
	if err != nil {
		t.Fatal(err)
	}
	if trimmed.FullAtoms() != 3 {
		t.Errorf("occupancy trim kept %d atoms, want 3", trimmed.FullAtoms())
	}
}

func TestBuildMultiState(t *testing.T) {
	ref := refCoords(t)
	s1 := caStructure(t, "one", ref)
	multi := caStructure(t, "nmr1", ref, shiftedCoords(t, ref, 1), shiftedCoords(t, ref, 2))

	o := DefaultBuildOptions()
	o.Degeneracy = false
	ens, err := Build([]*Structure{s1, multi}, SeqIDMapper{}, nil, nil, o)
	if err != nil {
		t.Fatal(err)
	}
	if ens.NumConfs() != 4 {
		t.Fatalf("got %d conformations, want 4", ens.NumConfs())
	}
	want := []string{"one", "nmr1_m1", "nmr1_m2", "nmr1_m3"}
	for i, lbl := range want {
		if ens.Label(i) != lbl {
			t.Errorf("conformation %d is labeled %q, want %q", i, ens.Label(i), lbl)
		}
	}

	// with degeneracy only the active state of the multi-state input counts
	deg, err := Build([]*Structure{s1, multi}, SeqIDMapper{}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if deg.NumConfs() != 2 {
		t.Fatalf("got %d conformations under degeneracy, want 2", deg.NumConfs())
	}
	if deg.Label(1) != "nmr1" {
		t.Errorf("degenerate label is %q, want nmr1", deg.Label(1))
	}
}
