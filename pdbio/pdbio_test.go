/*
 * pdbio_test.go, part of goensemble.
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

package pdbio

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const smallPDB = `ATOM      1  N   ALA A   1      11.104   6.134  -6.504  1.00  0.00           N
ATOM      2  CA  ALA A   1      11.639   6.071  -5.147  1.00  0.00           C
ATOM      3  C   ALA A   1      10.685   6.719  -4.156  1.00  0.00           C
HETATM    4  O   HOH A   2       8.231   4.558  -7.913  0.50 12.30           O
END
`

const multiPDB = `MODEL        1
ATOM      1  CA  ALA A   1       0.000   0.000   0.000  1.00  0.00           C
ATOM      2  CA  GLY A   2       3.800   0.000   0.000  1.00  0.00           C
ENDMDL
MODEL        2
ATOM      1  CA  ALA A   1       1.000   0.000   0.000  1.00  0.00           C
ATOM      2  CA  GLY A   2       4.800   0.000   0.000  1.00  0.00           C
ENDMDL
END
`

func TestRead(t *testing.T) {
	s, err := Read(strings.NewReader(smallPDB), "small")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("got %d atoms, want 4", s.Len())
	}
	if s.States() != 1 {
		t.Fatalf("got %d states, want 1", s.States())
	}
	at := s.Atom(1)
	if at.Name != "CA" || at.MolName != "ALA" || at.Chain != "A" || at.MolID != 1 {
		t.Errorf("bad atom 1: %+v", at)
	}
	if math.Abs(at.Occupancy-1.0) > 1e-6 {
		t.Errorf("got occupancy %f, want 1.0", at.Occupancy)
	}
	het := s.Atom(3)
	if !het.Het || het.MolName != "HOH" {
		t.Errorf("bad HETATM record: %+v", het)
	}
	if math.Abs(het.Bfactor-12.30) > 1e-6 {
		t.Errorf("got bfactor %f, want 12.30", het.Bfactor)
	}
	c := s.CurrentCoords()
	if math.Abs(c.At(0, 0)-11.104) > 1e-6 || math.Abs(c.At(0, 2)+6.504) > 1e-6 {
		t.Errorf("bad coordinates for atom 0: %v", c.RawRowView(0))
	}
}

func TestReadMultiModel(t *testing.T) {
	s, err := Read(strings.NewReader(multiPDB), "multi")
	if err != nil {
		t.Fatal(err)
	}
	if s.States() != 2 {
		t.Fatalf("got %d states, want 2", s.States())
	}
	if s.Len() != 2 {
		t.Fatalf("got %d atoms, want 2", s.Len())
	}
	c1, err := s.Coords(1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c1.At(0, 0)-1.0) > 1e-6 {
		t.Errorf("second model not read: %v", c1.RawRowView(0))
	}
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := Read(strings.NewReader(multiPDB), "multi")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	text := buf.String()
	if !strings.Contains(text, "MODEL") || !strings.Contains(text, "ENDMDL") {
		t.Fatalf("multi-state output lacks MODEL records:\n%s", text)
	}
	s2, err := Read(strings.NewReader(text), "multi2")
	if err != nil {
		t.Fatal(err)
	}
	if s2.States() != s.States() || s2.Len() != s.Len() {
		t.Fatalf("round trip changed shape: %d/%d states, %d/%d atoms",
			s2.States(), s.States(), s2.Len(), s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		a, b := s.CurrentCoords().RawRowView(i), s2.CurrentCoords().RawRowView(i)
		for j := 0; j < 3; j++ {
			if math.Abs(a[j]-b[j]) > 1e-3 {
				t.Errorf("atom %d coordinate %d: %f vs %f", i, j, a[j], b[j])
			}
		}
	}
}

func TestFileGzip(t *testing.T) {
	dir := t.TempDir()
	s, err := Read(strings.NewReader(smallPDB), "small")
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(dir, "small.pdb.gz")
	if err := WriteFile(name, s); err != nil {
		t.Fatal(err)
	}
	s2, err := ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Len() != s.Len() {
		t.Fatalf("got %d atoms after gzip round trip, want %d", s2.Len(), s.Len())
	}
	if s2.Title() != "small" {
		t.Errorf("got title %q, want small", s2.Title())
	}
}

func TestDirFetch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1abc.pdb"), []byte(smallPDB), 0644); err != nil {
		t.Fatal(err)
	}
	d := Dir{Path: dir}
	s, err := d.Fetch("1abc")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("got %d atoms, want 4", s.Len())
	}
	if _, err := d.Fetch("nope"); err == nil {
		t.Error("expected an error for a missing id")
	}
}
