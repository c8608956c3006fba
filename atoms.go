/*
 * atoms.go, part of goensemble.
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

import "strings"

// Atom contains the identity of one atom, except for the coordinates,
// which live in a v3.Matrix, one row per atom.
type Atom struct {
	Name      string
	ID        int
	MolName   string
	MolID     int
	Chain     string
	Occupancy float64
	Bfactor   float64
	Symbol    string
	Het       bool
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("attempted to copy a nil atom")
	}
	newat := *A
	return &newat
}

// Atomer is the basic interface for an ordered set of atoms.
type Atomer interface {
	// Atom returns the Atom with index i. It panics if i is out of
	// range.
	Atom(i int) *Atom

	Len() int
}

// Topology is an ordered set of atoms which is not expected to change
// in time (i.e. everything except for coordinates).
type Topology struct {
	atoms []*Atom
}

// NewTopology makes a topology from the given atoms.
func NewTopology(ats []*Atom) *Topology {
	return &Topology{atoms: ats}
}

// Atom returns the Atom corresponding to the index i. Panics if out of
// range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("index out of range while accessing an atom")
	}
	return T.atoms[i]
}

// AddAtom appends at to the topology.
func (T *Topology) AddAtom(at *Atom) {
	T.atoms = append(T.atoms, at)
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.atoms)
}

// SomeAtoms returns a new topology with copies of the atoms indexed by
// atomlist, in that order.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ats := make([]*Atom, 0, len(atomlist))
	for _, v := range atomlist {
		if v >= T.Len() {
			return nil, errorf(true, "SomeAtoms", "atom index %d out of range (%d atoms)", v, T.Len())
		}
		ats = append(ats, T.atoms[v].Copy())
	}
	return NewTopology(ats), nil
}

// CopyAtoms returns a deep copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	ats := make([]*Atom, 0, T.Len())
	for _, v := range T.atoms {
		ats = append(ats, v.Copy())
	}
	return NewTopology(ats)
}

// Named atom-subset filters. "calpha" keeps one representative atom
// per protein residue.
var subsetNames = map[string][]string{
	"calpha":   {"CA"},
	"backbone": {"N", "CA", "C", "O"},
	"all":      nil,
}

// SubsetIndexes returns the indexes in mol of the atoms selected by
// the named subset filter. For "all" it returns every index.
func SubsetIndexes(mol Atomer, subset string) ([]int, error) {
	names, ok := subsetNames[strings.ToLower(subset)]
	if !ok {
		return nil, errorf(true, "SubsetIndexes", "unknown atom subset %q", subset)
	}
	ret := make([]int, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		if names == nil || isInString(names, mol.Atom(i).Name) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

// isInInt returns true if test is in container, false otherwise.
func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

// Same as the previous, but with strings.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
