/*
 * structure.go, part of goensemble.
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

// Structure is a topology together with one or more coordinate states
// for it, such as the models of an X-ray or NMR PDB entry. One state
// is "current" at any time; operations that do not name a state act on
// the current one.
type Structure struct {
	top     *Topology
	coords  []*v3.Matrix
	current int
	title   string
}

// NewStructure builds a Structure from a topology and one coordinate
// matrix per state. Every state must have exactly one row per atom.
func NewStructure(top *Topology, coords []*v3.Matrix, title string) (*Structure, error) {
	if top == nil || len(coords) == 0 {
		return nil, errorf(true, "NewStructure", "a structure needs a topology and at least one coordinate state")
	}
	for i, c := range coords {
		if c.NVecs() != top.Len() {
			return nil, errorf(true, "NewStructure", "state %d has %d coordinates for %d atoms", i, c.NVecs(), top.Len())
		}
	}
	return &Structure{top: top, coords: coords, title: title}, nil
}

// Atom returns the Atom corresponding to the index i.
func (S *Structure) Atom(i int) *Atom { return S.top.Atom(i) }

// Len returns the number of atoms.
func (S *Structure) Len() int { return S.top.Len() }

// Topology returns the topology of the structure.
func (S *Structure) Topology() *Topology { return S.top }

// Title returns the title of the structure.
func (S *Structure) Title() string { return S.title }

// SetTitle sets the title of the structure.
func (S *Structure) SetTitle(t string) { S.title = t }

// States returns the number of coordinate states.
func (S *Structure) States() int { return len(S.coords) }

// Current returns the index of the current coordinate state.
func (S *Structure) Current() int { return S.current }

// SetCurrent makes i the current coordinate state.
func (S *Structure) SetCurrent(i int) error {
	if i < 0 || i >= len(S.coords) {
		return errorf(true, "SetCurrent", "state %d out of range (%d states)", i, len(S.coords))
	}
	S.current = i
	return nil
}

// Coords returns the coordinates of state i. The matrix is not a copy;
// changes to it change the structure.
func (S *Structure) Coords(i int) (*v3.Matrix, error) {
	if i < 0 || i >= len(S.coords) {
		return nil, errorf(true, "Coords", "state %d out of range (%d states)", i, len(S.coords))
	}
	return S.coords[i], nil
}

// CurrentCoords returns the coordinates of the current state.
func (S *Structure) CurrentCoords() *v3.Matrix {
	return S.coords[S.current]
}

// Select returns a new Structure restricted to the named atom subset
// (see SubsetIndexes). Coordinates are copied; the current state index
// is preserved.
func (S *Structure) Select(subset string) (*Structure, error) {
	indexes, err := SubsetIndexes(S.top, subset)
	if err != nil {
		return nil, errDecorate(err, "Select")
	}
	return S.SomeAtoms(indexes)
}

// SomeAtoms returns a new Structure with copies of the atoms and
// coordinates indexed by atomlist, in that order, for every state.
func (S *Structure) SomeAtoms(atomlist []int) (*Structure, error) {
	top, err := S.top.SomeAtoms(atomlist)
	if err != nil {
		return nil, errDecorate(err, "SomeAtoms")
	}
	coords := make([]*v3.Matrix, 0, len(S.coords))
	for _, c := range S.coords {
		nc := v3.Zeros(len(atomlist))
		if err := nc.SomeVecsSafe(c, atomlist); err != nil {
			return nil, errDecorate(err, "SomeAtoms")
		}
		coords = append(coords, nc)
	}
	ret, err := NewStructure(top, coords, S.title)
	if err != nil {
		return nil, errDecorate(err, "SomeAtoms")
	}
	ret.current = S.current
	return ret, nil
}
