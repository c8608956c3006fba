/*
 * mapper.go, part of goensemble.
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
	"sort"

	v3 "github.com/goensemble/ensemble/v3"
)

// AtomMap is a partial correspondence from a subset of a source
// structure's atoms to a subset of the reference frame's atoms. One
// source structure may yield several independent AtomMaps, one per
// matched chain group.
type AtomMap struct {
	src    *Structure
	srcidx []int // source atom index per reference position, -1 where unmatched
	chains []string
}

// NewAtomMap builds an AtomMap. srcidx must have one entry per
// reference atom, -1 marking unmatched positions; chains names the
// source chain identifiers the map covers.
func NewAtomMap(src *Structure, srcidx []int, chains []string) (*AtomMap, error) {
	if src == nil {
		return nil, errorf(true, "NewAtomMap", "an atom map needs a source structure")
	}
	for _, v := range srcidx {
		if v >= src.Len() {
			return nil, errorf(true, "NewAtomMap", "source index %d out of range (%d atoms)", v, src.Len())
		}
	}
	return &AtomMap{src: src, srcidx: srcidx, chains: chains}, nil
}

// Source returns the source structure of the map.
func (M *AtomMap) Source() *Structure { return M.src }

// Chains returns the source chain identifiers covered by the map.
func (M *AtomMap) Chains() []string {
	return append([]string{}, M.chains...)
}

// Mapped returns, per reference position, whether the map matched it.
func (M *AtomMap) Mapped() []bool {
	ret := make([]bool, len(M.srcidx))
	for k, v := range M.srcidx {
		ret[k] = v >= 0
	}
	return ret
}

// Weights returns a binary presence-weight vector over the reference
// positions: 1 where matched, 0 where not.
func (M *AtomMap) Weights() []float64 {
	ret := make([]float64, len(M.srcidx))
	for k, v := range M.srcidx {
		if v >= 0 {
			ret[k] = 1
		}
	}
	return ret
}

// Coverage returns the ordered reference positions the map covers.
func (M *AtomMap) Coverage() []int {
	ret := make([]int, 0, len(M.srcidx))
	for k, v := range M.srcidx {
		if v >= 0 {
			ret = append(ret, k)
		}
	}
	return ret
}

// CoordsOn returns the coordinates of source state i arranged on the
// reference frame: one row per reference atom, zero rows where the map
// has no correspondence.
func (M *AtomMap) CoordsOn(state int) (*v3.Matrix, error) {
	src, err := M.src.Coords(state)
	if err != nil {
		return nil, errDecorate(err, "CoordsOn")
	}
	ret := v3.Zeros(len(M.srcidx))
	for k, v := range M.srcidx {
		if v >= 0 {
			ret.SetRow(k, src.RawRowView(v))
		}
	}
	return ret, nil
}

// AtomMapper finds correspondences between a source structure and a
// reference structure. An empty result is a valid "no correspondence
// found" outcome, not an error; errors are reserved for the mapper's
// own failures.
type AtomMapper interface {
	MapAtoms(src, ref *Structure) ([]*AtomMap, error)
}

// SeqIDMapper is the built-in AtomMapper. It matches atoms by chain
// identifier, residue number and atom name, which is enough whenever
// source and reference follow one numbering scheme (models of one
// entry, point mutants, subsets). Anything needing an actual
// chain-correspondence search belongs in an external mapper.
type SeqIDMapper struct{}

type atomKey struct {
	chain string
	molid int
	name  string
}

// MapAtoms returns at most one AtomMap, covering every source chain
// with at least one identity match against the reference, or no maps
// when nothing matches.
func (sm SeqIDMapper) MapAtoms(src, ref *Structure) ([]*AtomMap, error) {
	lookup := make(map[atomKey]int, src.Len())
	for i := 0; i < src.Len(); i++ {
		a := src.Atom(i)
		lookup[atomKey{a.Chain, a.MolID, a.Name}] = i
	}
	srcidx := make([]int, ref.Len())
	chainset := make(map[string]bool)
	matched := 0
	for i := 0; i < ref.Len(); i++ {
		a := ref.Atom(i)
		j, ok := lookup[atomKey{a.Chain, a.MolID, a.Name}]
		if !ok {
			srcidx[i] = -1
			continue
		}
		srcidx[i] = j
		chainset[a.Chain] = true
		matched++
	}
	if matched == 0 {
		return nil, nil
	}
	chains := make([]string, 0, len(chainset))
	for c := range chainset {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	m, err := NewAtomMap(src, srcidx, chains)
	if err != nil {
		return nil, errDecorate(err, "MapAtoms")
	}
	return []*AtomMap{m}, nil
}
