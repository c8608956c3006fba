/*
 * align.go, part of goensemble.
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
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// sourceIDLen is the fixed width of the source-file identifier prefix
// of a conformation label (a PDB identifier).
const sourceIDLen = 4

// Fetcher retrieves a source structure by identifier, e.g. from a
// local mirror directory. It is the exporter's view of structure
// parsing, which lives outside this package (see pdbio).
type Fetcher interface {
	Fetch(id string) (*Structure, error)
}

// StructureWriter writes a structure, all coordinate states included,
// to a path. A path ending in .gz is expected to be compressed.
type StructureWriter interface {
	WriteStructure(path string, s *Structure) error
}

// AlignOptions configures the alignment exporter.
type AlignOptions struct {
	Suffix string // appended to the source identifier in output names
	OutDir string
	Gzip   bool
}

// DefaultAlignOptions returns the exporter defaults.
func DefaultAlignOptions() *AlignOptions {
	return &AlignOptions{Suffix: "_aligned", OutDir: "."}
}

// Align replays the stored transformations of every conformation of
// ens onto its original source structure, and writes the transformed
// structures out. The first four characters of a conformation label
// identify the source file; digits after the last 'm' past that
// prefix, as in 2k39_ca_m116, name the 1-based coordinate state to
// transform (default: the structure's current state). Each distinct
// source is fetched once; conformations sharing a source accumulate
// their transformed states into the same in-memory structure, which is
// written exactly once at the end, so multi-model sources end up in
// one multi-state file.
//
// The returned slice is aligned to the conformations: entry i is the
// output path conformation i went to, or "" if it was skipped (source
// not found, label too short, state out of range). Those per-item
// failures are warnings on the observer, never fatal; only missing
// transformations and failed writes abort. obs may be nil.
func Align(ens *Ensemble, fetcher Fetcher, w StructureWriter, obs Observer, o *AlignOptions) ([]string, error) {
	if o == nil {
		o = DefaultAlignOptions()
	}
	obs = orSilent(obs)
	gz := ""
	if o.Gzip {
		gz = ".gz"
	}
	output := make([]string, 0, ens.NumConfs())
	accum := make(map[string]*Structure)
	// fetched sources are only flushed once a transformation actually
	// landed on them; a source whose every conformation was skipped
	// must not produce an untransformed output file
	applied := make(map[string]bool)
	for i := 0; i < ens.NumConfs(); i++ {
		trans := ens.Transformation(i)
		if trans == nil {
			return nil, errorf(true, "Align", "conformation %d of %q has no transformation; superpose first", i, ens.Title())
		}
		label := ens.Label(i)
		if len(label) < sourceIDLen {
			obs.Warn(fmt.Sprintf("label %q is too short to name a source file.", label))
			output = append(output, "")
			continue
		}
		id := label[:sourceIDLen]

		s, ok := accum[id]
		if !ok {
			var err error
			s, err = fetcher.Fetch(id)
			if err != nil {
				obs.Warn(fmt.Sprintf("source file for conformation %s not found: %v", label, err))
				output = append(output, "")
				continue
			}
			accum[id] = s
		}
		obs.Info(fmt.Sprintf("Applying the transformation of conformation %s to %s.", label, id))

		state := s.Current()
		if m := parseModel(label); m > 0 {
			state = m - 1
			if state >= s.States() {
				obs.Warn(fmt.Sprintf("state number %d for %s is out of range.", m, id))
				output = append(output, "")
				continue
			}
		}
		coords, err := s.Coords(state)
		if err != nil {
			return output, errDecorate(err, "Align")
		}
		trans.Apply(coords)
		applied[id] = true
		output = append(output, filepath.Join(o.OutDir, id+o.Suffix+".pdb"+gz))
	}

	ids := make([]string, 0, len(applied))
	for id := range applied {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		path := filepath.Join(o.OutDir, id+o.Suffix+".pdb"+gz)
		if err := w.WriteStructure(path, accum[id]); err != nil {
			return output, errDecorate(err, "Align")
		}
	}
	return output, nil
}

// parseModel extracts the 1-based state number from a label, the
// digits after the last 'm' past the source-identifier prefix.
// Returns 0 when the label encodes no state.
func parseModel(label string) int {
	pos := strings.LastIndex(label, "m")
	if pos < sourceIDLen {
		return 0
	}
	n, err := strconv.Atoi(label[pos+1:])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
