/*
 * pdbio.go, part of goensemble.
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

// Package pdbio reads and writes multi-model PDB files for the
// ensemble package, transparently handling gzip compression. It is
// the default implementation of the structure-source interfaces the
// ensemble builder and alignment exporter consume; heavier formats
// (mmCIF, fetching from the wwPDB) belong to external collaborators.
package pdbio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goensemble/ensemble"
	v3 "github.com/goensemble/ensemble/v3"
	"github.com/klauspost/compress/gzip"
)

// Read parses a PDB stream into a Structure. Every MODEL becomes one
// coordinate state; the atom records of the first model define the
// topology, later models only contribute coordinates and must match
// it in length.
func Read(pdb io.Reader, title string) (*ensemble.Structure, error) {
	scanner := bufio.NewScanner(pdb)
	var atoms []*ensemble.Atom
	var frames [][]float64
	var cur []float64
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MODEL"):
			// nothing to do, ENDMDL closes the frame
		case strings.HasPrefix(line, "ENDMDL"):
			if err := pushFrame(&frames, cur, atoms); err != nil {
				return nil, err
			}
			cur = nil
			first = false
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			at, xyz, err := readAtomLine(line)
			if err != nil {
				return nil, err
			}
			if first {
				atoms = append(atoms, at)
			}
			cur = append(cur, xyz[0], xyz[1], xyz[2])
		case strings.HasPrefix(line, "END"):
			// ignored; a trailing partial frame is closed below
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{err.Error(), title, []string{"Read"}, true}
	}
	if len(cur) > 0 {
		if err := pushFrame(&frames, cur, atoms); err != nil {
			return nil, err
		}
	}
	if len(atoms) == 0 || len(frames) == 0 {
		return nil, Error{"no atom records found", title, []string{"Read"}, true}
	}
	coords := make([]*v3.Matrix, 0, len(frames))
	for _, f := range frames {
		c, err := v3.NewMatrix(f)
		if err != nil {
			return nil, Error{err.Error(), title, []string{"Read"}, true}
		}
		coords = append(coords, c)
	}
	s, err := ensemble.NewStructure(ensemble.NewTopology(atoms), coords, title)
	if err != nil {
		return nil, Error{err.Error(), title, []string{"Read"}, true}
	}
	return s, nil
}

func pushFrame(frames *[][]float64, cur []float64, atoms []*ensemble.Atom) error {
	if len(cur) == 0 {
		return nil
	}
	if len(cur) != 3*len(atoms) {
		return Error{fmt.Sprintf("model %d has %d coordinates for %d atoms", len(*frames)+1, len(cur)/3, len(atoms)), "", []string{"Read"}, true}
	}
	*frames = append(*frames, cur)
	return nil
}

// readAtomLine parses one fixed-column ATOM/HETATM record.
func readAtomLine(line string) (*ensemble.Atom, [3]float64, error) {
	var xyz [3]float64
	if len(line) < 54 {
		return nil, xyz, Error{fmt.Sprintf("atom record too short: %q", line), "", []string{"readAtomLine"}, true}
	}
	at := new(ensemble.Atom)
	at.Het = strings.HasPrefix(line, "HETATM")
	at.ID = atoi(line[6:11])
	at.Name = strings.TrimSpace(line[12:16])
	at.MolName = strings.TrimSpace(line[17:20])
	at.Chain = strings.TrimSpace(line[21:22])
	at.MolID = atoi(line[22:26])
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, xyz, Error{fmt.Sprintf("bad coordinate in %q", line), "", []string{"readAtomLine"}, true}
		}
		xyz[i] = v
	}
	if len(line) >= 60 {
		at.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	if len(line) >= 66 {
		at.Bfactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	if len(line) >= 78 {
		at.Symbol = strings.TrimSpace(line[76:78])
	}
	return at, xyz, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// ReadFile parses a PDB file, decompressing it first when its name
// ends in .gz. The structure title is the file name without directory
// or extensions.
func ReadFile(name string) (*ensemble.Structure, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"ReadFile"}, true}
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, Error{err.Error(), name, []string{"ReadFile"}, true}
		}
		defer zr.Close()
		r = zr
	}
	title := filepath.Base(name)
	if i := strings.Index(title, "."); i > 0 {
		title = title[:i]
	}
	return Read(r, title)
}

// Write writes every coordinate state of s as a PDB stream, wrapped in
// MODEL/ENDMDL records when there is more than one.
func Write(out io.Writer, s *ensemble.Structure) error {
	w := bufio.NewWriter(out)
	multi := s.States() > 1
	for st := 0; st < s.States(); st++ {
		coords, err := s.Coords(st)
		if err != nil {
			return Error{err.Error(), s.Title(), []string{"Write"}, true}
		}
		if multi {
			fmt.Fprintf(w, "MODEL     %4d\n", st+1)
		}
		for i := 0; i < s.Len(); i++ {
			at := s.Atom(i)
			tag := "ATOM  "
			if at.Het {
				tag = "HETATM"
			}
			name := at.Name
			if len(name) < 4 {
				name = " " + name
			}
			c := coords.RawRowView(i)
			fmt.Fprintf(w, "%6s%5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				tag, at.ID, name, at.MolName, at.Chain, at.MolID, c[0], c[1], c[2], at.Occupancy, at.Bfactor, at.Symbol)
		}
		if multi {
			fmt.Fprintln(w, "ENDMDL")
		}
	}
	fmt.Fprintln(w, "END")
	if err := w.Flush(); err != nil {
		return Error{err.Error(), s.Title(), []string{"Write"}, true}
	}
	return nil
}

// WriteFile writes s to the named file, gzip-compressed when the name
// ends in .gz.
func WriteFile(name string, s *ensemble.Structure) error {
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), name, []string{"WriteFile"}, true}
	}
	defer f.Close()
	if strings.HasSuffix(name, ".gz") {
		zw := gzip.NewWriter(f)
		if err := Write(zw, s); err != nil {
			zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return Error{err.Error(), name, []string{"WriteFile"}, true}
		}
		return nil
	}
	return Write(f, s)
}

// Dir serves structures from a directory of PDB files, named
// <id>.pdb or <id>.pdb.gz. It implements ensemble.Fetcher.
type Dir struct {
	Path string
}

// Fetch parses and returns the structure with the given identifier.
func (D Dir) Fetch(id string) (*ensemble.Structure, error) {
	for _, ext := range []string{".pdb", ".pdb.gz", ".ent", ".ent.gz"} {
		name := filepath.Join(D.Path, id+ext)
		if _, err := os.Stat(name); err == nil {
			return ReadFile(name)
		}
	}
	return nil, Error{fmt.Sprintf("no PDB file for %q under %s", id, D.Path), id, []string{"Fetch"}, true}
}

// FileWriter writes structures to plain or gzipped PDB files. It
// implements ensemble.StructureWriter.
type FileWriter struct{}

// WriteStructure writes s to path.
func (FileWriter) WriteStructure(path string, s *ensemble.Structure) error {
	return WriteFile(path, s)
}

// Error is the pdbio implementation of the goensemble error interface.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("%s (%s)", err.message, err.filename)
}

// Decorate adds the deco string to the decoration slice of strings of
// the error and returns the resulting slice.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the error is related.
func (err Error) FileName() string { return err.filename }

// Critical returns whether the error is critical or can be ignored.
func (err Error) Critical() bool { return err.critical }
