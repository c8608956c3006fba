/*
 * serialize.go, part of goensemble.
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
	"encoding/json"
	"os"
	"strings"

	v3 "github.com/goensemble/ensemble/v3"
	"github.com/klauspost/compress/zstd"
)

// ensExt is the extension of the ensemble archive: a zstd stream over
// one JSON document of named records.
const ensExt = ".ens.zst"

type transRecord struct {
	Rot   []float64 `json:"rot"`   // 3x3, row major
	Trans []float64 `json:"trans"` // 1x3
}

type ensembleRecord struct {
	Title     string         `json:"title"`
	NAtoms    int            `json:"natoms"`
	RefCoords []float64      `json:"coords"`
	Confs     [][]float64    `json:"confs"`
	Weights   [][]float64    `json:"weights,omitempty"`
	Labels    []string       `json:"labels,omitempty"`
	Atoms     []*Atom        `json:"atoms,omitempty"`
	Indices   []int          `json:"indices,omitempty"`
	Trans     []*transRecord `json:"trans,omitempty"`
	Seqs      []string       `json:"seqs,omitempty"`
}

// Save writes the ensemble to filename and returns the path actually
// written. An empty filename uses the title, with whitespace replaced
// by underscores; the .ens.zst extension is appended when missing.
// The archive round-trips the title, reference coordinates and atoms,
// every conformation's coordinates, weights and label, the selection
// view, stored transformations, and sequences.
func Save(ens *Ensemble, filename string) (string, error) {
	if ens.NumConfs() == 0 {
		return "", errorf(true, "Save", "ensemble %q contains no data", ens.Title())
	}
	if filename == "" {
		filename = strings.Join(strings.Fields(ens.Title()), "_")
	}
	if !strings.HasSuffix(filename, ensExt) {
		filename += ensExt
	}
	rec := &ensembleRecord{
		Title:   ens.title,
		NAtoms:  ens.FullAtoms(),
		Labels:  ens.labels,
		Indices: ens.indices,
		Seqs:    ens.seqs,
	}
	if ens.top != nil {
		rec.Atoms = make([]*Atom, ens.top.Len())
		for i := range rec.Atoms {
			rec.Atoms[i] = ens.top.Atom(i)
		}
	}
	rec.RefCoords = flatten(ens.ref)
	for i, c := range ens.confs {
		rec.Confs = append(rec.Confs, flatten(c))
		if ens.weighted {
			rec.Weights = append(rec.Weights, ens.weights[i])
		}
	}
	if anyTrans(ens.trans) {
		rec.Trans = make([]*transRecord, len(ens.trans))
		for i, t := range ens.trans {
			if t == nil {
				continue
			}
			rot := t.Rotation()
			rec.Trans[i] = &transRecord{
				Rot:   append([]float64{}, rot.RawMatrix().Data...),
				Trans: append([]float64{}, t.Translation().RawRowView(0)...),
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", errDecorate(err, "Save")
	}
	defer f.Close()
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", errDecorate(err, "Save")
	}
	if err := json.NewEncoder(zw).Encode(rec); err != nil {
		zw.Close()
		return "", errDecorate(err, "Save")
	}
	if err := zw.Close(); err != nil {
		return "", errDecorate(err, "Save")
	}
	return filename, nil
}

// Load reads an ensemble archive written by Save. Whether the loaded
// ensemble carries presence weights is decided by the archive itself:
// a per-conformation weight record makes it weighted.
func Load(filename string) (*Ensemble, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	defer zr.Close()
	rec := new(ensembleRecord)
	if err := json.NewDecoder(zr).Decode(rec); err != nil {
		return nil, errDecorate(err, "Load")
	}
	nconfs := len(rec.Confs)
	if (rec.Weights != nil && len(rec.Weights) != nconfs) ||
		(rec.Labels != nil && len(rec.Labels) != nconfs) ||
		(rec.Seqs != nil && len(rec.Seqs) != nconfs) ||
		(rec.Trans != nil && len(rec.Trans) != nconfs) {
		return nil, errorf(true, "Load", "malformed archive %s: per-conformation records do not match %d conformations", filename, nconfs)
	}

	ens := NewEnsemble(asText(rec.Title), rec.Weights != nil)
	if rec.Atoms != nil {
		if err := ens.SetAtoms(NewTopology(rec.Atoms)); err != nil {
			return nil, errDecorate(err, "Load")
		}
	}
	ref, err := unflatten(rec.RefCoords, rec.NAtoms)
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	if err := ens.SetCoords(ref); err != nil {
		return nil, errDecorate(err, "Load")
	}
	for i, cf := range rec.Confs {
		coords, err := unflatten(cf, rec.NAtoms)
		if err != nil {
			return nil, errDecorate(err, "Load")
		}
		var w []float64
		if rec.Weights != nil {
			w = rec.Weights[i]
		}
		var label, seq string
		if rec.Labels != nil {
			label = asText(rec.Labels[i])
		}
		if rec.Seqs != nil {
			seq = rec.Seqs[i]
		}
		if err := ens.AddConformation(coords, w, label, seq); err != nil {
			return nil, errDecorate(err, "Load")
		}
	}
	ens.indices = rec.Indices
	for i, tr := range rec.Trans {
		if tr == nil {
			continue
		}
		if len(tr.Rot) != 9 || len(tr.Trans) != 3 {
			return nil, errorf(true, "Load", "malformed transformation record %d", i)
		}
		trans, err := v3.NewMatrix(tr.Trans)
		if err != nil {
			return nil, errDecorate(err, "Load")
		}
		t, err := NewTransformation(newDense3(tr.Rot), trans)
		if err != nil {
			return nil, errDecorate(err, "Load")
		}
		ens.trans[i] = t
	}
	return ens, nil
}

// asText normalizes a string field that may come from a byte-typed
// record: trailing NULs and surrounding whitespace go.
func asText(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func flatten(m *v3.Matrix) []float64 {
	if m == nil {
		return nil
	}
	n := m.NVecs()
	ret := make([]float64, 0, n*3)
	for i := 0; i < n; i++ {
		ret = append(ret, m.RawRowView(i)...)
	}
	return ret
}

func unflatten(data []float64, n int) (*v3.Matrix, error) {
	if len(data) != n*3 {
		return nil, errorf(true, "unflatten", "%d values for %d atoms", len(data), n)
	}
	return v3.NewMatrix(append([]float64{}, data...))
}

func anyTrans(trans []*Transformation) bool {
	for _, t := range trans {
		if t != nil {
			return true
		}
	}
	return false
}
