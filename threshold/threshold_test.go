/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package threshold

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	bw  map[string]float64
	err error
}

func (r staticSource) Bandwidths() (map[string]float64, error) {
	return r.bw, r.err
}

const defaultThreshold = DefaultBandwidth * 1e6 * Oversubscription

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		src      staticSource
		expected float64
	}{
		{"minimum", staticSource{bw: map[string]float64{"A-B": 6, "C-D": 12}}, 6 * 1e6 * 1.33},
		{"empty", staticSource{bw: map[string]float64{}}, defaultThreshold},
		{"nil", staticSource{}, defaultThreshold},
		{"error", staticSource{err: errors.New("unavailable")}, defaultThreshold},
		{"invalid values", staticSource{bw: map[string]float64{"A-B": 0, "B-C": -4, "C-D": math.NaN(), "D-E": math.Inf(1), "E-F": 10}}, 10 * 1e6 * 1.33},
		{"only invalid values", staticSource{bw: map[string]float64{"A-B": 0}}, defaultThreshold},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, Compute(test.src), 1e-6)
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link_bandwidths.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"s1-s2": 6, "s2-s3": 12}`), 0o644))

	bw, err := FileSource{Path: path}.Bandwidths()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"s1-s2": 6, "s2-s3": 12}, bw)
	assert.InDelta(t, 6*1e6*1.33, Compute(FileSource{Path: path}), 1e-6)
}

func TestFileSourceMissing(t *testing.T) {
	src := FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}

	_, err := src.Bandwidths()
	require.Error(t, err)
	assert.InDelta(t, defaultThreshold, Compute(src), 1e-6)
}

func TestFileSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link_bandwidths.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"s1-s2": `), 0o644))

	src := FileSource{Path: path}
	_, err := src.Bandwidths()
	require.Error(t, err)
	assert.InDelta(t, defaultThreshold, Compute(src), 1e-6)
}
