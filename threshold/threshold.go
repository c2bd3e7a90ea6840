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

// Package threshold derives the port throughput threshold from the provisioned
// link bandwidths.
package threshold

import (
	"encoding/json"
	"math"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("threshold")
)

const (
	DefaultPath = "/tmp/link_bandwidths.json"
	// Used when no valid link bandwidth is available (Mbps).
	DefaultBandwidth = 3.0
	// Oversubscription factor applied to the slowest link.
	Oversubscription = 1.33
)

// Source provides the provisioned bandwidth of each link in Mbps, keyed by link name.
type Source interface {
	Bandwidths() (map[string]float64, error)
}

// FileSource reads a JSON object of link name to Mbps.
type FileSource struct {
	Path string
}

func (r FileSource) Bandwidths() (map[string]float64, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the bandwidth file")
	}

	v := make(map[string]float64)
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "failed to parse the bandwidth file")
	}

	return v, nil
}

// Compute returns the threshold in bytes per sampling interval: the minimum
// positive link bandwidth (DefaultBandwidth if there is none) times 1e6 times
// Oversubscription. Source failures are logged and never fatal.
func Compute(src Source) float64 {
	bw, err := src.Bandwidths()
	if err != nil {
		logger.Warningf("using the default bandwidth (%v Mbps): %v", DefaultBandwidth, err)
		bw = nil
	}

	lowest := math.Inf(1)
	for link, v := range bw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			logger.Warningf("ignoring invalid bandwidth of link %v: %v", link, v)
			continue
		}
		if v < lowest {
			lowest = v
		}
	}
	if math.IsInf(lowest, 1) {
		logger.Infof("no link bandwidth is available: using the default bandwidth (%v Mbps)", DefaultBandwidth)
		lowest = DefaultBandwidth
	}

	v := lowest * 1e6 * Oversubscription
	logger.Infof("threshold: %v (minimum link bandwidth: %v Mbps)", v, lowest)

	return v
}
