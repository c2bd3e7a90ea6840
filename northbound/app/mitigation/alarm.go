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

package mitigation

import (
	"sort"
)

type portKey struct {
	dpid uint64
	port uint32
}

type AlarmState struct {
	Alarmed bool
	// Consecutive under-threshold observations since the alarm was raised.
	Counter uint
}

// portTable keeps the last received-byte counter and the alarm state of each port.
// XXX: Caller should hold the Mitigation mutex.
type portTable struct {
	samples map[portKey]uint64
	alarms  map[portKey]*AlarmState
}

func newPortTable() *portTable {
	return &portTable{
		samples: make(map[portKey]uint64),
		alarms:  make(map[portKey]*AlarmState),
	}
}

// alarm returns the alarm state of key, creating a cleared one if it does not exist.
func (r *portTable) alarm(key portKey) *AlarmState {
	v, ok := r.alarms[key]
	if !ok {
		v = &AlarmState{}
		r.alarms[key] = v
	}

	return v
}

// throughput supersedes the last sample of key with rxBytes and returns the
// received bytes per interval. A counter that went backwards yields 0; a port
// without a previous sample yields rxBytes / interval.
func (r *portTable) throughput(key portKey, rxBytes uint64, interval float64) float64 {
	prev, ok := r.samples[key]
	r.samples[key] = rxBytes

	if !ok {
		return float64(rxBytes) / interval
	}
	if rxBytes < prev {
		return 0
	}

	return float64(rxBytes-prev) / interval
}

type Alarm struct {
	DPID    uint64 `json:"dpid"`
	Port    uint32 `json:"port"`
	Alarmed bool   `json:"alarmed"`
	Counter uint   `json:"counter"`
	Blocked bool   `json:"blocked"`
}

func (r *portTable) list() []Alarm {
	v := make([]Alarm, 0, len(r.alarms))
	for key, state := range r.alarms {
		v = append(v, Alarm{
			DPID:    key.dpid,
			Port:    key.port,
			Alarmed: state.Alarmed,
			Counter: state.Counter,
		})
	}
	sort.Slice(v, func(i, j int) bool {
		if v[i].DPID != v[j].DPID {
			return v[i].DPID < v[j].DPID
		}
		return v[i].Port < v[j].Port
	})

	return v
}
