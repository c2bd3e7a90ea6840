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

package monitor

import (
	"sort"
	"sync"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
)

// Registry tracks the switches that are currently connected and usable.
type Registry struct {
	mutex    sync.RWMutex
	switches map[uint64]network.Datapath
	metrics  *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	if m == nil {
		panic("nil metrics")
	}

	return &Registry{
		switches: make(map[uint64]network.Datapath),
		metrics:  m,
	}
}

func (r *Registry) Register(dp network.Datapath) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.switches[dp.ID()] = dp
	r.metrics.RegisteredSwitches.Set(float64(len(r.switches)))
}

// Unregister removes dp if it is still the registered datapath of its DPID.
func (r *Registry) Unregister(dp network.Datapath) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := dp.ID()
	if v, ok := r.switches[id]; ok && v == dp {
		delete(r.switches, id)
	}
	r.metrics.RegisteredSwitches.Set(float64(len(r.switches)))
}

func (r *Registry) Datapath(dpid uint64) (network.Datapath, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v, ok := r.switches[dpid]
	return v, ok
}

// Datapaths returns the registered switches sorted by DPID.
func (r *Registry) Datapaths() []network.Datapath {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v := make([]network.Datapath, 0, len(r.switches))
	for _, dp := range r.switches {
		v = append(v, dp)
	}
	sort.Slice(v, func(i, j int) bool { return v[i].ID() < v[j].ID() })

	return v
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.switches)
}
