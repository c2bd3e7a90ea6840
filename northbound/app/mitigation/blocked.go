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
	"sync"
)

// BlockedPortSet is the set of ports currently subject to a drop rule, per switch.
type BlockedPortSet struct {
	mutex sync.RWMutex
	ports map[uint64]map[uint32]struct{}
}

func NewBlockedPortSet() *BlockedPortSet {
	return &BlockedPortSet{
		ports: make(map[uint64]map[uint32]struct{}),
	}
}

func (r *BlockedPortSet) Add(dpid uint64, port uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v, ok := r.ports[dpid]
	if !ok {
		v = make(map[uint32]struct{})
		r.ports[dpid] = v
	}
	v[port] = struct{}{}
}

func (r *BlockedPortSet) Remove(dpid uint64, port uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v, ok := r.ports[dpid]
	if !ok {
		return
	}
	delete(v, port)
	if len(v) == 0 {
		delete(r.ports, dpid)
	}
}

func (r *BlockedPortSet) Contains(dpid uint64, port uint32) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.ports[dpid][port]
	return ok
}

// Ports returns the blocked ports of the switch dpid in ascending order.
func (r *BlockedPortSet) Ports(dpid uint64) []uint32 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v := make([]uint32, 0, len(r.ports[dpid]))
	for port := range r.ports[dpid] {
		v = append(v, port)
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	return v
}

func (r *BlockedPortSet) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	n := 0
	for _, v := range r.ports {
		n += len(v)
	}

	return n
}
