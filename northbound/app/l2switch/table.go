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

package l2switch

import (
	"net"
	"sort"
	"sync"
)

type learnResult int

const (
	// The address was not known on this switch.
	learnNew learnResult = iota
	// The address was already known on the same port.
	learnKnown
	// The address is anchored to another port of this switch.
	learnSpoofed
)

// Table is the per-switch forwarding table with its anti-spoofing consistency
// map. The consistency map keeps the first port an address was seen on until
// the address is explicitly forgotten.
type Table struct {
	mutex       sync.Mutex
	forwarding  map[uint64]map[string]uint32
	consistency map[uint64]map[string]uint32
}

func newTable() *Table {
	return &Table{
		forwarding:  make(map[uint64]map[string]uint32),
		consistency: make(map[uint64]map[string]uint32),
	}
}

// XXX: Caller should lock the mutex before they call this function
func getOrCreate(m map[uint64]map[string]uint32, dpid uint64) map[string]uint32 {
	v, ok := m[dpid]
	if !ok {
		v = make(map[string]uint32)
		m[dpid] = v
	}

	return v
}

// learn records that mac was seen on port of the switch dpid. Nothing is
// updated if the result is learnSpoofed, and anchor is the port the address
// belongs to.
func (r *Table) learn(dpid uint64, mac net.HardwareAddr, port uint32) (result learnResult, anchor uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := mac.String()
	consistency := getOrCreate(r.consistency, dpid)
	anchor, ok := consistency[key]
	if ok && anchor != port {
		return learnSpoofed, anchor
	}

	forwarding := getOrCreate(r.forwarding, dpid)
	_, known := forwarding[key]
	forwarding[key] = port
	consistency[key] = port
	if known {
		return learnKnown, port
	}

	return learnNew, port
}

func (r *Table) lookup(dpid uint64, mac net.HardwareAddr) (port uint32, ok bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	port, ok = r.forwarding[dpid][mac.String()]
	return port, ok
}

// forget removes mac from both maps of the switch dpid so that the next frame
// from it is learned again on whatever port it arrives.
func (r *Table) forget(dpid uint64, mac net.HardwareAddr) (ok bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := mac.String()
	if _, ok = r.consistency[dpid][key]; ok {
		delete(r.consistency[dpid], key)
	}
	if _, found := r.forwarding[dpid][key]; found {
		delete(r.forwarding[dpid], key)
		ok = true
	}

	return ok
}

type Entry struct {
	MAC  string `json:"mac"`
	Port uint32 `json:"port"`
}

// entries returns the forwarding entries of the switch dpid sorted by address.
func (r *Table) entries(dpid uint64) []Entry {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := make([]Entry, 0, len(r.forwarding[dpid]))
	for mac, port := range r.forwarding[dpid] {
		v = append(v, Entry{MAC: mac, Port: port})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].MAC < v[j].MAC })

	return v
}

func (r *Table) len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	n := 0
	for _, v := range r.forwarding {
		n += len(v)
	}

	return n
}
