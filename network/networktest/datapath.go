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

// Package networktest provides a datapath that records the commands it receives.
package networktest

import (
	"sync"

	"github.com/flaviopalomba02/SDN-Firewall/network"
)

type Deletion struct {
	Priority uint16
	Match    network.Match
}

// Datapath records every command. Err, if set, is returned by every command
// after it has been recorded.
type Datapath struct {
	DPID uint64
	Err  error

	mutex     sync.Mutex
	rules     []network.Rule
	deletions []Deletion
	packets   []network.PacketOut
	requests  int
}

func New(dpid uint64) *Datapath {
	return &Datapath{DPID: dpid}
}

func (r *Datapath) ID() uint64 {
	return r.DPID
}

func (r *Datapath) InstallRule(rule network.Rule) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rules = append(r.rules, rule)
	return r.Err
}

func (r *Datapath) DeleteRule(priority uint16, match network.Match) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.deletions = append(r.deletions, Deletion{Priority: priority, Match: match})
	return r.Err
}

func (r *Datapath) SendPacket(p network.PacketOut) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.packets = append(r.packets, p)
	return r.Err
}

func (r *Datapath) RequestPortStats() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.requests++
	return r.Err
}

func (r *Datapath) Rules() []network.Rule {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]network.Rule(nil), r.rules...)
}

func (r *Datapath) Deletions() []Deletion {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]Deletion(nil), r.deletions...)
}

func (r *Datapath) Packets() []network.PacketOut {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]network.PacketOut(nil), r.packets...)
}

func (r *Datapath) Requests() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.requests
}

// Reset forgets the recorded commands.
func (r *Datapath) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rules = nil
	r.deletions = nil
	r.packets = nil
	r.requests = 0
}
