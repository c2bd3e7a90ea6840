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

package network

import (
	"encoding"
	"fmt"
	"sync"

	"github.com/flaviopalomba02/SDN-Firewall/openflow/of13"
	"github.com/flaviopalomba02/SDN-Firewall/openflow/transceiver"

	"github.com/pkg/errors"
)

type Features struct {
	DPID       uint64
	NumBuffers uint32
	NumTables  uint8
}

// Device is a connected switch. All commands are written under the device
// mutex, so a switch receives them in the order they were issued.
type Device struct {
	mutex    sync.RWMutex
	writer   transceiver.Writer
	id       uint64
	valid    bool
	features Features
	closed   bool
}

var (
	ErrClosedDevice = errors.New("already closed device")
)

func newDevice(w transceiver.Writer) *Device {
	if w == nil {
		panic("Writer is nil")
	}

	return &Device{
		writer: w,
	}
}

func (r *Device) String() string {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return fmt.Sprintf("Device DPID=%v, Features=%+v, Connected=%v", r.id, r.features, !r.closed)
}

func (r *Device) ID() uint64 {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.id
}

func (r *Device) isValid() bool {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.valid
}

func (r *Device) setFeatures(f Features) {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.id = f.DPID
	r.features = f
	r.valid = true
}

func (r *Device) Features() Features {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.features
}

func (r *Device) IsClosed() bool {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.closed
}

func (r *Device) Close() {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
}

func (r *Device) sendMessage(msg encoding.BinaryMarshaler) error {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if msg == nil {
		panic("Message is nil")
	}
	if r.closed {
		return ErrClosedDevice
	}

	return r.writer.Write(msg)
}

func (r *Device) InstallRule(rule Rule) error {
	match, err := rule.Match.of13()
	if err != nil {
		return errors.Wrap(err, "invalid flow match")
	}

	actions := make(of13.Actions, 0, len(rule.OutPorts))
	for _, port := range rule.OutPorts {
		actions = append(actions, of13.Output{Port: port})
	}

	flow := of13.NewFlowMod(r.writer.NextTransactionID(), of13.OFPFC_ADD)
	flow.SetFlowMatch(match)
	flow.SetFlowInstruction(&of13.ApplyAction{Actions: actions})
	flow.SetPriority(rule.Priority)
	flow.SetIdleTimeout(rule.IdleTimeout)
	flow.SetHardTimeout(rule.HardTimeout)
	flow.SetBufferID(rule.BufferID)

	if err := r.sendMessage(flow); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to install a flow rule on %v", r.ID()))
	}

	return nil
}

func (r *Device) DeleteRule(priority uint16, match Match) error {
	m, err := match.of13()
	if err != nil {
		return errors.Wrap(err, "invalid flow match")
	}

	flow := of13.NewFlowMod(r.writer.NextTransactionID(), of13.OFPFC_DELETE_STRICT)
	flow.SetFlowMatch(m)
	flow.SetPriority(priority)

	if err := r.sendMessage(flow); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to delete a flow rule on %v", r.ID()))
	}

	return nil
}

func (r *Device) SendPacket(p PacketOut) error {
	out := of13.NewPacketOut(r.writer.NextTransactionID())
	if p.InPort != 0 {
		out.SetInPort(p.InPort)
	}
	out.SetBufferID(p.BufferID)
	out.SetActions(of13.Actions{{Port: p.OutPort}})
	out.SetData(p.Data)

	if err := r.sendMessage(out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to send a packet-out to %v", r.ID()))
	}

	return nil
}

func (r *Device) RequestPortStats() error {
	req := of13.NewPortStatsRequest(r.writer.NextTransactionID())
	if err := r.sendMessage(req); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to request port stats from %v", r.ID()))
	}

	return nil
}
