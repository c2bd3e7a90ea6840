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

package of13

import (
	"encoding/binary"

	"github.com/flaviopalomba02/SDN-Firewall/openflow"

	"github.com/pkg/errors"
)

type FlowMod struct {
	openflow.Message
	command     uint8
	cookie      uint64
	cookieMask  uint64
	tableID     uint8
	idleTimeout uint16
	hardTimeout uint16
	priority    uint16
	bufferID    uint32
	flags       uint16
	match       *Match
	instruction *ApplyAction
}

func NewFlowMod(xid uint32, cmd uint8) *FlowMod {
	return &FlowMod{
		Message:  openflow.NewMessage(openflow.OF13_VERSION, OFPT_FLOW_MOD, xid),
		command:  cmd,
		bufferID: OFP_NO_BUFFER,
	}
}

func (r *FlowMod) Command() uint8 {
	return r.command
}

func (r *FlowMod) Cookie() uint64 {
	return r.cookie
}

func (r *FlowMod) SetCookie(cookie uint64) {
	r.cookie = cookie
}

func (r *FlowMod) SetCookieMask(mask uint64) {
	r.cookieMask = mask
}

func (r *FlowMod) TableID() uint8 {
	return r.tableID
}

func (r *FlowMod) SetTableID(id uint8) {
	r.tableID = id
}

func (r *FlowMod) IdleTimeout() uint16 {
	return r.idleTimeout
}

func (r *FlowMod) SetIdleTimeout(timeout uint16) {
	r.idleTimeout = timeout
}

func (r *FlowMod) HardTimeout() uint16 {
	return r.hardTimeout
}

func (r *FlowMod) SetHardTimeout(timeout uint16) {
	r.hardTimeout = timeout
}

func (r *FlowMod) Priority() uint16 {
	return r.priority
}

func (r *FlowMod) SetPriority(priority uint16) {
	r.priority = priority
}

func (r *FlowMod) BufferID() uint32 {
	return r.bufferID
}

// SetBufferID makes the switch apply this flow to the packet it buffered with id.
func (r *FlowMod) SetBufferID(id uint32) {
	r.bufferID = id
}

func (r *FlowMod) SetFlags(flags uint16) {
	r.flags = flags
}

func (r *FlowMod) FlowMatch() *Match {
	return r.match
}

func (r *FlowMod) SetFlowMatch(match *Match) {
	if match == nil {
		panic("flow match is nil")
	}
	r.match = match
}

func (r *FlowMod) FlowInstruction() *ApplyAction {
	return r.instruction
}

func (r *FlowMod) SetFlowInstruction(inst *ApplyAction) {
	if inst == nil {
		panic("flow instruction is nil")
	}
	r.instruction = inst
}

func (r *FlowMod) MarshalBinary() ([]byte, error) {
	if r.match == nil {
		return nil, errors.New("empty flow match")
	}

	v := make([]byte, 40)
	binary.BigEndian.PutUint64(v[0:8], r.cookie)
	binary.BigEndian.PutUint64(v[8:16], r.cookieMask)
	v[16] = r.tableID
	v[17] = r.command
	binary.BigEndian.PutUint16(v[18:20], r.idleTimeout)
	binary.BigEndian.PutUint16(v[20:22], r.hardTimeout)
	binary.BigEndian.PutUint16(v[22:24], r.priority)
	binary.BigEndian.PutUint32(v[24:28], r.bufferID)
	// out_port and out_group only filter DELETE commands; we never restrict them.
	binary.BigEndian.PutUint32(v[28:32], OFPP_ANY)
	binary.BigEndian.PutUint32(v[32:36], OFPG_ANY)
	binary.BigEndian.PutUint16(v[36:38], r.flags)
	// v[38:40] is padding

	match, err := r.match.MarshalBinary()
	if err != nil {
		return nil, err
	}
	v = append(v, match...)
	if r.instruction != nil {
		ins, err := r.instruction.MarshalBinary()
		if err != nil {
			return nil, err
		}
		v = append(v, ins...)
	}

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}
