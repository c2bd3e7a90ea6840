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
)

type PacketOut struct {
	openflow.Message
	bufferID uint32
	inPort   uint32
	actions  Actions
	data     []byte
}

func NewPacketOut(xid uint32) *PacketOut {
	return &PacketOut{
		Message:  openflow.NewMessage(openflow.OF13_VERSION, OFPT_PACKET_OUT, xid),
		bufferID: OFP_NO_BUFFER,
		inPort:   OFPP_CONTROLLER,
	}
}

func (r *PacketOut) BufferID() uint32 {
	return r.bufferID
}

func (r *PacketOut) SetBufferID(id uint32) {
	r.bufferID = id
}

func (r *PacketOut) InPort() uint32 {
	return r.inPort
}

func (r *PacketOut) SetInPort(port uint32) {
	r.inPort = port
}

func (r *PacketOut) Actions() Actions {
	return r.actions
}

func (r *PacketOut) SetActions(actions Actions) {
	r.actions = actions
}

func (r *PacketOut) Data() []byte {
	return r.data
}

func (r *PacketOut) SetData(data []byte) {
	r.data = data
}

func (r *PacketOut) MarshalBinary() ([]byte, error) {
	action, err := r.actions.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v := make([]byte, 16)
	binary.BigEndian.PutUint32(v[0:4], r.bufferID)
	binary.BigEndian.PutUint32(v[4:8], r.inPort)
	binary.BigEndian.PutUint16(v[8:10], uint16(len(action)))
	// v[10:16] is padding
	v = append(v, action...)
	// The switch already holds the frame if it is buffered.
	if r.bufferID == OFP_NO_BUFFER && len(r.data) > 0 {
		v = append(v, r.data...)
	}

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}
