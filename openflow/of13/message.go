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

// Hello carries no body; version negotiation only looks at the header.
type Hello struct {
	openflow.Message
}

func NewHello(xid uint32) *Hello {
	return &Hello{
		Message: openflow.NewMessage(openflow.OF13_VERSION, OFPT_HELLO, xid),
	}
}

func NewEchoRequest(xid uint32) *openflow.Echo {
	return openflow.NewEcho(OFPT_ECHO_REQUEST, xid)
}

func NewEchoReply(xid uint32) *openflow.Echo {
	return openflow.NewEcho(OFPT_ECHO_REPLY, xid)
}

type FeaturesRequest struct {
	openflow.Message
}

func NewFeaturesRequest(xid uint32) *FeaturesRequest {
	return &FeaturesRequest{
		Message: openflow.NewMessage(openflow.OF13_VERSION, OFPT_FEATURES_REQUEST, xid),
	}
}

type FeaturesReply struct {
	openflow.Message
	DPID         uint64
	NumBuffers   uint32
	NumTables    uint8
	AuxID        uint8
	Capabilities uint32
}

func (r *FeaturesReply) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 24 {
		return openflow.ErrInvalidPacketLength
	}
	r.DPID = binary.BigEndian.Uint64(payload[0:8])
	r.NumBuffers = binary.BigEndian.Uint32(payload[8:12])
	r.NumTables = payload[12]
	r.AuxID = payload[13]
	// payload[14:16] is padding
	r.Capabilities = binary.BigEndian.Uint32(payload[16:20])

	return nil
}

type Error struct {
	openflow.Message
	Class uint16
	Code  uint16
	Data  []byte
}

func (r *Error) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 4 {
		return openflow.ErrInvalidPacketLength
	}
	r.Class = binary.BigEndian.Uint16(payload[0:2])
	r.Code = binary.BigEndian.Uint16(payload[2:4])
	r.Data = payload[4:]

	return nil
}
