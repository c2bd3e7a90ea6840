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

type PacketIn struct {
	openflow.Message
	BufferID uint32
	Length   uint16 // Full length of the frame.
	InPort   uint32
	TableID  uint8
	Reason   uint8
	Cookie   uint64
	Data     []byte
}

func (r *PacketIn) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 24 {
		return openflow.ErrInvalidPacketLength
	}
	r.BufferID = binary.BigEndian.Uint32(payload[0:4])
	r.Length = binary.BigEndian.Uint16(payload[4:6])
	r.Reason = payload[6]
	r.TableID = payload[7]
	r.Cookie = binary.BigEndian.Uint64(payload[8:16])

	match := NewMatch()
	if err := match.UnmarshalBinary(payload[16:]); err != nil {
		return err
	}
	wildcard, inPort := match.InPort()
	if wildcard {
		// OpenFlow 1.3 switches must always report the ingress port.
		return openflow.ErrInvalidPacketLength
	}
	r.InPort = inPort

	matchLength := paddedLength(int(binary.BigEndian.Uint16(payload[18:20])))
	dataOffset := 16 + matchLength + 2 // +2 is padding
	if len(payload) >= dataOffset {
		r.Data = payload[dataOffset:]
	}

	return nil
}

// IsTruncated reports whether the switch sent only part of the frame.
func (r *PacketIn) IsTruncated() bool {
	return len(r.Data) < int(r.Length)
}
