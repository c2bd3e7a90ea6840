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

// Output forwards a packet to a switch port or to one of the OFPP_* reserved ports.
type Output struct {
	Port uint32
}

func (r Output) MarshalBinary() ([]byte, error) {
	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], OFPAT_OUTPUT)
	binary.BigEndian.PutUint16(v[2:4], 16)
	binary.BigEndian.PutUint32(v[4:8], r.Port)
	// We don't support buffer ID and partial PACKET_IN
	binary.BigEndian.PutUint16(v[8:10], OFPCML_NO_BUFFER)
	// v[10:16] is padding

	return v, nil
}

// Actions is an ordered action list. An empty list drops the packet.
type Actions []Output

func (r Actions) MarshalBinary() ([]byte, error) {
	result := make([]byte, 0, 16*len(r))
	for _, a := range r {
		v, err := a.MarshalBinary()
		if err != nil {
			return nil, err
		}
		result = append(result, v...)
	}

	return result, nil
}

func (r *Actions) UnmarshalBinary(data []byte) error {
	*r = (*r)[:0]

	buf := data
	for len(buf) >= 4 {
		t := binary.BigEndian.Uint16(buf[0:2])
		length := int(binary.BigEndian.Uint16(buf[2:4]))
		if length < 4 || len(buf) < length {
			return openflow.ErrInvalidPacketLength
		}

		switch t {
		case OFPAT_OUTPUT:
			if length < 8 {
				return openflow.ErrInvalidPacketLength
			}
			*r = append(*r, Output{Port: binary.BigEndian.Uint32(buf[4:8])})
		default:
			// Do nothing
		}

		buf = buf[length:]
	}

	return nil
}
