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
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/flaviopalomba02/SDN-Firewall/openflow"
)

// Match is an OXM flow match. Unset fields are wildcarded.
type Match struct {
	inPort    uint32
	hasInPort bool
	srcMAC    net.HardwareAddr
	dstMAC    net.HardwareAddr
}

// NewMatch returns a Match whose fields are all wildcarded
func NewMatch() *Match {
	return &Match{}
}

func (r *Match) SetInPort(port uint32) {
	r.inPort = port
	r.hasInPort = true
}

func (r *Match) InPort() (wildcard bool, port uint32) {
	return !r.hasInPort, r.inPort
}

func (r *Match) SetSrcMAC(mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return openflow.ErrInvalidMACAddress
	}
	r.srcMAC = append(net.HardwareAddr(nil), mac...)

	return nil
}

func (r *Match) SrcMAC() (wildcard bool, mac net.HardwareAddr) {
	return r.srcMAC == nil, r.srcMAC
}

func (r *Match) SetDstMAC(mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return openflow.ErrInvalidMACAddress
	}
	r.dstMAC = append(net.HardwareAddr(nil), mac...)

	return nil
}

func (r *Match) DstMAC() (wildcard bool, mac net.HardwareAddr) {
	return r.dstMAC == nil, r.dstMAC
}

func (r *Match) String() string {
	return fmt.Sprintf("InPort=%v/%v, SrcMAC=%v, DstMAC=%v", r.inPort, !r.hasInPort, r.srcMAC, r.dstMAC)
}

func oxmHeader(field uint8, length uint8) []byte {
	v := make([]byte, 4)
	binary.BigEndian.PutUint16(v[0:2], OFPXMC_OPENFLOW_BASIC)
	v[2] = field << 1 // hasmask is always zero
	v[3] = length

	return v
}

func (r *Match) marshalTLVs() []byte {
	var buf bytes.Buffer

	if r.hasInPort {
		buf.Write(oxmHeader(OFPXMT_OFB_IN_PORT, 4))
		v := make([]byte, 4)
		binary.BigEndian.PutUint32(v, r.inPort)
		buf.Write(v)
	}
	if r.dstMAC != nil {
		buf.Write(oxmHeader(OFPXMT_OFB_ETH_DST, 6))
		buf.Write(r.dstMAC)
	}
	if r.srcMAC != nil {
		buf.Write(oxmHeader(OFPXMT_OFB_ETH_SRC, 6))
		buf.Write(r.srcMAC)
	}

	return buf.Bytes()
}

func (r *Match) MarshalBinary() ([]byte, error) {
	tlv := r.marshalTLVs()
	// ofp_match.length excludes the trailing padding.
	length := 4 + len(tlv)

	v := make([]byte, 4, paddedLength(length))
	binary.BigEndian.PutUint16(v[0:2], OFPMT_OXM)
	binary.BigEndian.PutUint16(v[2:4], uint16(length))
	v = append(v, tlv...)
	// Add padding to align as a multiple of 8
	v = append(v, make([]byte, paddedLength(length)-length)...)

	return v, nil
}

func paddedLength(length int) int {
	if rem := length % 8; rem > 0 {
		return length + 8 - rem
	}

	return length
}

func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return openflow.ErrInvalidPacketLength
	}
	if t := binary.BigEndian.Uint16(data[0:2]); t != OFPMT_OXM {
		return fmt.Errorf("unsupported match type: %v", t)
	}
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if length < 4 || len(data) < length {
		return openflow.ErrInvalidPacketLength
	}

	buf := data[4:length]
	for len(buf) >= 4 {
		class := binary.BigEndian.Uint16(buf[0:2])
		field := buf[2] >> 1
		hasMask := buf[2]&0x1 == 1
		l := int(buf[3])
		if len(buf) < 4+l {
			return openflow.ErrInvalidPacketLength
		}
		value := buf[4 : 4+l]
		buf = buf[4+l:]

		// Masked and non-basic fields are not used by this controller.
		if class != OFPXMC_OPENFLOW_BASIC || hasMask {
			continue
		}
		switch field {
		case OFPXMT_OFB_IN_PORT:
			if l != 4 {
				return openflow.ErrInvalidPacketLength
			}
			r.SetInPort(binary.BigEndian.Uint32(value))
		case OFPXMT_OFB_ETH_DST:
			if err := r.SetDstMAC(value); err != nil {
				return err
			}
		case OFPXMT_OFB_ETH_SRC:
			if err := r.SetSrcMAC(value); err != nil {
				return err
			}
		default:
			// Do nothing
		}
	}

	return nil
}
