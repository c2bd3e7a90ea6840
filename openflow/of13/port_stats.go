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

const portStatsLength = 112

type PortStatsRequest struct {
	openflow.Message
	port uint32
}

// NewPortStatsRequest asks for the counters of every port (OFPP_ANY).
func NewPortStatsRequest(xid uint32) *PortStatsRequest {
	return &PortStatsRequest{
		Message: openflow.NewMessage(openflow.OF13_VERSION, OFPT_MULTIPART_REQUEST, xid),
		port:    OFPP_ANY,
	}
}

func (r *PortStatsRequest) Port() uint32 {
	return r.port
}

func (r *PortStatsRequest) SetPort(port uint32) {
	r.port = port
}

func (r *PortStatsRequest) MarshalBinary() ([]byte, error) {
	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], OFPMP_PORT_STATS)
	// v[2:4] is flags, v[4:8] is padding
	binary.BigEndian.PutUint32(v[8:12], r.port)
	// v[12:16] is padding

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}

type PortStats struct {
	PortNo       uint32
	RxPackets    uint64
	TxPackets    uint64
	RxBytes      uint64
	TxBytes      uint64
	RxDropped    uint64
	TxDropped    uint64
	RxErrors     uint64
	TxErrors     uint64
	RxFrameErr   uint64
	RxOverErr    uint64
	RxCRCErr     uint64
	Collisions   uint64
	DurationSec  uint32
	DurationNsec uint32
}

func (r *PortStats) UnmarshalBinary(data []byte) error {
	if len(data) < portStatsLength {
		return openflow.ErrInvalidPacketLength
	}

	r.PortNo = binary.BigEndian.Uint32(data[0:4])
	// data[4:8] is padding
	r.RxPackets = binary.BigEndian.Uint64(data[8:16])
	r.TxPackets = binary.BigEndian.Uint64(data[16:24])
	r.RxBytes = binary.BigEndian.Uint64(data[24:32])
	r.TxBytes = binary.BigEndian.Uint64(data[32:40])
	r.RxDropped = binary.BigEndian.Uint64(data[40:48])
	r.TxDropped = binary.BigEndian.Uint64(data[48:56])
	r.RxErrors = binary.BigEndian.Uint64(data[56:64])
	r.TxErrors = binary.BigEndian.Uint64(data[64:72])
	r.RxFrameErr = binary.BigEndian.Uint64(data[72:80])
	r.RxOverErr = binary.BigEndian.Uint64(data[80:88])
	r.RxCRCErr = binary.BigEndian.Uint64(data[88:96])
	r.Collisions = binary.BigEndian.Uint64(data[96:104])
	r.DurationSec = binary.BigEndian.Uint32(data[104:108])
	r.DurationNsec = binary.BigEndian.Uint32(data[108:112])

	return nil
}

func (r *PortStats) MarshalBinary() ([]byte, error) {
	v := make([]byte, portStatsLength)
	binary.BigEndian.PutUint32(v[0:4], r.PortNo)
	binary.BigEndian.PutUint64(v[8:16], r.RxPackets)
	binary.BigEndian.PutUint64(v[16:24], r.TxPackets)
	binary.BigEndian.PutUint64(v[24:32], r.RxBytes)
	binary.BigEndian.PutUint64(v[32:40], r.TxBytes)
	binary.BigEndian.PutUint64(v[40:48], r.RxDropped)
	binary.BigEndian.PutUint64(v[48:56], r.TxDropped)
	binary.BigEndian.PutUint64(v[56:64], r.RxErrors)
	binary.BigEndian.PutUint64(v[64:72], r.TxErrors)
	binary.BigEndian.PutUint64(v[72:80], r.RxFrameErr)
	binary.BigEndian.PutUint64(v[80:88], r.RxOverErr)
	binary.BigEndian.PutUint64(v[88:96], r.RxCRCErr)
	binary.BigEndian.PutUint64(v[96:104], r.Collisions)
	binary.BigEndian.PutUint32(v[104:108], r.DurationSec)
	binary.BigEndian.PutUint32(v[108:112], r.DurationNsec)

	return v, nil
}

// PortStatsReply is one part of a multipart port statistics reply. A switch
// may split a reply over several messages flagged with OFPMPF_REPLY_MORE.
type PortStatsReply struct {
	openflow.Message
	Flags uint16
	Stats []PortStats
}

func (r *PortStatsReply) More() bool {
	return r.Flags&OFPMPF_REPLY_MORE != 0
}

func (r *PortStatsReply) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 8 {
		return openflow.ErrInvalidPacketLength
	}
	if t := binary.BigEndian.Uint16(payload[0:2]); t != OFPMP_PORT_STATS {
		return openflow.ErrUnsupportedMessage
	}
	r.Flags = binary.BigEndian.Uint16(payload[2:4])
	// payload[4:8] is padding

	body := payload[8:]
	if len(body)%portStatsLength != 0 {
		return openflow.ErrInvalidPacketLength
	}
	r.Stats = make([]PortStats, 0, len(body)/portStatsLength)
	for len(body) > 0 {
		var s PortStats
		if err := s.UnmarshalBinary(body[:portStatsLength]); err != nil {
			return err
		}
		r.Stats = append(r.Stats, s)
		body = body[portStatsLength:]
	}

	return nil
}

// MultipartType returns the multipart type of a raw MULTIPART_REPLY packet.
func MultipartType(packet []byte) (uint16, error) {
	if len(packet) < 10 {
		return 0, openflow.ErrInvalidPacketLength
	}

	return binary.BigEndian.Uint16(packet[8:10]), nil
}
