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
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mac1 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	mac2 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x02}
)

func TestFlowModForwarding(t *testing.T) {
	match := NewMatch()
	match.SetInPort(1)
	require.NoError(t, match.SetSrcMAC(mac1))
	require.NoError(t, match.SetDstMAC(mac2))

	flow := NewFlowMod(7, OFPFC_ADD)
	flow.SetPriority(1)
	flow.SetIdleTimeout(60)
	flow.SetBufferID(0x1234)
	flow.SetFlowMatch(match)
	flow.SetFlowInstruction(&ApplyAction{Actions: Actions{{Port: 2}}})

	v, err := flow.MarshalBinary()
	require.NoError(t, err)
	// header + flow_mod + 32-byte match + apply-actions with one output
	require.Len(t, v, 8+40+32+24)

	assert.Equal(t, uint8(0x04), v[0])
	assert.Equal(t, OFPT_FLOW_MOD, v[1])
	assert.Equal(t, uint16(len(v)), binary.BigEndian.Uint16(v[2:4]))
	assert.Equal(t, uint32(7), binary.BigEndian.Uint32(v[4:8]))

	body := v[8:]
	assert.Equal(t, uint8(OFPFC_ADD), body[17])
	assert.Equal(t, uint16(60), binary.BigEndian.Uint16(body[18:20]))
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(body[22:24]))
	assert.Equal(t, uint32(0x1234), binary.BigEndian.Uint32(body[24:28]))

	m := body[40:72]
	assert.Equal(t, uint16(OFPMT_OXM), binary.BigEndian.Uint16(m[0:2]))
	assert.Equal(t, uint16(32), binary.BigEndian.Uint16(m[2:4]))
	// in_port
	assert.Equal(t, []byte{0x80, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01}, m[4:12])
	// eth_dst followed by eth_src
	assert.Equal(t, []byte{0x80, 0x00, OFPXMT_OFB_ETH_DST << 1, 0x06}, m[12:16])
	assert.Equal(t, []byte(mac2), m[16:22])
	assert.Equal(t, []byte{0x80, 0x00, OFPXMT_OFB_ETH_SRC << 1, 0x06}, m[22:26])
	assert.Equal(t, []byte(mac1), m[26:32])

	inst := body[72:]
	assert.Equal(t, uint16(OFPIT_APPLY_ACTIONS), binary.BigEndian.Uint16(inst[0:2]))
	assert.Equal(t, uint16(24), binary.BigEndian.Uint16(inst[2:4]))
	assert.Equal(t, uint16(OFPAT_OUTPUT), binary.BigEndian.Uint16(inst[8:10]))
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(inst[12:16]))
}

func TestFlowModDrop(t *testing.T) {
	match := NewMatch()
	match.SetInPort(3)

	flow := NewFlowMod(1, OFPFC_ADD)
	flow.SetPriority(1000)
	flow.SetFlowMatch(match)
	flow.SetFlowInstruction(&ApplyAction{})

	v, err := flow.MarshalBinary()
	require.NoError(t, err)
	// 12-byte match padded to 16, instruction without actions
	require.Len(t, v, 8+40+16+8)
	assert.Equal(t, uint32(OFP_NO_BUFFER), binary.BigEndian.Uint32(v[8+24:8+28]))
	assert.Equal(t, uint16(12), binary.BigEndian.Uint16(v[8+42:8+44]))
	assert.Equal(t, uint16(8), binary.BigEndian.Uint16(v[8+58:8+60]))
}

func TestFlowModWithoutMatch(t *testing.T) {
	flow := NewFlowMod(1, OFPFC_ADD)
	_, err := flow.MarshalBinary()
	assert.Error(t, err)
}

func TestTableMissMatch(t *testing.T) {
	v, err := NewMatch().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}, v)
}

func packetIn(bufferID uint32, inPort uint32, frame []byte) []byte {
	v := make([]byte, 8+16+16+2)
	v[0] = 0x04
	v[1] = OFPT_PACKET_IN
	binary.BigEndian.PutUint32(v[4:8], 99)
	body := v[8:]
	binary.BigEndian.PutUint32(body[0:4], bufferID)
	binary.BigEndian.PutUint16(body[4:6], uint16(len(frame)))
	body[6] = OFPR_NO_MATCH
	// match: type, length=12, in_port TLV, 4 bytes of padding
	binary.BigEndian.PutUint16(body[16:18], OFPMT_OXM)
	binary.BigEndian.PutUint16(body[18:20], 12)
	copy(body[20:24], []byte{0x80, 0x00, 0x00, 0x04})
	binary.BigEndian.PutUint32(body[24:28], inPort)
	v = append(v, frame...)
	binary.BigEndian.PutUint16(v[2:4], uint16(len(v)))

	return v
}

func TestPacketInUnmarshal(t *testing.T) {
	frame := []byte{0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 1, 0x08, 0x00}

	msg := new(PacketIn)
	require.NoError(t, msg.UnmarshalBinary(packetIn(OFP_NO_BUFFER, 3, frame)))
	assert.Equal(t, uint32(OFP_NO_BUFFER), msg.BufferID)
	assert.Equal(t, uint32(3), msg.InPort)
	assert.Equal(t, uint32(99), msg.TransactionID())
	assert.Equal(t, frame, msg.Data)
	assert.False(t, msg.IsTruncated())
}

func TestPacketInTruncated(t *testing.T) {
	packet := packetIn(0x10, 1, []byte{0, 0, 0, 0, 0, 2})
	// Claim the original frame was longer than what we carry.
	binary.BigEndian.PutUint16(packet[12:14], 64)

	msg := new(PacketIn)
	require.NoError(t, msg.UnmarshalBinary(packet))
	assert.True(t, msg.IsTruncated())
}

func TestPacketInShort(t *testing.T) {
	msg := new(PacketIn)
	assert.Error(t, msg.UnmarshalBinary([]byte{0x04, OFPT_PACKET_IN, 0x00, 0x08, 0, 0, 0, 0}))
}

func TestPacketOut(t *testing.T) {
	frame := []byte{1, 2, 3, 4}

	out := NewPacketOut(5)
	out.SetInPort(1)
	out.SetActions(Actions{{Port: OFPP_FLOOD}})
	out.SetData(frame)
	v, err := out.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, v, 8+16+16+len(frame))
	assert.Equal(t, uint32(OFP_NO_BUFFER), binary.BigEndian.Uint32(v[8:12]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(v[12:16]))
	assert.Equal(t, uint16(16), binary.BigEndian.Uint16(v[16:18]))
	assert.Equal(t, uint32(OFPP_FLOOD), binary.BigEndian.Uint32(v[28:32]))
	assert.Equal(t, frame, v[40:])

	// A buffered packet is released by its id; the bytes stay on the switch.
	out.SetBufferID(0x42)
	v, err = out.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, v, 8+16+16)
}

func TestPortStatsReply(t *testing.T) {
	stats := []PortStats{
		{PortNo: 2, RxBytes: 1500, RxPackets: 10, TxBytes: 700, TxErrors: 1},
		{PortNo: 1, RxBytes: 42, DurationSec: 9},
	}

	v := make([]byte, 16)
	v[0] = 0x04
	v[1] = OFPT_MULTIPART_REPLY
	binary.BigEndian.PutUint16(v[8:10], OFPMP_PORT_STATS)
	binary.BigEndian.PutUint16(v[10:12], OFPMPF_REPLY_MORE)
	for _, s := range stats {
		b, err := s.MarshalBinary()
		require.NoError(t, err)
		v = append(v, b...)
	}
	binary.BigEndian.PutUint16(v[2:4], uint16(len(v)))

	mp, err := MultipartType(v)
	require.NoError(t, err)
	assert.Equal(t, uint16(OFPMP_PORT_STATS), mp)

	reply := new(PortStatsReply)
	require.NoError(t, reply.UnmarshalBinary(v))
	assert.True(t, reply.More())
	assert.Equal(t, stats, reply.Stats)
}

func TestPortStatsRequest(t *testing.T) {
	v, err := NewPortStatsRequest(3).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, v, 24)
	assert.Equal(t, OFPT_MULTIPART_REQUEST, v[1])
	assert.Equal(t, uint16(OFPMP_PORT_STATS), binary.BigEndian.Uint16(v[8:10]))
	assert.Equal(t, uint32(OFPP_ANY), binary.BigEndian.Uint32(v[16:20]))
}
