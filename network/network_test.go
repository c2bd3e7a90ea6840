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
	"encoding/binary"
	"net"
	"testing"

	"github.com/flaviopalomba02/SDN-Firewall/openflow/of13"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	packets [][]byte
	xid     uint32
}

func (r *fakeWriter) Write(msg encoding.BinaryMarshaler) error {
	v, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	r.packets = append(r.packets, v)

	return nil
}

func (r *fakeWriter) NextTransactionID() uint32 {
	r.xid++
	return r.xid
}

func newTestDevice(dpid uint64) (*Device, *fakeWriter) {
	w := new(fakeWriter)
	d := newDevice(w)
	d.setFeatures(Features{DPID: dpid})

	return d, w
}

func TestInstallRule(t *testing.T) {
	d, w := newTestDevice(1)

	src, _ := net.ParseMAC("00:00:00:00:00:01")
	dst, _ := net.ParseMAC("00:00:00:00:00:02")
	err := d.InstallRule(Rule{
		Priority:    1,
		Match:       Match{InPort: 1, SrcMAC: src, DstMAC: dst},
		OutPorts:    []uint32{2},
		IdleTimeout: 60,
		BufferID:    7,
	})
	require.NoError(t, err)
	require.Len(t, w.packets, 1)

	p := w.packets[0]
	assert.Equal(t, of13.OFPT_FLOW_MOD, p[1])
	assert.Equal(t, uint8(of13.OFPFC_ADD), p[25])
	assert.Equal(t, uint16(60), binary.BigEndian.Uint16(p[26:28]))
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(p[28:30]))
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(p[30:32]))
	assert.Equal(t, uint32(7), binary.BigEndian.Uint32(p[32:36]))
}

func TestInstallDropRule(t *testing.T) {
	d, w := newTestDevice(1)

	err := d.InstallRule(Rule{Priority: 1000, Match: Match{InPort: 3}, BufferID: NoBuffer})
	require.NoError(t, err)
	require.Len(t, w.packets, 1)

	p := w.packets[0]
	assert.Equal(t, uint16(1000), binary.BigEndian.Uint16(p[30:32]))
	assert.Equal(t, NoBuffer, binary.BigEndian.Uint32(p[32:36]))
	// 16 bytes of in_port match and an empty APPLY_ACTIONS instruction.
	require.Len(t, p, 48+16+8)
	assert.Equal(t, uint16(of13.OFPIT_APPLY_ACTIONS), binary.BigEndian.Uint16(p[64:66]))
	assert.Equal(t, uint16(8), binary.BigEndian.Uint16(p[66:68]))
}

func TestInstallRuleInvalidMAC(t *testing.T) {
	d, w := newTestDevice(1)

	err := d.InstallRule(Rule{Match: Match{SrcMAC: net.HardwareAddr{1, 2}}, BufferID: NoBuffer})
	require.Error(t, err)
	assert.Empty(t, w.packets)
}

func TestDeleteRule(t *testing.T) {
	d, w := newTestDevice(1)

	require.NoError(t, d.DeleteRule(1000, Match{InPort: 3}))
	require.Len(t, w.packets, 1)

	p := w.packets[0]
	assert.Equal(t, uint8(of13.OFPFC_DELETE_STRICT), p[25])
	assert.Equal(t, uint16(1000), binary.BigEndian.Uint16(p[30:32]))
}

func TestSendPacket(t *testing.T) {
	d, w := newTestDevice(1)

	frame := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, d.SendPacket(PacketOut{InPort: 1, BufferID: NoBuffer, OutPort: PortFlood, Data: frame}))
	require.Len(t, w.packets, 1)

	p := w.packets[0]
	assert.Equal(t, of13.OFPT_PACKET_OUT, p[1])
	assert.Equal(t, NoBuffer, binary.BigEndian.Uint32(p[8:12]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(p[12:16]))
	assert.Equal(t, PortFlood, binary.BigEndian.Uint32(p[24+4:24+8]))
	assert.Equal(t, frame, p[len(p)-len(frame):])
}

func TestClosedDevice(t *testing.T) {
	d, w := newTestDevice(1)
	d.Close()

	err := d.RequestPortStats()
	require.Error(t, err)
	assert.Equal(t, ErrClosedDevice, errors.Cause(err))
	assert.Empty(t, w.packets)
}

type event struct {
	typ   EventType
	dpid  uint64
	stats []PortCounter
}

type recorder struct {
	events []event
	err    error
}

func (r *recorder) OnDeviceUp(d Datapath) error {
	r.events = append(r.events, event{typ: EventDeviceUp, dpid: d.ID()})
	return r.err
}

func (r *recorder) OnDeviceDown(d Datapath) error {
	r.events = append(r.events, event{typ: EventDeviceDown, dpid: d.ID()})
	return r.err
}

func (r *recorder) OnPacketIn(d Datapath, p PacketIn) error {
	r.events = append(r.events, event{typ: EventPacketIn, dpid: d.ID()})
	return r.err
}

func (r *recorder) OnPortStats(d Datapath, s []PortCounter) error {
	r.events = append(r.events, event{typ: EventPortStats, dpid: d.ID(), stats: s})
	return r.err
}

func TestDispatch(t *testing.T) {
	c := NewController()
	l := &recorder{err: errors.New("application error")}
	c.SetEventListener(l)

	d, _ := newTestDevice(5)
	c.dispatch(Event{Type: EventDeviceUp, Datapath: d})
	c.dispatch(Event{Type: EventPacketIn, Datapath: d})
	c.dispatch(Event{Type: EventPortStats, Datapath: d, PortStats: []PortCounter{{Port: 1}}})
	c.dispatch(Event{Type: EventDeviceDown, Datapath: d})

	require.Len(t, l.events, 4)
	assert.Equal(t, EventDeviceUp, l.events[0].typ)
	assert.Equal(t, EventPacketIn, l.events[1].typ)
	assert.Equal(t, EventPortStats, l.events[2].typ)
	assert.Equal(t, []PortCounter{{Port: 1}}, l.events[2].stats)
	assert.Equal(t, EventDeviceDown, l.events[3].typ)
	for _, e := range l.events {
		assert.Equal(t, uint64(5), e.dpid)
	}
}

func TestDuplicateDevice(t *testing.T) {
	c := NewController()

	first, _ := newTestDevice(9)
	second, _ := newTestDevice(9)
	require.NoError(t, c.deviceAdded(first))
	require.Error(t, c.deviceAdded(second))

	// Removing the refused device must not unregister the first one.
	c.deviceRemoved(second)
	assert.Equal(t, first, c.Device(9))

	c.deviceRemoved(first)
	assert.Nil(t, c.Device(9))
}

func TestDevicesSorted(t *testing.T) {
	c := NewController()
	for _, id := range []uint64{3, 1, 2} {
		d, _ := newTestDevice(id)
		require.NoError(t, c.deviceAdded(d))
	}

	var ids []uint64
	for _, d := range c.Devices() {
		ids = append(ids, d.ID())
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

type fakeWatcher struct {
	added   []*Device
	removed []*Device
	events  []Event
	refuse  bool
}

func (r *fakeWatcher) deviceAdded(d *Device) error {
	if r.refuse {
		return errors.New("duplicated")
	}
	r.added = append(r.added, d)
	return nil
}

func (r *fakeWatcher) deviceRemoved(d *Device) {
	r.removed = append(r.removed, d)
}

func (r *fakeWatcher) dispatch(ev Event) {
	r.events = append(r.events, ev)
}

func newTestSession(w *fakeWatcher) (*session, *fakeWriter) {
	fw := new(fakeWriter)
	s := &session{watcher: w}
	s.device = newDevice(fw)

	return s, fw
}

func TestSessionHandshake(t *testing.T) {
	w := new(fakeWatcher)
	s, fw := newTestSession(w)

	require.NoError(t, s.OnHello(fw, of13.NewHello(1)))
	require.Len(t, fw.packets, 1)
	assert.Equal(t, of13.OFPT_FEATURES_REQUEST, fw.packets[0][1])

	// Packets before FEATURES_REPLY are ignored.
	require.NoError(t, s.OnPacketIn(fw, &of13.PacketIn{InPort: 1}))
	assert.Empty(t, w.events)

	require.NoError(t, s.OnFeaturesReply(fw, &of13.FeaturesReply{DPID: 42}))
	require.Len(t, w.added, 1)
	require.Len(t, w.events, 1)
	assert.Equal(t, EventDeviceUp, w.events[0].Type)
	assert.Equal(t, uint64(42), w.events[0].Datapath.ID())
}

func TestSessionRefused(t *testing.T) {
	w := &fakeWatcher{refuse: true}
	s, fw := newTestSession(w)

	require.NoError(t, s.OnHello(fw, of13.NewHello(1)))
	require.Error(t, s.OnFeaturesReply(fw, &of13.FeaturesReply{DPID: 42}))
	assert.Empty(t, w.events)
	assert.True(t, s.device.IsClosed())
}

func TestSessionMultipartStats(t *testing.T) {
	w := new(fakeWatcher)
	s, fw := newTestSession(w)
	require.NoError(t, s.OnHello(fw, of13.NewHello(1)))
	require.NoError(t, s.OnFeaturesReply(fw, &of13.FeaturesReply{DPID: 1}))
	w.events = nil

	first := &of13.PortStatsReply{
		Flags: of13.OFPMPF_REPLY_MORE,
		Stats: []of13.PortStats{{PortNo: 1, RxBytes: 100}},
	}
	require.NoError(t, s.OnPortStatsReply(fw, first))
	assert.Empty(t, w.events)

	last := &of13.PortStatsReply{
		Stats: []of13.PortStats{{PortNo: 2, RxBytes: 200, TxErrors: 3}},
	}
	require.NoError(t, s.OnPortStatsReply(fw, last))
	require.Len(t, w.events, 1)
	assert.Equal(t, EventPortStats, w.events[0].Type)
	assert.Equal(t, []PortCounter{
		{Port: 1, RxBytes: 100},
		{Port: 2, RxBytes: 200, TxErrors: 3},
	}, w.events[0].PortStats)
}
