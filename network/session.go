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
	"context"
	"net"

	"github.com/flaviopalomba02/SDN-Firewall/openflow/of13"
	"github.com/flaviopalomba02/SDN-Firewall/openflow/transceiver"

	"github.com/pkg/errors"
)

var (
	errNotNegotiated = errors.New("invalid command on non-negotiated session")
)

type watcher interface {
	// deviceAdded returns an error if a device with the same DPID is already connected.
	deviceAdded(*Device) error
	deviceRemoved(*Device)
	dispatch(Event)
}

type session struct {
	negotiated  bool
	device      *Device
	transceiver *transceiver.Transceiver
	watcher     watcher
	// Parts of a multipart port stats reply that carries the REPLY_MORE flag.
	pendingStats []PortCounter
}

func newSession(conn net.Conn, w watcher) *session {
	if conn == nil {
		panic("Conn is nil")
	}
	if w == nil {
		panic("Watcher is nil")
	}

	v := new(session)
	v.watcher = w
	v.transceiver = transceiver.NewTransceiver(transceiver.NewStream(conn), v)
	v.device = newDevice(v.transceiver)

	return v
}

func (r *session) OnHello(w transceiver.Writer, v *of13.Hello) error {
	logger.Debugf("HELLO (ver=%v) is received", v.Version())

	// Ignore duplicated HELLO messages
	if r.negotiated {
		return nil
	}
	r.negotiated = true

	return w.Write(of13.NewFeaturesRequest(w.NextTransactionID()))
}

func (r *session) OnError(w transceiver.Writer, v *of13.Error) error {
	// Is this the CHECK_OVERLAP error?
	if v.Class == 3 && v.Code == 1 {
		// Ignore this CHECK_OVERLAP error
		logger.Debug("FLOW_MOD is overlapped")
		return nil
	}

	logger.Errorf("ERROR (DPID=%v, class=%v, code=%v, data=%v)", r.device.ID(), v.Class, v.Code, v.Data)
	if !r.negotiated {
		return errNotNegotiated
	}

	return nil
}

func (r *session) OnFeaturesReply(w transceiver.Writer, v *of13.FeaturesReply) error {
	logger.Debugf("FEATURES_REPLY (DPID=%v, NumBufs=%v, NumTables=%v)", v.DPID, v.NumBuffers, v.NumTables)

	if !r.negotiated {
		return errNotNegotiated
	}
	// First FeaturesReply packet?
	if r.device.isValid() {
		logger.Debug("ignoring the additional FEATURES_REPLY")
		return nil
	}

	r.device.setFeatures(Features{
		DPID:       v.DPID,
		NumBuffers: v.NumBuffers,
		NumTables:  v.NumTables,
	})
	if err := r.watcher.deviceAdded(r.device); err != nil {
		// Do not report DeviceDown for a device that never came up.
		r.device.Close()
		return err
	}
	logger.Infof("device is up (DPID=%v)", v.DPID)
	r.watcher.dispatch(Event{Type: EventDeviceUp, Datapath: r.device})

	return nil
}

func (r *session) OnPortStatsReply(w transceiver.Writer, v *of13.PortStatsReply) error {
	logger.Debugf("PORT_STATS_REPLY (DPID=%v, # of ports=%v, more=%v)", r.device.ID(), len(v.Stats), v.More())

	if !r.device.isValid() {
		logger.Debug("ignoring PORT_STATS_REPLY from an unidentified device")
		return nil
	}

	for _, s := range v.Stats {
		r.pendingStats = append(r.pendingStats, PortCounter{
			Port:      s.PortNo,
			RxPackets: s.RxPackets,
			RxBytes:   s.RxBytes,
			RxErrors:  s.RxErrors,
			TxPackets: s.TxPackets,
			TxBytes:   s.TxBytes,
			TxErrors:  s.TxErrors,
		})
	}
	if v.More() {
		return nil
	}

	stats := r.pendingStats
	r.pendingStats = nil
	r.watcher.dispatch(Event{Type: EventPortStats, Datapath: r.device, PortStats: stats})

	return nil
}

func (r *session) OnPacketIn(w transceiver.Writer, v *of13.PacketIn) error {
	logger.Debugf("PACKET_IN (DPID=%v, InPort=%v, BufferID=%v, Length=%v)", r.device.ID(), v.InPort, v.BufferID, v.Length)

	if !r.device.isValid() {
		logger.Debug("ignoring PACKET_IN from an unidentified device")
		return nil
	}
	if v.IsTruncated() {
		logger.Debugf("packet truncated: only %v of %v bytes were received", len(v.Data), v.Length)
	}

	r.watcher.dispatch(Event{
		Type:     EventPacketIn,
		Datapath: r.device,
		PacketIn: PacketIn{
			InPort:   v.InPort,
			BufferID: v.BufferID,
			Length:   v.Length,
			Data:     v.Data,
		},
	})

	return nil
}

func (r *session) Run(ctx context.Context) {
	if err := r.transceiver.Run(ctx); err != nil {
		logger.Errorf("openflow transceiver is unexpectedly closed: %v", err)
	}
	logger.Infof("disconnected device (DPID=%v)", r.device.ID())

	r.transceiver.Close()
	// A device refused as a duplicate is already closed.
	wasOpen := !r.device.IsClosed()
	r.device.Close()
	if r.device.isValid() && wasOpen {
		r.watcher.deviceRemoved(r.device)
		r.watcher.dispatch(Event{Type: EventDeviceDown, Datapath: r.device})
	}
}
