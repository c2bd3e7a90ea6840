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

package l2switch

import (
	"fmt"
	"net"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("l2switch")
)

const (
	tableMissPriority = 0
	flowPriority      = 1
)

type Config struct {
	// Idle and hard timeouts of the installed flow rules in seconds. Zero means no timeout.
	IdleTimeout uint16
	HardTimeout uint16
}

// PortBlocker tells whether frames arriving on a port have to be dropped.
type PortBlocker interface {
	IsBlocked(dpid uint64, port uint32) bool
}

type L2Switch struct {
	app.BaseProcessor
	conf    Config
	table   *Table
	cache   *flowCache
	blocker PortBlocker
	metrics *metrics.Metrics
}

func New(conf Config, blocker PortBlocker, m *metrics.Metrics) *L2Switch {
	if blocker == nil {
		panic("nil port blocker")
	}
	if m == nil {
		panic("nil metrics")
	}

	return &L2Switch{
		conf:    conf,
		table:   newTable(),
		cache:   newFlowCache(),
		blocker: blocker,
		metrics: m,
	}
}

func (r *L2Switch) Name() string {
	return "L2Switch"
}

// Dependencies names the application that feeds the blocked ports.
func (r *L2Switch) Dependencies() []string {
	return []string{"Mitigation"}
}

func (r *L2Switch) String() string {
	return fmt.Sprintf("%v: %v forwarding entries", r.Name(), r.table.len())
}

func (r *L2Switch) OnDeviceUp(dp network.Datapath) error {
	// Table-miss rule: send every unmatched frame to the controller.
	miss := network.Rule{
		Priority: tableMissPriority,
		OutPorts: []uint32{network.PortController},
		BufferID: network.NoBuffer,
	}
	if err := dp.InstallRule(miss); err != nil {
		return errors.Wrap(err, "installing the table-miss rule")
	}
	logger.Infof("installed the table-miss rule on %v", dp.ID())

	return r.BaseProcessor.OnDeviceUp(dp)
}

func (r *L2Switch) OnPacketIn(dp network.Datapath, p network.PacketIn) error {
	drop, err := r.processPacket(dp, p)
	if drop || err != nil {
		return err
	}

	return r.BaseProcessor.OnPacketIn(dp, p)
}

func decodeEthernet(data []byte) (*layers.Ethernet, error) {
	eth := new(layers.Ethernet)
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}

	return eth, nil
}

func (r *L2Switch) processPacket(dp network.Datapath, p network.PacketIn) (drop bool, err error) {
	r.metrics.PacketIn.Inc()
	dpid := dp.ID()

	eth, err := decodeEthernet(p.Data)
	if err != nil {
		logger.Debugf("ignoring an undecodable frame (DPID=%v, InPort=%v): %v", dpid, p.InPort, err)
		return true, nil
	}
	// Topology discovery frames are not forwarded.
	if eth.EthernetType == layers.EthernetTypeLinkLayerDiscovery {
		return true, nil
	}
	logger.Debugf("PACKET_IN.. DPID=%v, InPort=%v, SrcMAC=%v, DstMAC=%v", dpid, p.InPort, eth.SrcMAC, eth.DstMAC)

	if r.blocker.IsBlocked(dpid, p.InPort) {
		logger.Infof("dropping a frame from the blocked port (DPID=%v, InPort=%v, SrcMAC=%v)", dpid, p.InPort, eth.SrcMAC)
		return true, nil
	}

	result, anchor := r.table.learn(dpid, eth.SrcMAC, p.InPort)
	switch result {
	case learnSpoofed:
		r.metrics.SpoofingDetected.Inc()
		logger.Warningf("spoofing detected! dropping.. DPID=%v, SrcMAC=%v, InPort=%v, LearnedPort=%v", dpid, eth.SrcMAC, p.InPort, anchor)
		return true, nil
	case learnNew:
		logger.Infof("learned %v on port %v of %v", eth.SrcMAC, p.InPort, dpid)
	}

	egress, ok := r.table.lookup(dpid, eth.DstMAC)
	if !ok {
		r.metrics.Flood.Inc()
		logger.Debugf("unknown destination! flooding.. DPID=%v, SrcMAC=%v, DstMAC=%v", dpid, eth.SrcMAC, eth.DstMAC)
		return true, r.PacketOut(dp, p, network.PortFlood)
	}
	if egress == p.InPort {
		logger.Debugf("destination is on the ingress port: dropping.. DPID=%v, DstMAC=%v", dpid, eth.DstMAC)
		return true, nil
	}

	return true, r.switching(dp, p, eth.SrcMAC, eth.DstMAC, egress)
}

func (r *L2Switch) switching(dp network.Datapath, p network.PacketIn, src, dst net.HardwareAddr, egress uint32) error {
	key := newFlowKey(dp.ID(), p.InPort, src, dst, egress)
	if r.cache.exist(key) {
		// The rule is being installed; just deliver this frame.
		logger.Debugf("skipping a recently installed flow: %+v", key)
		return r.PacketOut(dp, p, egress)
	}

	flow := network.Rule{
		Priority:    flowPriority,
		Match:       network.Match{InPort: p.InPort, SrcMAC: src, DstMAC: dst},
		OutPorts:    []uint32{egress},
		IdleTimeout: r.conf.IdleTimeout,
		HardTimeout: r.conf.HardTimeout,
		BufferID:    p.BufferID,
	}
	if err := dp.InstallRule(flow); err != nil {
		return err
	}
	r.cache.add(key)
	logger.Debugf("installed a new flow rule on %v: %v -> %v", dp.ID(), flow.Match, egress)

	// The switch releases a buffered frame through the new rule.
	if p.BufferID != network.NoBuffer {
		return nil
	}

	return r.PacketOut(dp, p, egress)
}

// Relearn forgets the port mac is anchored to on the switch dpid. The next
// frame from mac is learned on the port it arrives.
func (r *L2Switch) Relearn(dpid uint64, mac net.HardwareAddr) bool {
	ok := r.table.forget(dpid, mac)
	if ok {
		logger.Infof("forgot %v on %v: it will be relearned", mac, dpid)
	}

	return ok
}

// Entries returns the forwarding table of the switch dpid.
func (r *L2Switch) Entries(dpid uint64) []Entry {
	return r.table.entries(dpid)
}
