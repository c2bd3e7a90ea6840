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
	"fmt"
	"net"

	"github.com/flaviopalomba02/SDN-Firewall/openflow/of13"
)

const (
	// NoBuffer means the switch did not buffer the frame, or a command carries no buffer reference.
	NoBuffer uint32 = of13.OFP_NO_BUFFER

	PortFlood      uint32 = of13.OFPP_FLOOD
	PortController uint32 = of13.OFPP_CONTROLLER
	PortAny        uint32 = of13.OFPP_ANY
)

// Match selects frames by ingress port and Ethernet addresses. A zero InPort
// (port 0 is never a valid switch port) or a nil address is a wildcard.
type Match struct {
	InPort uint32
	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr
}

func (r Match) String() string {
	return fmt.Sprintf("in_port=%v, src=%v, dst=%v", r.InPort, r.SrcMAC, r.DstMAC)
}

func (r Match) of13() (*of13.Match, error) {
	m := of13.NewMatch()
	if r.InPort != 0 {
		m.SetInPort(r.InPort)
	}
	if r.SrcMAC != nil {
		if err := m.SetSrcMAC(r.SrcMAC); err != nil {
			return nil, err
		}
	}
	if r.DstMAC != nil {
		if err := m.SetDstMAC(r.DstMAC); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Rule is a flow entry. An empty OutPorts list drops the matched frames.
type Rule struct {
	Priority    uint16
	Match       Match
	OutPorts    []uint32
	IdleTimeout uint16
	HardTimeout uint16
	// BufferID makes the switch apply the rule to a buffered frame. It must be
	// NoBuffer when there is no such frame; buffer ID 0 is a valid buffer.
	BufferID uint32
}

type PacketOut struct {
	// InPort 0 means the packet originates from the controller.
	InPort   uint32
	BufferID uint32
	OutPort  uint32
	// Data is ignored when BufferID refers to a buffered frame.
	Data []byte
}

// Datapath is the command interface of a connected switch.
type Datapath interface {
	ID() uint64
	InstallRule(Rule) error
	// DeleteRule removes the rule that has exactly this priority and match.
	DeleteRule(priority uint16, match Match) error
	SendPacket(PacketOut) error
	// RequestPortStats asks for the counters of all ports. The reply arrives as
	// an EventPortStats event.
	RequestPortStats() error
}
