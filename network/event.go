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
)

type EventType int

const (
	EventDeviceUp EventType = iota
	EventDeviceDown
	EventPacketIn
	EventPortStats
)

func (r EventType) String() string {
	switch r {
	case EventDeviceUp:
		return "DeviceUp"
	case EventDeviceDown:
		return "DeviceDown"
	case EventPacketIn:
		return "PacketIn"
	case EventPortStats:
		return "PortStats"
	default:
		return fmt.Sprintf("EventType(%d)", int(r))
	}
}

type PacketIn struct {
	InPort   uint32
	BufferID uint32
	// Length is the full length of the frame; Data may be shorter if the switch truncated it.
	Length uint16
	Data   []byte
}

type PortCounter struct {
	Port      uint32
	RxPackets uint64
	RxBytes   uint64
	RxErrors  uint64
	TxPackets uint64
	TxBytes   uint64
	TxErrors  uint64
}

// Event is a switch event. Only the field matching Type is set.
type Event struct {
	Type      EventType
	Datapath  Datapath
	PacketIn  PacketIn
	PortStats []PortCounter
}

type EventListener interface {
	OnDeviceUp(Datapath) error
	OnDeviceDown(Datapath) error
	OnPacketIn(Datapath, PacketIn) error
	OnPortStats(Datapath, []PortCounter) error
}
