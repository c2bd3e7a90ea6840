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

package app

import (
	"github.com/flaviopalomba02/SDN-Firewall/network"
)

// Processor should prepare to be executed by multiple goroutines simultaneously.
type Processor interface {
	network.EventListener
	Init() error
	// Name returns the application name that is globally unique
	Name() string
	// Dependencies returns the names of the applications that should be enabled before this one.
	Dependencies() []string
	Next() (next Processor, ok bool)
	SetNext(Processor)
}

type BaseProcessor struct {
	next Processor
}

func (r *BaseProcessor) Init() error {
	return nil
}

func (r *BaseProcessor) Name() string {
	return "BaseProcessor"
}

func (r *BaseProcessor) Dependencies() []string {
	return nil
}

func (r *BaseProcessor) OnDeviceUp(dp network.Datapath) error {
	// Do nothging and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnDeviceUp(dp)
}

func (r *BaseProcessor) OnDeviceDown(dp network.Datapath) error {
	// Do nothging and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnDeviceDown(dp)
}

func (r *BaseProcessor) OnPacketIn(dp network.Datapath, p network.PacketIn) error {
	// Do nothging and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnPacketIn(dp, p)
}

func (r *BaseProcessor) OnPortStats(dp network.Datapath, stats []network.PortCounter) error {
	// Do nothging and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnPortStats(dp, stats)
}

func (r *BaseProcessor) Next() (next Processor, ok bool) {
	if r.next != nil {
		return r.next, true
	}

	return nil, false
}

func (r *BaseProcessor) SetNext(next Processor) {
	r.next = next
}

// PacketOut releases the frame of a PACKET_IN to the egress port. A buffered
// frame is referenced by its buffer ID, otherwise the raw bytes are sent.
func (r *BaseProcessor) PacketOut(dp network.Datapath, p network.PacketIn, egress uint32) error {
	return dp.SendPacket(network.PacketOut{
		InPort:   p.InPort,
		BufferID: p.BufferID,
		OutPort:  egress,
		Data:     p.Data,
	})
}
