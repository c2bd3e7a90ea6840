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
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("network")
)

// Controller accepts switch connections and routes their events to a single
// EventListener. Events of one switch are dispatched sequentially from its
// session goroutine; different switches are dispatched concurrently.
type Controller struct {
	mutex    sync.RWMutex
	devices  map[uint64]*Device
	listener EventListener
}

func NewController() *Controller {
	return &Controller{
		devices: make(map[uint64]*Device),
	}
}

func (r *Controller) SetEventListener(l EventListener) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.listener = l
}

// AddConnection serves a new switch connection in its own goroutine until ctx
// is cancelled or the connection is closed.
func (r *Controller) AddConnection(ctx context.Context, c net.Conn) {
	session := newSession(c, r)
	go session.Run(ctx)
}

func (r *Controller) deviceAdded(d *Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := d.ID()
	if _, ok := r.devices[id]; ok {
		return errors.New(fmt.Sprintf("duplicated device DPID: %v (aux. connection is not supported)", id))
	}
	r.devices[id] = d

	return nil
}

func (r *Controller) deviceRemoved(d *Device) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := d.ID()
	// Only remove the device if it is still the registered one.
	if v, ok := r.devices[id]; ok && v == d {
		delete(r.devices, id)
	}
}

// Device may return nil if there is no connected device whose DPID is id.
func (r *Controller) Device(id uint64) *Device {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.devices[id]
}

// Devices returns the connected devices sorted by DPID.
func (r *Controller) Devices() []*Device {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		v = append(v, d)
	}
	sort.Slice(v, func(i, j int) bool { return v[i].ID() < v[j].ID() })

	return v
}

func (r *Controller) dispatch(ev Event) {
	r.mutex.RLock()
	listener := r.listener
	r.mutex.RUnlock()

	if listener == nil {
		logger.Debugf("no event listener: dropping %v event", ev.Type)
		return
	}

	var err error
	switch ev.Type {
	case EventDeviceUp:
		err = listener.OnDeviceUp(ev.Datapath)
	case EventDeviceDown:
		err = listener.OnDeviceDown(ev.Datapath)
	case EventPacketIn:
		err = listener.OnPacketIn(ev.Datapath, ev.PacketIn)
	case EventPortStats:
		err = listener.OnPortStats(ev.Datapath, ev.PortStats)
	default:
		panic(fmt.Sprintf("unexpected event type: %v", ev.Type))
	}
	// Application errors never drop the switch connection.
	if err != nil {
		logger.Errorf("%v (DPID=%v): %v", ev.Type, ev.Datapath.ID(), err)
	}
}

func (r *Controller) String() string {
	devices := r.Devices()

	v := fmt.Sprintf("Connected devices: %v\n", len(devices))
	for _, d := range devices {
		v += fmt.Sprintf("\t%v\n", d.String())
	}

	return v
}
