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

package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("monitor")
)

// Monitor keeps the switch registry up to date and runs the port stats poller over it.
type Monitor struct {
	app.BaseProcessor
	registry *Registry
	poller   *Poller
}

func New(interval time.Duration, m *metrics.Metrics) *Monitor {
	registry := NewRegistry(m)

	return &Monitor{
		registry: registry,
		poller:   NewPoller(registry, interval),
	}
}

func (r *Monitor) Name() string {
	return "Monitor"
}

func (r *Monitor) String() string {
	return fmt.Sprintf("%v: %v registered switches", r.Name(), r.registry.Len())
}

func (r *Monitor) Registry() *Registry {
	return r.registry
}

// Run runs the poller until ctx is cancelled.
func (r *Monitor) Run(ctx context.Context) error {
	return r.poller.Run(ctx)
}

func (r *Monitor) OnDeviceUp(dp network.Datapath) error {
	r.registry.Register(dp)
	logger.Warningf("switch device up: DPID=%v", dp.ID())

	return r.BaseProcessor.OnDeviceUp(dp)
}

func (r *Monitor) OnDeviceDown(dp network.Datapath) error {
	r.registry.Unregister(dp)
	logger.Warningf("switch device down: DPID=%v", dp.ID())

	return r.BaseProcessor.OnDeviceDown(dp)
}
