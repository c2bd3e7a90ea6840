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

package northbound

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/l2switch"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/mitigation"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/monitor"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("northbound")
)

type EventSender interface {
	SetEventListener(network.EventListener)
}

type Config struct {
	L2Switch     l2switch.Config
	Mitigation   mitigation.Config
	PollInterval time.Duration
}

type application struct {
	instance app.Processor
	enabled  bool
}

type Manager struct {
	mutex      sync.Mutex
	apps       map[string]*application // Registered applications
	head, tail app.Processor

	monitor    *monitor.Monitor
	mitigation *mitigation.Mitigation
	l2switch   *l2switch.L2Switch
}

func NewManager(c Config, m *metrics.Metrics) *Manager {
	if m == nil {
		panic("nil metrics")
	}

	v := &Manager{
		apps: make(map[string]*application),
	}
	v.monitor = monitor.New(c.PollInterval, m)
	v.mitigation = mitigation.New(c.Mitigation, v.monitor.Registry(), m)
	v.l2switch = l2switch.New(c.L2Switch, v.mitigation, m)

	// Registering north-bound applications
	v.register(v.monitor)
	v.register(v.mitigation)
	v.register(v.l2switch)

	return v
}

func (r *Manager) register(app app.Processor) {
	r.apps[strings.ToUpper(app.Name())] = &application{
		instance: app,
		enabled:  false,
	}
}

// XXX: Caller should lock the mutex before they call this function
func (r *Manager) checkDependencies(appNames []string) error {
	for _, name := range appNames {
		app, ok := r.apps[strings.ToUpper(name)]
		logger.Debugf("app: %+v, ok: %v", app, ok)
		if !ok || !app.enabled {
			return fmt.Errorf("%v application is not loaded", name)
		}
	}

	return nil
}

// Enable appends the application to the event chain. Applications receive
// events in the order they are enabled.
func (r *Manager) Enable(appName string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	logger.Debugf("enabling %v application..", appName)
	v, ok := r.apps[strings.ToUpper(appName)]
	if !ok {
		return fmt.Errorf("unknown application: %v", appName)
	}
	if v.enabled {
		return fmt.Errorf("already enabled application: %v", appName)
	}
	app := v.instance

	if err := app.Init(); err != nil {
		return errors.Wrap(err, "initializing application")
	}
	if err := r.checkDependencies(app.Dependencies()); err != nil {
		return errors.Wrap(err, "checking dependencies")
	}
	v.enabled = true
	logger.Infof("enabled %v application", app.Name())

	if r.head == nil {
		r.head = app
		r.tail = app
		return nil
	}
	r.tail.SetNext(app)
	r.tail = app

	return nil
}

func (r *Manager) AddEventSender(sender EventSender) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.head == nil {
		return
	}
	sender.SetEventListener(r.head)
}

// Run runs the background jobs of the applications until ctx is cancelled.
func (r *Manager) Run(ctx context.Context) error {
	return r.monitor.Run(ctx)
}

func (r *Manager) String() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var buf bytes.Buffer
	app := r.head
	for app != nil {
		buf.WriteString(fmt.Sprintf("%v\n", app))
		next, ok := app.Next()
		if !ok {
			break
		}
		app = next
	}

	return buf.String()
}

// Switches returns the DPIDs of the registered switches.
func (r *Manager) Switches() []uint64 {
	dps := r.monitor.Registry().Datapaths()
	v := make([]uint64, 0, len(dps))
	for _, dp := range dps {
		v = append(v, dp.ID())
	}

	return v
}

func (r *Manager) Threshold() float64 {
	return r.mitigation.Threshold()
}

func (r *Manager) Alarms() []mitigation.Alarm {
	return r.mitigation.Alarms()
}

func (r *Manager) Unblock(dpid uint64, port uint32) (bool, error) {
	return r.mitigation.Unblock(dpid, port)
}

func (r *Manager) Entries(dpid uint64) []l2switch.Entry {
	return r.l2switch.Entries(dpid)
}

func (r *Manager) Relearn(dpid uint64, mac net.HardwareAddr) bool {
	return r.l2switch.Relearn(dpid, mac)
}
