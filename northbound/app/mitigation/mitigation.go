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

// Package mitigation blocks switch ports whose received throughput exceeds a
// threshold and unblocks them after a number of consecutive quiet samples.
package mitigation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app"

	"github.com/olekukonko/tablewriter"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("mitigation")
)

// Priority of the drop rules. It is above every forwarding rule.
const BlockPriority = 1000

type Config struct {
	// Threshold in bytes per Interval.
	Threshold float64
	// Divisor of the received-byte delta. 1 means bytes per sample.
	Interval float64
	// Consecutive under-threshold samples needed to unblock a port.
	Patience uint
}

// Registry knows the switches that are currently connected.
type Registry interface {
	Datapath(dpid uint64) (network.Datapath, bool)
}

type Mitigation struct {
	app.BaseProcessor
	conf     Config
	registry Registry
	blocked  *BlockedPortSet
	metrics  *metrics.Metrics

	// The mutex is held across a decision and its rule command so that the
	// commands of a switch are issued in decision order.
	mutex sync.Mutex
	ports *portTable
}

func New(conf Config, registry Registry, m *metrics.Metrics) *Mitigation {
	if registry == nil {
		panic("nil registry")
	}
	if m == nil {
		panic("nil metrics")
	}
	if conf.Interval <= 0 {
		panic("non-positive interval")
	}
	if conf.Patience == 0 {
		panic("zero patience")
	}

	return &Mitigation{
		conf:     conf,
		registry: registry,
		blocked:  NewBlockedPortSet(),
		metrics:  m,
		ports:    newPortTable(),
	}
}

func (r *Mitigation) Name() string {
	return "Mitigation"
}

func (r *Mitigation) Dependencies() []string {
	return []string{"Monitor"}
}

func (r *Mitigation) String() string {
	return fmt.Sprintf("%v: threshold=%v, blocked ports=%v", r.Name(), r.conf.Threshold, r.blocked.Len())
}

func (r *Mitigation) Threshold() float64 {
	return r.conf.Threshold
}

func (r *Mitigation) IsBlocked(dpid uint64, port uint32) bool {
	return r.blocked.Contains(dpid, port)
}

func (r *Mitigation) Alarms() []Alarm {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := r.ports.list()
	for i := range v {
		v[i].Blocked = r.blocked.Contains(v[i].DPID, v[i].Port)
	}

	return v
}

func (r *Mitigation) OnPortStats(dp network.Datapath, stats []network.PortCounter) error {
	dpid := dp.ID()
	if _, ok := r.registry.Datapath(dpid); !ok {
		logger.Debugf("dropping port stats of the unregistered switch %v", dpid)
		return nil
	}

	mitigateErr := r.mitigate(dp, stats)
	// A failed rule command is confined to its port; the next processors still get the reply.
	if err := r.BaseProcessor.OnPortStats(dp, stats); err != nil {
		return err
	}

	return mitigateErr
}

// mitigate evaluates every port of stats in ascending port order and returns
// the last rule command error.
func (r *Mitigation) mitigate(dp network.Datapath, stats []network.PortCounter) error {
	dpid := dp.ID()
	sorted := make([]network.PortCounter, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Port < sorted[j].Port })

	r.mutex.Lock()
	defer r.mutex.Unlock()

	throughputs := make([]float64, len(sorted))
	var lastErr error
	for i, s := range sorted {
		key := portKey{dpid: dpid, port: s.Port}
		throughputs[i] = r.ports.throughput(key, s.RxBytes, r.conf.Interval)
		r.metrics.PortThroughput.WithLabelValues(strconv.FormatUint(dpid, 10), strconv.FormatUint(uint64(s.Port), 10)).Set(throughputs[i])

		if err := r.decide(dp, key, throughputs[i]); err != nil {
			logger.Errorf("failed to mitigate port %v of %v: %v", s.Port, dpid, err)
			lastErr = err
		}
	}
	logger.Info(renderCounters(dpid, sorted, throughputs))

	return lastErr
}

// XXX: Caller should lock the mutex before they call this function
func (r *Mitigation) decide(dp network.Datapath, key portKey, throughput float64) error {
	state := r.ports.alarm(key)

	if throughput > r.conf.Threshold {
		if state.Alarmed {
			// Restart the countdown and re-assert the same drop rule.
			state.Counter = 0
			logger.Debugf("port %v of %v is still over the threshold: %v", key.port, key.dpid, throughput)
			return r.block(dp, key.port)
		}
		if err := r.block(dp, key.port); err != nil {
			return err
		}
		state.Alarmed = true
		state.Counter = 0
		r.metrics.Block.Inc()
		logger.Warningf("blocked port %v of %v: throughput %v exceeds the threshold %v", key.port, key.dpid, throughput, r.conf.Threshold)

		return nil
	}

	if !state.Alarmed {
		return nil
	}
	state.Counter++
	logger.Debugf("port %v of %v is under the threshold: %v/%v", key.port, key.dpid, state.Counter, r.conf.Patience)
	if state.Counter < r.conf.Patience {
		return nil
	}
	// A failed unblock is retried on the next sample.
	if err := r.unblock(dp, key.port); err != nil {
		return err
	}
	state.Alarmed = false
	state.Counter = 0
	logger.Warningf("unblocked port %v of %v", key.port, key.dpid)

	return nil
}

func dropMatch(port uint32) network.Match {
	return network.Match{InPort: port}
}

// XXX: Caller should lock the mutex before they call this function
func (r *Mitigation) block(dp network.Datapath, port uint32) error {
	drop := network.Rule{
		Priority: BlockPriority,
		Match:    dropMatch(port),
		BufferID: network.NoBuffer,
	}
	if err := dp.InstallRule(drop); err != nil {
		return errors.Wrap(err, "installing the drop rule")
	}
	r.blocked.Add(dp.ID(), port)
	r.metrics.BlockedPorts.Set(float64(r.blocked.Len()))

	return nil
}

// XXX: Caller should lock the mutex before they call this function
func (r *Mitigation) unblock(dp network.Datapath, port uint32) error {
	if err := dp.DeleteRule(BlockPriority, dropMatch(port)); err != nil {
		return errors.Wrap(err, "deleting the drop rule")
	}
	r.blocked.Remove(dp.ID(), port)
	r.metrics.BlockedPorts.Set(float64(r.blocked.Len()))
	r.metrics.Unblock.Inc()

	return nil
}

// Unblock clears the alarm of a port and removes its drop rule immediately.
// It returns false if the port is not alarmed.
func (r *Mitigation) Unblock(dpid uint64, port uint32) (ok bool, err error) {
	dp, registered := r.registry.Datapath(dpid)
	if !registered {
		return false, errors.New(fmt.Sprintf("unknown switch: %v", dpid))
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := portKey{dpid: dpid, port: port}
	state, found := r.ports.alarms[key]
	if !found || !state.Alarmed {
		return false, nil
	}
	if err := r.unblock(dp, port); err != nil {
		return false, err
	}
	state.Alarmed = false
	state.Counter = 0
	logger.Warningf("unblocked port %v of %v by the operator", port, dpid)

	return true, nil
}

func renderCounters(dpid uint64, stats []network.PortCounter, throughputs []float64) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("port statistics of %v:\n", dpid))

	table := tablewriter.NewWriter(&buf)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"DPID", "PORT", "RX-PKTS", "RX-BYTES", "RX-ERROR", "TX-PKTS", "TX-BYTES", "TX-ERROR", "THROUGHPUT"})
	for i, s := range stats {
		table.Append([]string{
			strconv.FormatUint(dpid, 10),
			strconv.FormatUint(uint64(s.Port), 10),
			strconv.FormatUint(s.RxPackets, 10),
			strconv.FormatUint(s.RxBytes, 10),
			strconv.FormatUint(s.RxErrors, 10),
			strconv.FormatUint(s.TxPackets, 10),
			strconv.FormatUint(s.TxBytes, 10),
			strconv.FormatUint(s.TxErrors, 10),
			strconv.FormatFloat(throughputs[i], 'f', 2, 64),
		})
	}
	table.Render()

	return buf.String()
}
