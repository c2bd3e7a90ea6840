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

package mitigation

import (
	"strings"
	"testing"

	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/network/networktest"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registry map[uint64]network.Datapath

func (r registry) Datapath(dpid uint64) (network.Datapath, bool) {
	v, ok := r[dpid]
	return v, ok
}

func newTestMitigation(dps ...*networktest.Datapath) (*Mitigation, *metrics.Metrics) {
	reg := make(registry)
	for _, dp := range dps {
		reg[dp.ID()] = dp
	}
	m := metrics.New(prometheus.NewRegistry())

	return New(Config{Threshold: 1000, Interval: 1, Patience: 5}, reg, m), m
}

func feed(t *testing.T, m *Mitigation, dp network.Datapath, port uint32, rxBytes uint64) {
	t.Helper()
	require.NoError(t, m.OnPortStats(dp, []network.PortCounter{{Port: port, RxBytes: rxBytes}}))
}

func state(m *Mitigation, dpid uint64, port uint32) AlarmState {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return *m.ports.alarm(portKey{dpid: dpid, port: port})
}

var dropRule = network.Rule{
	Priority: BlockPriority,
	Match:    network.Match{InPort: 1},
	BufferID: network.NoBuffer,
}

func TestThroughput(t *testing.T) {
	table := newPortTable()
	key := portKey{dpid: 1, port: 1}

	assert.Equal(t, float64(1000), table.throughput(key, 1000, 1))
	assert.Equal(t, float64(500), table.throughput(key, 1500, 1))
	// Counter reset on the switch.
	assert.Equal(t, float64(0), table.throughput(key, 800, 1))
	assert.Equal(t, float64(100), table.throughput(key, 1000, 2))
}

func TestBlockAndUnblock(t *testing.T) {
	dp := networktest.New(1)
	m, mt := newTestMitigation(dp)

	feed(t, m, dp, 1, 0)
	assert.Empty(t, dp.Rules())
	assert.False(t, state(m, 1, 1).Alarmed)

	// First over-threshold sample blocks the port.
	feed(t, m, dp, 1, 5000)
	if diff := cmp.Diff([]network.Rule{dropRule}, dp.Rules()); diff != "" {
		t.Errorf("unexpected drop rule (-want +got):\n%s", diff)
	}
	assert.True(t, m.IsBlocked(1, 1))
	assert.Equal(t, AlarmState{Alarmed: true}, state(m, 1, 1))

	for i := uint(1); i < 5; i++ {
		feed(t, m, dp, 1, 5000)
		assert.Equal(t, AlarmState{Alarmed: true, Counter: i}, state(m, 1, 1))
		assert.Empty(t, dp.Deletions())
		assert.True(t, m.IsBlocked(1, 1))
	}

	// The fifth quiet sample unblocks.
	feed(t, m, dp, 1, 5000)
	expected := []networktest.Deletion{{Priority: BlockPriority, Match: network.Match{InPort: 1}}}
	if diff := cmp.Diff(expected, dp.Deletions()); diff != "" {
		t.Errorf("unexpected deletion (-want +got):\n%s", diff)
	}
	assert.False(t, m.IsBlocked(1, 1))
	assert.Equal(t, AlarmState{}, state(m, 1, 1))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Block))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Unblock))
	assert.Equal(t, float64(0), testutil.ToFloat64(mt.BlockedPorts))

	// Quiet samples on a cleared port do nothing.
	feed(t, m, dp, 1, 5000)
	assert.Len(t, dp.Deletions(), 1)
	assert.Equal(t, AlarmState{}, state(m, 1, 1))
}

func TestThresholdBoundary(t *testing.T) {
	dp := networktest.New(1)
	m, _ := newTestMitigation(dp)

	// Throughput equal to the threshold is not over it.
	feed(t, m, dp, 1, 1000)
	assert.Empty(t, dp.Rules())
	assert.False(t, m.IsBlocked(1, 1))
	assert.Equal(t, AlarmState{}, state(m, 1, 1))

	feed(t, m, dp, 1, 6000)
	require.True(t, m.IsBlocked(1, 1))
	require.Len(t, dp.Rules(), 1)

	// Samples at the threshold count toward the unblock.
	rx := uint64(6000)
	for i := uint(1); i < 5; i++ {
		rx += 1000
		feed(t, m, dp, 1, rx)
		assert.Equal(t, AlarmState{Alarmed: true, Counter: i}, state(m, 1, 1))
	}
	rx += 1000
	feed(t, m, dp, 1, rx)
	assert.Len(t, dp.Rules(), 1)
	assert.Len(t, dp.Deletions(), 1)
	assert.False(t, m.IsBlocked(1, 1))
	assert.Equal(t, AlarmState{}, state(m, 1, 1))
}

func TestCountdownReset(t *testing.T) {
	dp := networktest.New(1)
	m, _ := newTestMitigation(dp)

	feed(t, m, dp, 1, 5000)
	feed(t, m, dp, 1, 5000)
	feed(t, m, dp, 1, 5000)
	feed(t, m, dp, 1, 5000)
	assert.Equal(t, AlarmState{Alarmed: true, Counter: 3}, state(m, 1, 1))

	feed(t, m, dp, 1, 10000)
	assert.Equal(t, AlarmState{Alarmed: true}, state(m, 1, 1))

	for i := 0; i < 4; i++ {
		feed(t, m, dp, 1, 10000)
	}
	assert.Empty(t, dp.Deletions())
	feed(t, m, dp, 1, 10000)
	assert.Len(t, dp.Deletions(), 1)
}

func TestRepeatedOverThreshold(t *testing.T) {
	dp := networktest.New(1)
	m, mt := newTestMitigation(dp)

	rx := uint64(0)
	for i := 0; i < 4; i++ {
		rx += 5000
		feed(t, m, dp, 1, rx)
		assert.Equal(t, AlarmState{Alarmed: true}, state(m, 1, 1))
	}

	rules := dp.Rules()
	require.Len(t, rules, 4)
	for _, rule := range rules {
		assert.Equal(t, dropRule, rule)
	}
	assert.Empty(t, dp.Deletions())
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Block))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.BlockedPorts))
}

func TestUnregisteredSwitch(t *testing.T) {
	registered := networktest.New(1)
	stranger := networktest.New(2)
	m, _ := newTestMitigation(registered)

	feed(t, m, stranger, 1, 5000)
	assert.Empty(t, stranger.Rules())
	assert.False(t, m.IsBlocked(2, 1))
	assert.Empty(t, m.Alarms())
}

func TestPortsInOrder(t *testing.T) {
	dp := networktest.New(1)
	m, _ := newTestMitigation(dp)

	stats := []network.PortCounter{{Port: 3, RxBytes: 5000}, {Port: 1, RxBytes: 5000}, {Port: 2, RxBytes: 5000}}
	require.NoError(t, m.OnPortStats(dp, stats))

	var ports []uint32
	for _, rule := range dp.Rules() {
		ports = append(ports, rule.Match.InPort)
	}
	assert.Equal(t, []uint32{1, 2, 3}, ports)
	assert.Equal(t, []uint32{1, 2, 3}, m.blocked.Ports(1))
}

func TestFailedBlock(t *testing.T) {
	dp := networktest.New(1)
	dp.Err = assert.AnError
	m, _ := newTestMitigation(dp)

	require.Error(t, m.OnPortStats(dp, []network.PortCounter{{Port: 1, RxBytes: 5000}}))
	assert.False(t, m.IsBlocked(1, 1))
	assert.False(t, state(m, 1, 1).Alarmed)
}

type statsRecorder struct {
	app.BaseProcessor
	stats [][]network.PortCounter
}

func (r *statsRecorder) OnPortStats(dp network.Datapath, stats []network.PortCounter) error {
	r.stats = append(r.stats, stats)
	return nil
}

func TestFailedBlockForwardsStats(t *testing.T) {
	dp := networktest.New(1)
	dp.Err = assert.AnError
	m, _ := newTestMitigation(dp)
	next := new(statsRecorder)
	m.SetNext(next)

	stats := []network.PortCounter{{Port: 2, RxBytes: 10}, {Port: 1, RxBytes: 5000}}
	err := m.OnPortStats(dp, stats)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	// The next processor still sees the whole reply.
	require.Len(t, next.stats, 1)
	assert.Equal(t, stats, next.stats[0])
}

func TestOperatorUnblock(t *testing.T) {
	dp := networktest.New(1)
	m, _ := newTestMitigation(dp)

	ok, err := m.Unblock(1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	feed(t, m, dp, 1, 5000)
	ok, err = m.Unblock(1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, m.IsBlocked(1, 1))
	assert.Len(t, dp.Deletions(), 1)

	_, err = m.Unblock(9, 1)
	require.Error(t, err)
}

func TestAlarms(t *testing.T) {
	dp := networktest.New(1)
	m, _ := newTestMitigation(dp)

	require.NoError(t, m.OnPortStats(dp, []network.PortCounter{{Port: 2, RxBytes: 10}, {Port: 1, RxBytes: 5000}}))
	expected := []Alarm{
		{DPID: 1, Port: 1, Alarmed: true, Blocked: true},
		{DPID: 1, Port: 2},
	}
	assert.Equal(t, expected, m.Alarms())
}

func TestRenderCounters(t *testing.T) {
	stats := []network.PortCounter{{Port: 1, RxPackets: 10, RxBytes: 1500, TxPackets: 5, TxBytes: 700}}
	v := renderCounters(1, stats, []float64{500})

	assert.True(t, strings.Contains(v, "THROUGHPUT"))
	assert.True(t, strings.Contains(v, "1500"))
	assert.True(t, strings.Contains(v, "500.00"))
}
