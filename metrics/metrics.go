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

// Package metrics holds the Prometheus collectors of the controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "sdnfw"

type Metrics struct {
	PacketIn           prometheus.Counter
	SpoofingDetected   prometheus.Counter
	Flood              prometheus.Counter
	PortThroughput     *prometheus.GaugeVec
	BlockedPorts       prometheus.Gauge
	Block              prometheus.Counter
	Unblock            prometheus.Counter
	RegisteredSwitches prometheus.Gauge
}

// New creates the collectors and registers them to reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		PacketIn: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "packet_in_total",
			Help:      "Number of PACKET_IN events handled by the learning switch.",
		}),
		SpoofingDetected: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "spoofing_detected_total",
			Help:      "Number of frames dropped because their source address moved to another port.",
		}),
		Flood: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "flood_total",
			Help:      "Number of frames flooded to an unknown destination.",
		}),
		PortThroughput: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "port_throughput",
			Help:      "Received bytes per sampling interval of a switch port.",
		}, []string{"dpid", "port"}),
		BlockedPorts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "blocked_ports",
			Help:      "Number of ports currently blocked by a drop rule.",
		}),
		Block: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "block_total",
			Help:      "Number of port block transitions.",
		}),
		Unblock: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "unblock_total",
			Help:      "Number of port unblock transitions.",
		}),
		RegisteredSwitches: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "registered_switches",
			Help:      "Number of switches in the registry.",
		}),
	}
}
