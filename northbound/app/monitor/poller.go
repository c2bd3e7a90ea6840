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
	"time"
)

// Poller periodically asks every registered switch for its port counters.
// Replies arrive as independent events; nothing waits for them.
type Poller struct {
	registry *Registry
	interval time.Duration
}

func NewPoller(registry *Registry, interval time.Duration) *Poller {
	if registry == nil {
		panic("nil registry")
	}
	if interval <= 0 {
		panic("non-positive poll interval")
	}

	return &Poller{
		registry: registry,
		interval: interval,
	}
}

// Run polls until ctx is cancelled.
func (r *Poller) Run(ctx context.Context) error {
	logger.Infof("port stats poller started (interval=%v)", r.interval)
	defer logger.Info("port stats poller stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.poll()
		}
	}
}

func (r *Poller) poll() {
	for _, dp := range r.registry.Datapaths() {
		if err := dp.RequestPortStats(); err != nil {
			logger.Errorf("failed to request port stats from %v: %v", dp.ID(), err)
			continue
		}
		logger.Debugf("requested port stats from %v", dp.ID())
	}
}
