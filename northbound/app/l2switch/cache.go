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

package l2switch

import (
	"fmt"
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// An identical flow installed within this window is not installed again.
const flowCacheExpiration = 5 * time.Second

type flowKey struct {
	dpid    uint64
	inPort  uint32
	srcMAC  string
	dstMAC  string
	outPort uint32
}

func newFlowKey(dpid uint64, inPort uint32, src, dst net.HardwareAddr, outPort uint32) flowKey {
	return flowKey{
		dpid:    dpid,
		inPort:  inPort,
		srcMAC:  src.String(),
		dstMAC:  dst.String(),
		outPort: outPort,
	}
}

type flowCache struct {
	cache *lru.Cache[flowKey, time.Time]
	// For testing.
	now func() time.Time
}

func newFlowCache() *flowCache {
	c, err := lru.New[flowKey, time.Time](8192)
	if err != nil {
		panic(fmt.Sprintf("LRU flow cache: %v", err))
	}

	return &flowCache{
		cache: c,
		now:   time.Now,
	}
}

func (r *flowCache) exist(key flowKey) bool {
	v, ok := r.cache.Get(key)
	if !ok {
		return false
	}
	// Timeout?
	if r.now().Sub(v) > flowCacheExpiration {
		r.cache.Remove(key)
		return false
	}

	return true
}

func (r *flowCache) add(key flowKey) {
	// Update if the key already exists
	r.cache.Add(key, r.now())
}
