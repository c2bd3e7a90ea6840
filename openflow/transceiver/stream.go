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

package transceiver

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/openflow"
)

// Stream is a buffered OpenFlow channel that reads and writes whole messages.
type Stream struct {
	channel io.ReadWriteCloser

	reader struct {
		mutex   sync.Mutex
		rd      *bufio.Reader
		timeout time.Duration
	}

	writer struct {
		mutex   sync.Mutex
		timeout time.Duration
	}
}

type deadline interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// MaxMessageSize is the largest message the 16-bit ofp_header length can describe.
const MaxMessageSize = 0xFFFF

// NewStream wraps channel, usually a net.Conn to a switch.
func NewStream(channel io.ReadWriteCloser) *Stream {
	c := new(Stream)
	c.channel = channel
	c.reader.rd = bufio.NewReaderSize(channel, MaxMessageSize)

	return c
}

func (r *Stream) SetReadTimeout(t time.Duration) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	r.reader.timeout = t
}

func (r *Stream) SetWriteTimeout(t time.Duration) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	r.writer.timeout = t
}

// ReadMessage reads exactly one OpenFlow message. The returned slice is owned by the caller.
func (r *Stream) ReadMessage() ([]byte, error) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	if d, ok := r.channel.(deadline); ok {
		if r.reader.timeout > 0 {
			d.SetReadDeadline(time.Now().Add(r.reader.timeout))
		} else {
			d.SetReadDeadline(time.Time{})
		}
	}

	// Wait until we have the whole ofp_header in the reader or timeout.
	header, err := r.reader.rd.Peek(8)
	if err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(header[2:4]))
	if length < 8 {
		return nil, openflow.ErrInvalidPacketLength
	}
	// Peek the whole message first so that a timeout never leaves a half-read
	// message behind.
	if _, err := r.reader.rd.Peek(length); err != nil {
		return nil, err
	}

	packet := make([]byte, length)
	if _, err := io.ReadFull(r.reader.rd, packet); err != nil {
		return nil, err
	}

	return packet, nil
}

// Write sends p as a single write on the underlying channel.
func (r *Stream) Write(p []byte) (n int, err error) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	if d, ok := r.channel.(deadline); ok {
		if r.writer.timeout > 0 {
			d.SetWriteDeadline(time.Now().Add(r.writer.timeout))
		} else {
			d.SetWriteDeadline(time.Time{})
		}
	}

	return r.channel.Write(p)
}

func (r *Stream) Close() error {
	return r.channel.Close()
}
