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
	"context"
	"encoding"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/openflow"
	"github.com/flaviopalomba02/SDN-Firewall/openflow/of13"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("transceiver")
)

const (
	// Allowed idle time before we send an echo request to a switch.
	maxIdleTime = 10 * time.Second
	// I/O timeouts (These timeouts should be less than maxIdleTime).
	readTimeout  = 1 * time.Second
	writeTimeout = readTimeout * 2
	// Time limit for the switch to say HELLO.
	negotiationTimeout = 30 * time.Second
)

type Writer interface {
	Write(msg encoding.BinaryMarshaler) error
	// NextTransactionID returns a transaction ID for a new outgoing message.
	NextTransactionID() uint32
}

// Handler receives the decoded messages of a negotiated session. The connection
// is closed if a handler function returns an error.
type Handler interface {
	OnHello(Writer, *of13.Hello) error
	OnError(Writer, *of13.Error) error
	OnFeaturesReply(Writer, *of13.FeaturesReply) error
	OnPortStatsReply(Writer, *of13.PortStatsReply) error
	OnPacketIn(Writer, *of13.PacketIn) error
}

type Transceiver struct {
	stream      *Stream
	observer    Handler
	xid         uint32
	pingCounter uint
}

func NewTransceiver(stream *Stream, handler Handler) *Transceiver {
	if stream == nil {
		panic("stream is nil")
	}
	if handler == nil {
		panic("handler is nil")
	}

	return &Transceiver{
		stream:   stream,
		observer: handler,
	}
}

func (r *Transceiver) NextTransactionID() uint32 {
	return atomic.AddUint32(&r.xid, 1)
}

func isTimeout(err error) bool {
	v, ok := errors.Cause(err).(net.Error)
	return ok && v.Timeout()
}

// Run serves the session until ctx is done or the connection is broken.
func (r *Transceiver) Run(ctx context.Context) error {
	defer logger.Info("transceiver is closed")
	r.stream.SetReadTimeout(readTimeout)
	r.stream.SetWriteTimeout(writeTimeout)

	if err := r.Write(of13.NewHello(r.NextTransactionID())); err != nil {
		return errors.Wrap(err, "failed to send HELLO message")
	}

	readerCtx, cancelReader := context.WithCancel(ctx)
	defer cancelReader()
	reader := r.runReader(readerCtx)

	// Negotiate the protocol version
	packet, err := r.negotiate(ctx, reader)
	if err != nil {
		return errors.Wrap(err, "failed to negotiate the protocol version")
	}

	// Infinite loop
	for {
		// Dispatch the incoming packet
		if err := r.dispatch(packet); err != nil {
			return err
		}

		// Read the next packet
		var ok bool
		select {
		case <-ctx.Done():
			logger.Info("context done")
			return nil
		case packet, ok = <-reader:
			if !ok {
				logger.Info("the reader channel is closed")
				return nil
			}
		}
	}
}

func (r *Transceiver) negotiate(ctx context.Context, reader <-chan []byte) (packet []byte, err error) {
	select {
	case <-ctx.Done():
		return nil, errors.New("context done")
	case <-time.After(negotiationTimeout):
		return nil, errors.New("inactive for too long")
	case packet, ok := <-reader:
		if !ok {
			return nil, errors.New("the reader channel is closed")
		}
		// The first message should be HELLO.
		if packet[1] != of13.OFPT_HELLO {
			return nil, errors.New("missing HELLO message")
		}
		// We only speak OpenFlow 1.3, which the switch must support.
		if packet[0] < openflow.OF13_VERSION {
			return nil, errors.Wrap(openflow.ErrUnsupportedVersion, fmt.Sprintf("switch version %v", packet[0]))
		}
		logger.Info("negotiated to openflow version 1.3")
		// Dispatch the HELLO with our version; the switch version may be higher.
		packet[0] = openflow.OF13_VERSION

		return packet, nil
	}
}

func (r *Transceiver) runReader(ctx context.Context) <-chan []byte {
	// Buffered channel
	c := make(chan []byte, 4096)
	go func() {
		// The channel c will be closed when this goroutine returns in order to notice the connection has been closed.
		defer close(c)
		defer logger.Info("transceiver reader is closed")

		lastActivated := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			packet, err := r.stream.ReadMessage()
			if err != nil {
				if !isTimeout(err) {
					logger.Errorf("failed to read the next packet: %v", err)
					return
				}
				// Timeout occurrs. Send a ping request if necessary.
				if time.Since(lastActivated) > maxIdleTime {
					if err := r.sendEchoRequest(); err != nil {
						logger.Errorf("failed to send an echo request: %v", err)
						return
					}
					lastActivated = time.Now()
				}
				continue
			}
			lastActivated = time.Now()

			ok, err := r.handleEcho(packet)
			if err != nil {
				logger.Errorf("failed to handle the echo request or response: %v", err)
				return
			}
			if ok {
				// Do not forward the echo request and response
				// packets because this reader handles them.
				continue
			}

			select {
			case c <- packet:
			case <-ctx.Done():
				return
			}
		}
	}()

	return c
}

func (r *Transceiver) sendEchoRequest() error {
	if r.pingCounter > 2 {
		return errors.New("device does not respond to our echo request")
	}

	echo := of13.NewEchoRequest(r.NextTransactionID())
	// We use current timestamp to check network latency between our controller and a switch.
	timestamp, err := time.Now().GobEncode()
	if err != nil {
		return err
	}
	echo.SetData(timestamp)

	if err := r.Write(echo); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REQUEST message")
	}
	r.pingCounter++

	return nil
}

func (r *Transceiver) handleEcho(packet []byte) (handled bool, err error) {
	switch packet[1] {
	case of13.OFPT_ECHO_REQUEST:
		return true, r.handleEchoRequest(packet)
	case of13.OFPT_ECHO_REPLY:
		return true, r.handleEchoReply(packet)
	default:
		// Do not anything for other types of the message
		return false, nil
	}
}

func (r *Transceiver) handleEchoRequest(packet []byte) error {
	msg := of13.NewEchoRequest(0)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	logger.Debug("received an ECHO_REQUEST packet")

	// Copy transaction ID and data from the incoming echo request message
	reply := of13.NewEchoReply(msg.TransactionID())
	reply.SetData(msg.Data())

	if err := r.Write(reply); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REPLY message")
	}

	return nil
}

func (r *Transceiver) handleEchoReply(packet []byte) error {
	msg := of13.NewEchoReply(0)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	// Any reply proves the switch is alive.
	r.pingCounter = 0

	timestamp := time.Time{}
	if err := timestamp.GobDecode(msg.Data()); err != nil {
		// I notice some broken switch sends an unexpected echo reply data.
		// So, ignores the soft error to avoid switch disconnection.
		logger.Debug("unexpected timestamp data in the ECHO_REPLY packet")
		return nil
	}
	logger.Debugf("transceiver latency: %v", time.Since(timestamp))

	return nil
}

func (r *Transceiver) dispatch(packet []byte) error {
	if packet[0] != openflow.OF13_VERSION {
		return fmt.Errorf("mis-matched OpenFlow version: negotiated=%v, packet=%v", openflow.OF13_VERSION, packet[0])
	}

	var err error
	switch packet[1] {
	case of13.OFPT_HELLO:
		msg := new(of13.Hello)
		if err = msg.UnmarshalBinary(packet); err == nil {
			return r.observer.OnHello(r, msg)
		}
	case of13.OFPT_ERROR:
		msg := new(of13.Error)
		if err = msg.UnmarshalBinary(packet); err == nil {
			return r.observer.OnError(r, msg)
		}
	case of13.OFPT_FEATURES_REPLY:
		msg := new(of13.FeaturesReply)
		if err = msg.UnmarshalBinary(packet); err == nil {
			return r.observer.OnFeaturesReply(r, msg)
		}
	case of13.OFPT_MULTIPART_REPLY:
		t, e := of13.MultipartType(packet)
		if e != nil || t != of13.OFPMP_PORT_STATS {
			// Unsupported message. Do nothing.
			return nil
		}
		msg := new(of13.PortStatsReply)
		if err = msg.UnmarshalBinary(packet); err == nil {
			return r.observer.OnPortStatsReply(r, msg)
		}
	case of13.OFPT_PACKET_IN:
		msg := new(of13.PacketIn)
		if err = msg.UnmarshalBinary(packet); err == nil {
			return r.observer.OnPacketIn(r, msg)
		}
	default:
		// Unsupported message. Do nothing.
		return nil
	}

	// A malformed message body does not break the framing, so keep the session.
	logger.Errorf("failed to decode a message (type=%v): %v", packet[1], err)
	return nil
}

func (r *Transceiver) Write(msg encoding.BinaryMarshaler) error {
	packet, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := r.stream.Write(packet); err != nil {
		return err
	}

	return nil
}

func (r *Transceiver) Close() error {
	return r.stream.Close()
}
