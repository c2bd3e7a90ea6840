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

package openflow

// Echo is the body shared by ECHO_REQUEST and ECHO_REPLY.
type Echo struct {
	Message
	data []byte
}

func NewEcho(msgType uint8, xid uint32) *Echo {
	return &Echo{
		Message: NewMessage(OF13_VERSION, msgType, xid),
	}
}

func (r *Echo) Data() []byte {
	return r.data
}

func (r *Echo) SetData(data []byte) {
	if data == nil {
		panic("data is nil")
	}
	r.data = data
}

func (r *Echo) MarshalBinary() ([]byte, error) {
	r.SetPayload(r.data)
	return r.Message.MarshalBinary()
}

func (r *Echo) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}
	r.data = r.Payload()

	return nil
}
