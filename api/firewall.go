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

package api

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/l2switch"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/mitigation"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
)

func (r *Server) listSwitch(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("listSwitch request from %v", req.RemoteAddr)

	w.WriteJson(&Response{
		Status: StatusOkay,
		Data: struct {
			Switches []uint64 `json:"switches"`
		}{
			Switches: r.Controller.Switches(),
		},
	})
}

func (r *Server) threshold(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("threshold request from %v", req.RemoteAddr)

	w.WriteJson(&Response{
		Status: StatusOkay,
		Data: struct {
			Threshold float64 `json:"threshold"`
		}{
			Threshold: r.Controller.Threshold(),
		},
	})
}

func (r *Server) listAlarm(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("listAlarm request from %v", req.RemoteAddr)

	w.WriteJson(&Response{
		Status: StatusOkay,
		Data: struct {
			Alarms []mitigation.Alarm `json:"alarms"`
		}{
			Alarms: r.Controller.Alarms(),
		},
	})
}

func (r *Server) listMAC(w rest.ResponseWriter, req *rest.Request) {
	dpid, err := strconv.ParseUint(req.PathParam("dpid"), 10, 64)
	if err != nil {
		w.WriteJson(&Response{Status: StatusInvalidParameter, Message: fmt.Sprintf("invalid DPID: %v", req.PathParam("dpid"))})
		return
	}
	logger.Debugf("listMAC request from %v: dpid=%v", req.RemoteAddr, dpid)

	w.WriteJson(&Response{
		Status: StatusOkay,
		Data: struct {
			Entries []l2switch.Entry `json:"entries"`
		}{
			Entries: r.Controller.Entries(dpid),
		},
	})
}

func (r *Server) relearn(w rest.ResponseWriter, req *rest.Request) {
	p := new(relearnParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(&Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("relearn request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	if !r.Controller.Relearn(p.DPID, p.MAC) {
		w.WriteJson(&Response{Status: StatusNotFound, Message: fmt.Sprintf("unknown MAC address on %v: %v", p.DPID, p.MAC)})
		return
	}
	logger.Infof("relearning %v on %v by the request from %v", p.MAC, p.DPID, req.RemoteAddr)

	w.WriteJson(&Response{Status: StatusOkay})
}

type relearnParam struct {
	DPID uint64
	MAC  net.HardwareAddr
}

func (r *relearnParam) UnmarshalJSON(data []byte) error {
	v := struct {
		DPID uint64 `json:"dpid"`
		MAC  string `json:"mac"`
	}{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	mac, err := net.ParseMAC(v.MAC)
	if err != nil {
		return err
	}
	r.DPID = v.DPID
	r.MAC = mac

	return nil
}

func (r *Server) unblock(w rest.ResponseWriter, req *rest.Request) {
	p := new(unblockParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(&Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("unblock request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	ok, err := r.Controller.Unblock(p.DPID, p.Port)
	if err != nil {
		logger.Errorf("failed to unblock port %v of %v: %v", p.Port, p.DPID, err)
		w.WriteJson(&Response{Status: StatusInternalServerError, Message: err.Error()})
		return
	}
	if !ok {
		w.WriteJson(&Response{Status: StatusNotFound, Message: fmt.Sprintf("port %v of %v is not blocked", p.Port, p.DPID)})
		return
	}

	w.WriteJson(&Response{Status: StatusOkay})
}

type unblockParam struct {
	DPID uint64 `json:"dpid"`
	Port uint32 `json:"port"`
}
