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
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/l2switch"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/mitigation"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/go-chi/chi/v5"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	logger = logging.MustGetLogger("api")
)

type Server struct {
	Port uint16
	TLS  struct {
		Cert string // Path for a TLS certification file.
		Key  string // Path for a TLS private key file.
	}
	Controller Controller
	Gatherer   prometheus.Gatherer
}

type Controller interface {
	Switches() []uint64
	Threshold() float64
	Alarms() []mitigation.Alarm
	Entries(dpid uint64) []l2switch.Entry
	Relearn(dpid uint64, mac net.HardwareAddr) bool
	Unblock(dpid uint64, port uint32) (bool, error)
}

func (r *Server) validate() error {
	if r.Controller == nil {
		return errors.New("nil controller")
	}
	if r.Gatherer == nil {
		return errors.New("nil gatherer")
	}

	return nil
}

// Handler returns the REST API under /api/ and the Prometheus metrics under /metrics.
func (r *Server) Handler() (http.Handler, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	api := rest.NewApi()
	// Middleware to set the CORS header.
	api.Use(rest.MiddlewareSimple(func(handler rest.HandlerFunc) rest.HandlerFunc {
		return func(writer rest.ResponseWriter, request *rest.Request) {
			writer.Header().Set("Access-Control-Allow-Origin", "*")
			handler(writer, request)
		}
	}))
	router, err := rest.MakeRouter(
		rest.Get("/api/v1/switch", r.listSwitch),
		rest.Get("/api/v1/threshold", r.threshold),
		rest.Get("/api/v1/alarm", r.listAlarm),
		rest.Get("/api/v1/mac/:dpid", r.listMAC),
		rest.Post("/api/v1/relearn", r.relearn),
		rest.Post("/api/v1/unblock", r.unblock),
	)
	if err != nil {
		return nil, err
	}
	api.SetApp(router)

	mux := chi.NewRouter()
	mux.Handle("/api/*", api.MakeHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}))

	return mux, nil
}

// Serve listens on all interfaces until ctx is cancelled.
func (r *Server) Serve(ctx context.Context) error {
	handler, err := r.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", r.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("failed to shutdown the API server: %v", err)
		}
	}()

	logger.Infof("API server is listening on %v", server.Addr)
	if r.TLS.Cert != "" && r.TLS.Key != "" {
		err = server.ListenAndServeTLS(r.TLS.Cert, r.TLS.Key)
	} else {
		err = server.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}
