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

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/api"
	"github.com/flaviopalomba02/SDN-Firewall/log"
	"github.com/flaviopalomba02/SDN-Firewall/metrics"
	"github.com/flaviopalomba02/SDN-Firewall/network"
	"github.com/flaviopalomba02/SDN-Firewall/northbound"
	"github.com/flaviopalomba02/SDN-Firewall/threshold"

	"github.com/fsnotify/fsnotify"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	programName    = "sdnfw"
	programVersion = "0.3.0"
)

var (
	logger = logging.MustGetLogger("main")
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	var showVersion bool

	cmd := &cobra.Command{
		Use:          programName,
		Short:        "OpenFlow 1.3 learning switch with MAC spoofing detection and port throttling",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %v\n", programVersion)
				return nil
			}
			return run(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
	cmd.Flags().BoolVar(&showVersion, "version", false, "show program version and exit")

	return cmd
}

func run(ctx context.Context, configFile string) error {
	v := viper.New()
	if err := initConfig(v, configFile); err != nil {
		return err
	}
	if err := log.Init(programName, v.GetString("log.driver"), v.GetString("log.level")); err != nil {
		return errors.Wrap(err, "failed to init log")
	}
	watchConfig(v)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	limit := threshold.Compute(threshold.FileSource{Path: v.GetString("default.bandwidth_file")})
	manager, err := createAppManager(v, limit, m)
	if err != nil {
		return errors.Wrap(err, "failed to create application manager")
	}
	controller := network.NewController()
	manager.AddEventSender(controller)

	initSignalHandler(ctx, controller, manager, cancel)

	server := &api.Server{
		Port:       uint16(v.GetInt("rest.port")),
		Controller: manager,
		Gatherer:   registry,
	}
	if v.GetBool("rest.tls") {
		server.TLS.Cert = v.GetString("rest.cert_file")
		server.TLS.Key = v.GetString("rest.key_file")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(ctx)
	})
	g.Go(func() error {
		if err := server.Serve(ctx); err != nil {
			return errors.Wrap(err, "failed to run the API server")
		}
		return nil
	})
	g.Go(func() error {
		return listen(ctx, v.GetInt("default.port"), controller)
	})

	return g.Wait()
}

func initConfig(v *viper.Viper, path string) error {
	if err := readConfig(v, path); err != nil {
		return err
	}
	if err := validateConfig(v); err != nil {
		return errors.Wrap(err, "failed to validate the configuration")
	}

	return nil
}

// watchConfig re-applies the log level whenever the config file is rewritten.
func watchConfig(v *viper.Viper) {
	if len(v.ConfigFileUsed()) == 0 {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		// Ignore everything but WRITE to avoid reading an empty config.
		if !e.Has(fsnotify.Write) {
			return
		}
		if err := log.SetLevel(v.GetString("log.level")); err != nil {
			logger.Errorf("failed to reload the log level: %v", err)
			return
		}
		logger.Infof("log level is changed to %v", v.GetString("log.level"))
	})
	v.WatchConfig()
}

func initSignalHandler(ctx context.Context, controller *network.Controller, manager *northbound.Manager, cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(c)

		for {
			select {
			case <-ctx.Done():
				return
			case s := <-c:
				if s == syscall.SIGHUP {
					fmt.Println("* Controller status:")
					fmt.Println(controller.String())
					fmt.Printf("\n* Manager status:\n")
					fmt.Println(manager.String())
					continue
				}
				// Graceful shutdown
				logger.Warning("shutting down...")
				cancel()
				return
			}
		}
	}()
}

func listen(ctx context.Context, port int, controller *network.Controller) error {
	type KeepAliver interface {
		SetKeepAlive(keepalive bool) error
		SetKeepAlivePeriod(d time.Duration) error
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to listen on %v port", port))
	}
	logger.Infof("listening on %v for OpenFlow switches", listener.Addr())
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	// Connection dispatcher.
	f := func(c chan<- net.Conn) {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Errorf("failed to accept a new connection: %v", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			logger.Infof("new device is connected from %v", conn.RemoteAddr())

			select {
			case c <- conn:
			case <-ctx.Done():
				conn.Close()
				return
			}
		}
	}
	backlog := make(chan net.Conn, 32)
	go f(backlog)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("terminating the main listener loop...")
			return nil
		case conn := <-backlog:
			if v, ok := conn.(KeepAliver); ok {
				if err := v.SetKeepAlive(true); err == nil {
					// A broken connection is detected within 45 seconds.
					v.SetKeepAlivePeriod(5 * time.Second)
				} else {
					logger.Errorf("failed to enable socket keepalive: %v", err)
				}
			}
			controller.AddConnection(ctx, conn)
		}
	}
}

func createAppManager(v *viper.Viper, threshold float64, m *metrics.Metrics) (*northbound.Manager, error) {
	manager := northbound.NewManager(managerConfig(v, threshold), m)

	apps, err := parseApplications(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse applications")
	}
	for _, name := range apps {
		if err := manager.Enable(name); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("enabling %v", name))
		}
	}

	return manager, nil
}
