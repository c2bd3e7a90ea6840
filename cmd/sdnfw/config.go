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
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/flaviopalomba02/SDN-Firewall/log"
	"github.com/flaviopalomba02/SDN-Firewall/northbound"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/l2switch"
	"github.com/flaviopalomba02/SDN-Firewall/northbound/app/mitigation"
	"github.com/flaviopalomba02/SDN-Firewall/threshold"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("default.port", 6653)
	v.SetDefault("default.bandwidth_file", threshold.DefaultPath)
	v.SetDefault("default.applications", "Monitor, Mitigation, L2Switch")
	v.SetDefault("log.driver", log.DriverStderr)
	v.SetDefault("log.level", "info")
	v.SetDefault("l2switch.idle_timeout", 60)
	v.SetDefault("l2switch.hard_timeout", 0)
	v.SetDefault("monitor.poll_interval", 10*time.Second)
	v.SetDefault("mitigation.interval", 1)
	v.SetDefault("mitigation.patience", 5)
	v.SetDefault("rest.port", 8080)
	v.SetDefault("rest.tls", false)
}

// readConfig reads the config file on top of the defaults. A missing file
// leaves the defaults in place.
func readConfig(v *viper.Viper, path string) error {
	setDefaults(v)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warningf("config file %v does not exist: using the default configuration", path)
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read the config file")
	}

	return nil
}

func validateConfig(v *viper.Viper) error {
	if port := v.GetInt("default.port"); port <= 0 || port > 0xFFFF {
		return errors.New("invalid default.port")
	}
	if len(v.GetString("default.bandwidth_file")) == 0 {
		return errors.New("invalid default.bandwidth_file")
	}
	if _, err := parseApplications(v); err != nil {
		return errors.Wrap(err, "invalid default.applications")
	}
	switch strings.ToLower(v.GetString("log.driver")) {
	case log.DriverStderr, log.DriverSyslog:
	default:
		return errors.New("invalid log.driver")
	}
	if _, err := logging.LogLevel(v.GetString("log.level")); err != nil {
		return errors.New("invalid log.level")
	}
	if t := v.GetInt("l2switch.idle_timeout"); t < 0 || t > math.MaxUint16 {
		return errors.New("invalid l2switch.idle_timeout")
	}
	if t := v.GetInt("l2switch.hard_timeout"); t < 0 || t > math.MaxUint16 {
		return errors.New("invalid l2switch.hard_timeout")
	}
	if v.GetDuration("monitor.poll_interval") <= 0 {
		return errors.New("invalid monitor.poll_interval")
	}
	if i := v.GetFloat64("mitigation.interval"); i <= 0 || math.IsInf(i, 0) || math.IsNaN(i) {
		return errors.New("invalid mitigation.interval")
	}
	if v.GetInt("mitigation.patience") <= 0 {
		return errors.New("invalid mitigation.patience")
	}
	if port := v.GetInt("rest.port"); port <= 0 || port > 0xFFFF {
		return errors.New("invalid rest.port")
	}
	if v.GetBool("rest.tls") {
		if err := checkAbsPath(v, "rest.cert_file"); err != nil {
			return err
		}
		if err := checkAbsPath(v, "rest.key_file"); err != nil {
			return err
		}
	}

	return nil
}

func checkAbsPath(v *viper.Viper, key string) error {
	path := v.GetString(key)
	if len(path) == 0 {
		return fmt.Errorf("empty %v value", key)
	}
	if path[0] != '/' {
		return fmt.Errorf("%v should be specified as an absolute path", key)
	}

	return nil
}

func parseApplications(v *viper.Viper) ([]string, error) {
	// Remove spaces, and then split it using comma
	var apps []string
	for _, token := range strings.Split(strings.Replace(v.GetString("default.applications"), " ", "", -1), ",") {
		if len(token) > 0 {
			apps = append(apps, token)
		}
	}
	if len(apps) == 0 {
		return nil, errors.New("empty application")
	}

	return apps, nil
}

func managerConfig(v *viper.Viper, limit float64) northbound.Config {
	return northbound.Config{
		L2Switch: l2switch.Config{
			IdleTimeout: uint16(v.GetInt("l2switch.idle_timeout")),
			HardTimeout: uint16(v.GetInt("l2switch.hard_timeout")),
		},
		Mitigation: mitigation.Config{
			Threshold: limit,
			Interval:  v.GetFloat64("mitigation.interval"),
			Patience:  uint(v.GetInt("mitigation.patience")),
		},
		PollInterval: v.GetDuration("monitor.poll_interval"),
	}
}
