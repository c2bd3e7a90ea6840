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

// Package log configures the go-logging backends of the controller.
package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const (
	DriverStderr = "stderr"
	DriverSyslog = "syslog"
)

var format = logging.MustStringFormatter(
	`%{time} [%{pid}] %{level}: %{shortpkg}.%{shortfunc}: %{message}`,
)

// Init installs the backend of driver as the default go-logging backend with
// the given level for every module.
func Init(program, driver, level string) error {
	var backend logging.Backend
	switch strings.ToLower(driver) {
	case DriverStderr:
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	case DriverSyslog:
		var err error
		backend, err = NewSyslog(program)
		if err != nil {
			return errors.Wrap(err, "initializing syslog")
		}
	default:
		return fmt.Errorf("unknown log driver: %v", driver)
	}

	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	logging.SetBackend(leveled)

	return SetLevel(level)
}

// SetLevel changes the level of every module.
func SetLevel(level string) error {
	l, err := logging.LogLevel(level)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("invalid log level: %v", level))
	}
	logging.SetLevel(l, "")

	return nil
}
