/*
* Honeytrap
* Copyright (C) 2016-2018 DutchSec (https://dutchsec.com/)
*
* This program is free software; you can redistribute it and/or modify it under
* the terms of the GNU Affero General Public License version 3 as published by the
* Free Software Foundation.
*
* This program is distributed in the hope that it will be useful, but WITHOUT
* ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
* FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for more
* details.
*
* You should have received a copy of the GNU Affero General Public License
* version 3 along with this program in the file "LICENSE".  If not, see
* <http://www.gnu.org/licenses/agpl-3.0.txt>.
*
* See https://honeytrap.io/ for more details. All requests should be sent to
* licensing@honeytrap.io
*
* The interactive user interfaces in modified source and object code versions
* of this program must display Appropriate Legal Notices, as required under
* Section 5 of the GNU Affero General Public License version 3.
*
* In accordance with Section 7(b) of the GNU Affero General Public License version 3,
* these Appropriate Legal Notices must retain the display of the "Powered by
* Honeytrap" logo and retain the original copyright notice. If the display of the
* logo is not reasonably feasible for technical reasons, the Appropriate Legal Notices
* must display the words "Powered by Honeytrap" and retain the original copyright notice.
 */
package ftp

import (
	"bufio"
	"context"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	defaultWelcomeMessage = "FTP Server"
	defaultLoginBurst     = 3
)

// ServerOpts contains the protocol level options of a Service.
type ServerOpts struct {
	// WelcomeMessage is sent with the 220 greeting.
	WelcomeMessage string

	// PublicIP is advertised in PASV replies instead of the local address.
	PublicIP string

	// PassivePorts is a port range to pick passive listeners from, e.g.
	// "30000-30100". Empty lets the system choose.
	PassivePorts string

	// LoginRate limits PASS attempts per second within one session,
	// allowing bursts of LoginBurst. Zero disables the limit.
	LoginRate  float64
	LoginBurst int

	// IdleTimeout closes data connections without traffic for this long.
	// Zero disables it.
	IdleTimeout time.Duration
}

// serverOptsWithDefaults copies an ServerOpts struct into a new struct,
// then adds any default values that are missing and returns the new data.
func serverOptsWithDefaults(opts *ServerOpts) *ServerOpts {
	var newOpts ServerOpts
	if opts == nil {
		opts = &ServerOpts{}
	}

	if opts.WelcomeMessage == "" {
		newOpts.WelcomeMessage = defaultWelcomeMessage
	} else {
		newOpts.WelcomeMessage = opts.WelcomeMessage
	}

	newOpts.PublicIP = opts.PublicIP
	newOpts.PassivePorts = opts.PassivePorts

	newOpts.IdleTimeout = opts.IdleTimeout

	newOpts.LoginRate = opts.LoginRate
	newOpts.LoginBurst = opts.LoginBurst
	if newOpts.LoginBurst <= 0 {
		newOpts.LoginBurst = defaultLoginBurst
	}

	return &newOpts
}

// ParsePortRange parses a "min-max" passive port range. An empty string
// yields 0, 0.
func ParsePortRange(s string) (int, int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, 0, nil
	}

	portRange := strings.Split(s, "-")
	if len(portRange) != 2 {
		return 0, 0, errors.Errorf("invalid port range %q", s)
	}

	minPort, err := strconv.Atoi(strings.TrimSpace(portRange[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid port range %q", s)
	}

	maxPort, err := strconv.Atoi(strings.TrimSpace(portRange[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid port range %q", s)
	}

	if minPort < 1 || maxPort > 65535 || minPort > maxPort {
		return 0, 0, errors.Errorf("invalid port range %q", s)
	}

	return minPort, maxPort, nil
}

// passivePort picks a port from the configured range, or 0 to let the
// system choose one.
func (opts *ServerOpts) passivePort() int {
	minPort, maxPort, err := ParsePortRange(opts.PassivePorts)
	if err != nil || minPort == 0 {
		return 0
	}

	return minPort + rand.Intn(maxPort-minPort+1)
}

func (s *Service) newConn(ctx context.Context, tcpConn net.Conn, sess Session) *Conn {
	c := &Conn{
		ctx:           ctx,
		conn:          tcpConn,
		controlReader: bufio.NewReader(tcpConn),
		controlWriter: bufio.NewWriter(tcpConn),
		service:       s,
		session:       sess,
	}

	if s.opts.LoginRate > 0 {
		c.logins = rate.NewLimiter(rate.Limit(s.opts.LoginRate), s.opts.LoginBurst)
	}

	return c
}
