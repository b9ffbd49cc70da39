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
package config

import (
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/honeytrap/ftptrap/credentials"
	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("ftptrap/config")

// Logging configures one diagnostic log backend.
type Logging struct {
	Output string `toml:"output"`
	Level  string `toml:"level"`
}

// Filter limits the events delivered to one channel to those whose field
// matches one of the expressions.
type Filter struct {
	Channel    string   `toml:"channel"`
	Field      string   `toml:"field"`
	Expression []string `toml:"expression"`
}

// Config is the complete configuration of the honeypot. It is built once
// at startup and passed by value.
type Config struct {
	FTPRoot string `toml:"ftp_root"`
	LogFile string `toml:"log_file"`
	BindIP  string `toml:"bind_ip"`
	Port    int    `toml:"port"`
	FTPUser string `toml:"ftp_user"`
	FTPPass string `toml:"ftp_pass"`

	Permissions string `toml:"permissions"`

	DataDir       string  `toml:"data_dir"`
	IdleTimeout   Delay   `toml:"idle_timeout"`
	ShutdownGrace Delay   `toml:"shutdown_grace"`
	Banner        string  `toml:"banner"`
	PassivePorts  string  `toml:"passive_ports"`
	PublicIP      string  `toml:"public_ip"`
	LoginRate     float64 `toml:"login_rate"`
	Archive       bool    `toml:"archive"`

	Filters []Filter  `toml:"filter"`
	Logging []Logging `toml:"logging"`
}

// Default defines the configuration used when nothing is overridden.
var Default = Config{
	FTPRoot:       "ftp_root",
	LogFile:       "ftp_honeypot.log",
	BindIP:        "",
	Port:          21,
	FTPUser:       "testftppno9",
	FTPPass:       "test@pno9",
	Permissions:   credentials.DefaultPermissions,
	DataDir:       ".ftptrap",
	IdleTimeout:   Delay(5 * time.Minute),
	ShutdownGrace: Delay(5 * time.Second),
	Banner:        "FTP Server",
	LoginRate:     1,
	Archive:       true,
}

// Load decodes a toml document on top of c and returns the result.
func (c Config) Load(r io.Reader) (Config, error) {
	md, err := toml.DecodeReader(r, &c)
	if err != nil {
		return c, errors.Wrap(err, "could not parse configuration")
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		for _, key := range undecoded {
			log.Warningf("Unknown configuration key %s", key)
		}
	}

	return c, nil
}

// Env names of the keys that can be overridden from the environment.
const (
	EnvFTPRoot       = "FTP_ROOT"
	EnvLogFile       = "LOG_FILE"
	EnvBindIP        = "BIND_IP"
	EnvPort          = "PORT"
	EnvFTPUser       = "FTP_USER"
	EnvFTPPass       = "FTP_PASS"
	EnvDataDir       = "DATA_DIR"
	EnvIdleTimeout   = "IDLE_TIMEOUT"
	EnvShutdownGrace = "SHUTDOWN_GRACE"
	EnvBanner        = "BANNER"
	EnvPassivePorts  = "PASSIVE_PORTS"
	EnvPublicIP      = "PUBLIC_IP"
	EnvArchive       = "ARCHIVE"
	EnvLoginRate     = "LOGIN_RATE"
)

// WithEnv applies environment overrides read through lookup, usually
// os.LookupEnv.
func (c Config) WithEnv(lookup func(string) (string, bool)) (Config, error) {
	strs := map[string]*string{
		EnvFTPRoot:      &c.FTPRoot,
		EnvLogFile:      &c.LogFile,
		EnvBindIP:       &c.BindIP,
		EnvFTPUser:      &c.FTPUser,
		EnvFTPPass:      &c.FTPPass,
		EnvDataDir:      &c.DataDir,
		EnvBanner:       &c.Banner,
		EnvPassivePorts: &c.PassivePorts,
		EnvPublicIP:     &c.PublicIP,
	}

	for key, p := range strs {
		if v, ok := lookup(key); ok {
			*p = v
		}
	}

	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, errors.Wrapf(err, "invalid %s", EnvPort)
		}
		c.Port = port
	}

	delays := map[string]*Delay{
		EnvIdleTimeout:   &c.IdleTimeout,
		EnvShutdownGrace: &c.ShutdownGrace,
	}

	for key, p := range delays {
		if v, ok := lookup(key); ok {
			if err := p.UnmarshalText([]byte(v)); err != nil {
				return c, errors.Wrapf(err, "invalid %s", key)
			}
		}
	}

	if v, ok := lookup(EnvLoginRate); ok {
		r, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return c, errors.Wrapf(err, "invalid %s", EnvLoginRate)
		}
		c.LoginRate = r
	}

	if v, ok := lookup(EnvArchive); ok {
		b, err := parseBool(v)
		if err != nil {
			return c, errors.Wrapf(err, "invalid %s", EnvArchive)
		}
		c.Archive = b
	}

	return c, nil
}

// Validate checks the configuration before anything is started.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}

	if strings.TrimSpace(c.FTPUser) == "" {
		return errors.New("ftp user must not be empty")
	}

	if strings.TrimSpace(c.FTPPass) == "" {
		return errors.New("ftp password must not be empty")
	}

	if c.FTPRoot == "" {
		return errors.New("ftp root must not be empty")
	}

	if c.LogFile == "" {
		return errors.New("log file must not be empty")
	}

	if _, err := credentials.ParsePermissions(c.Permissions); err != nil {
		return err
	}

	if c.BindIP != "" && net.ParseIP(c.BindIP) == nil {
		return errors.Errorf("invalid bind ip %q", c.BindIP)
	}

	if c.PublicIP != "" && net.ParseIP(c.PublicIP).To4() == nil {
		return errors.Errorf("public ip %q is not an ipv4 address", c.PublicIP)
	}

	if c.LoginRate < 0 {
		return errors.Errorf("login rate %v must not be negative", c.LoginRate)
	}

	for _, f := range c.Filters {
		switch f.Channel {
		case "console", "file", "archive":
		default:
			return errors.Errorf("filter for unknown channel %q", f.Channel)
		}
	}

	return nil
}

// Addr returns the address to listen on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.BindIP, strconv.Itoa(c.Port))
}
