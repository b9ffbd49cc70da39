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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default

	if c.FTPUser != "testftppno9" || c.FTPPass != "test@pno9" || c.Port != 21 {
		t.Errorf("Unexpected defaults %+v", c)
	}

	if c.FTPRoot != "ftp_root" || c.LogFile != "ftp_honeypot.log" || c.BindIP != "" {
		t.Errorf("Unexpected defaults %+v", c)
	}

	if c.Addr() != ":21" {
		t.Errorf("Expected all interfaces, got %s", c.Addr())
	}

	if err := c.Validate(); err != nil {
		t.Errorf("Default config invalid: %s", err)
	}
}

func TestLoad(t *testing.T) {
	doc := `
ftp_root = "/srv/ftp"
port = 2121
idle_timeout = "30s"
archive = false

[[filter]]
channel = "console"
field = "category"
expression = ["^login_"]

[[logging]]
output = "stdout"
level = "debug"
`

	c, err := Default.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if c.FTPRoot != "/srv/ftp" || c.Port != 2121 || c.Archive {
		t.Errorf("Unexpected config %+v", c)
	}

	if c.IdleTimeout.Duration() != 30*time.Second {
		t.Errorf("Expected 30s idle timeout, got %s", c.IdleTimeout)
	}

	if c.FTPUser != Default.FTPUser {
		t.Errorf("Unset key lost its default: %q", c.FTPUser)
	}

	if len(c.Filters) != 1 || c.Filters[0].Channel != "console" || len(c.Logging) != 1 {
		t.Errorf("Unexpected filters %+v / logging %+v", c.Filters, c.Logging)
	}

	if Default.Port != 21 {
		t.Errorf("Load modified Default")
	}

	if _, err := Default.Load(strings.NewReader("port = [")); err == nil {
		t.Errorf("Expected parse error")
	}
}

func TestWithEnv(t *testing.T) {
	c, err := Default.WithEnv(env(map[string]string{
		"FTP_USER":       "admin",
		"FTP_PASS":       "hunter2",
		"PORT":           "2121",
		"BIND_IP":        "127.0.0.1",
		"SHUTDOWN_GRACE": "1s",
		"ARCHIVE":        "off",
		"LOGIN_RATE":     "0.5",
	}))
	if err != nil {
		t.Fatal(err)
	}

	if c.FTPUser != "admin" || c.FTPPass != "hunter2" || c.Port != 2121 || c.Addr() != "127.0.0.1:2121" {
		t.Errorf("Unexpected config %+v", c)
	}

	if c.ShutdownGrace.Duration() != time.Second || c.Archive || c.LoginRate != 0.5 {
		t.Errorf("Unexpected config %+v", c)
	}

	cases := []map[string]string{
		{"PORT": "twentyone"},
		{"IDLE_TIMEOUT": "forever"},
		{"IDLE_TIMEOUT": "-1s"},
		{"ARCHIVE": "maybe"},
		{"LOGIN_RATE": "fast"},
	}

	for _, m := range cases {
		if _, err := Default.WithEnv(env(m)); err == nil {
			t.Errorf("Expected error for %v", m)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Port = 70000 },
		func(c *Config) { c.FTPUser = " " },
		func(c *Config) { c.FTPPass = "" },
		func(c *Config) { c.Permissions = "elrz" },
		func(c *Config) { c.BindIP = "not-an-ip" },
		func(c *Config) { c.PublicIP = "::1" },
		func(c *Config) { c.Filters = []Filter{{Channel: "kafka"}} },
		func(c *Config) { c.LoginRate = -1 },
	}

	for i, fn := range cases {
		c := Default
		fn(&c)

		if err := c.Validate(); err == nil {
			t.Errorf("Case %d: expected validation error for %+v", i, c)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	dir, err := ioutil.TempDir("", "ftptrap-config")
	if err != nil {
		t.Fatal(err)
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "debug.log")

	closer, err := SetupLogging([]Logging{{Output: path, Level: "debug"}})
	if err != nil {
		t.Fatal(err)
	}

	log.Debugf("diagnostic line")

	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "diagnostic line") {
		t.Errorf("Expected diagnostic line in %q", data)
	}

	if _, err := SetupLogging([]Logging{{Output: "stderr", Level: "loud"}}); err == nil {
		t.Errorf("Expected error for unknown level")
	}

	if _, err := SetupLogging(nil); err != nil {
		t.Errorf("Default logging failed: %s", err)
	}
}
