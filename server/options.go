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
package server

import (
	"io"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/honeytrap/ftptrap/config"
	"github.com/rs/xid"
)

type OptionFn func(*Server) error

// WithConfig sets the configuration to run with.
func WithConfig(c config.Config) OptionFn {
	return func(s *Server) error {
		s.config = c
		return nil
	}
}

// WithDataDir overrides the data directory of the configuration.
func WithDataDir(p string) OptionFn {
	return func(s *Server) error {
		s.config.DataDir = p
		return nil
	}
}

// WithInput sets where operator commands are read from.
func WithInput(r io.Reader) OptionFn {
	return func(s *Server) error {
		s.in = r
		return nil
	}
}

// WithOutput sets the operator terminal.
func WithOutput(w io.Writer) OptionFn {
	return func(s *Server) error {
		s.out = w
		return nil
	}
}

// WithoutConsole disables the operator console.
func WithoutConsole() OptionFn {
	return func(s *Server) error {
		s.noConsole = true
		return nil
	}
}

// prepareDataDir expands, creates and returns the absolute data directory.
func prepareDataDir(s string) (string, error) {
	p, err := expand(s)
	if err != nil {
		return "", err
	}

	p, err = filepath.Abs(p)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p, 0750); err != nil {
		return "", err
	}

	return p, nil
}

func expand(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, path[1:]), nil
}

// loadToken returns the instance token stored in the data directory,
// creating it on first run.
func loadToken(dataDir string) (string, error) {
	p := filepath.Join(dataDir, "token")

	data, err := ioutil.ReadFile(p)
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	uid := xid.New().String()

	if err := ioutil.WriteFile(p, []byte(uid), 0600); err != nil {
		return "", err
	}

	return uid, nil
}
