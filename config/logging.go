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
	"os"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
)

var format = logging.MustStringFormatter(
	"%{color}%{time:15:04:05.000} %{module} ▶ %{level:.4s} %{id:03x} %{message}%{color:reset}",
)

var fileFormat = logging.MustStringFormatter(
	"%{time:2006-01-02T15:04:05.000Z07:00} %{module} %{level:.4s} %{message}",
)

// DefaultLogging is used when no backend is configured.
var DefaultLogging = []Logging{
	{Output: "stderr", Level: "warning"},
}

// SetupLogging installs the diagnostic log backends. It returns a closer
// for the files it opened.
func SetupLogging(entries []Logging) (io.Closer, error) {
	if len(entries) == 0 {
		entries = DefaultLogging
	}

	var (
		logBackends []logging.Backend
		files       closers
	)

	for _, l := range entries {
		var (
			output io.Writer
			f      = format
		)

		switch l.Output {
		case "stdout":
			output = os.Stdout
		case "stderr":
			output = os.Stderr
		default:
			file, err := os.OpenFile(os.ExpandEnv(l.Output), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0660)
			if err != nil {
				files.Close()
				return nil, errors.Wrapf(err, "could not open log output %s", l.Output)
			}

			files = append(files, file)

			output = file
			f = fileFormat
		}

		level, err := logging.LogLevel(l.Level)
		if err != nil {
			files.Close()
			return nil, errors.Wrapf(err, "invalid log level %q", l.Level)
		}

		backend := logging.NewLogBackend(output, "", 0)
		backendFormatter := logging.NewBackendFormatter(backend, f)
		backendLeveled := logging.AddModuleLevel(backendFormatter)
		backendLeveled.SetLevel(level, "")

		logBackends = append(logBackends, backendLeveled)
	}

	logging.SetBackend(logBackends...)

	return files, nil
}

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
