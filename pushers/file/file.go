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
package file

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/honeytrap/ftptrap/event"
	"github.com/honeytrap/ftptrap/pushers"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/pushers/file")

// FileConfig defines the config used to setup the FileBackend.
type FileConfig struct {
	File string      `toml:"filename"`
	Mode os.FileMode `toml:"mode"`
}

// FileBackend appends one line per event to the durable log. The file is
// opened once in append mode and never truncated. A failed write degrades
// the backend: the failure is reported once, the event is dropped for this
// destination and the caller is never interrupted.
type FileBackend struct {
	FileConfig

	m        sync.Mutex
	f        *os.File
	degraded bool

	onFailure func(error)
}

// WithPath sets the log file path.
func WithPath(path string) func(*FileBackend) {
	return func(fb *FileBackend) {
		fb.File = path
	}
}

// WithMode sets the permissions used when the log file is created.
func WithMode(mode os.FileMode) func(*FileBackend) {
	return func(fb *FileBackend) {
		fb.Mode = mode
	}
}

// WithFailureHandler sets a function called when the backend becomes degraded.
func WithFailureHandler(fn func(error)) func(*FileBackend) {
	return func(fb *FileBackend) {
		fb.onFailure = fn
	}
}

// New returns a new instance of a FileBackend.
func New(options ...func(*FileBackend)) (pushers.Channel, error) {
	fb := &FileBackend{
		FileConfig: FileConfig{
			Mode: os.FileMode(0640),
		},
	}

	for _, optionFn := range options {
		optionFn(fb)
	}

	if fb.File == "" {
		return nil, errors.New("File channel: filename not set")
	}

	if !filepath.IsAbs(fb.File) {
		if p, err := filepath.Abs(fb.File); err == nil {
			fb.File = p
		}
	}

	f, err := os.OpenFile(fb.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fb.Mode)
	if err != nil {
		return nil, err
	}

	fb.f = f

	log.Debugf("Writing events to %s", fb.File)
	return fb, nil
}

// Degraded reports whether the last write to the log failed.
func (fb *FileBackend) Degraded() bool {
	fb.m.Lock()
	defer fb.m.Unlock()

	return fb.degraded
}

// Send appends the event line with a single write.
func (fb *FileBackend) Send(e event.Event) {
	line := []byte(event.Line(e) + "\n")

	fb.m.Lock()
	defer fb.m.Unlock()

	if fb.f == nil {
		fb.fail(os.ErrClosed)
		return
	}

	if _, err := fb.f.Write(line); err != nil {
		fb.fail(err)
		return
	}

	if fb.degraded {
		log.Infof("Writes to %s recovered", fb.File)
		fb.degraded = false
	}
}

func (fb *FileBackend) fail(err error) {
	if fb.degraded {
		return
	}

	fb.degraded = true

	log.Warningf("Could not write to %s, continuing console only: %s", fb.File, err.Error())

	if fb.onFailure != nil {
		fb.onFailure(err)
	}
}

// Close syncs and closes the log file.
func (fb *FileBackend) Close() error {
	fb.m.Lock()
	defer fb.m.Unlock()

	if fb.f == nil {
		return nil
	}

	f := fb.f
	fb.f = nil

	if err := f.Sync(); err != nil {
		log.Errorf("Failed to sync %s: %s", fb.File, err.Error())
	}

	return f.Close()
}
