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
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/honeytrap/ftptrap/event"
	"github.com/honeytrap/ftptrap/pushers"
	isatty "github.com/mattn/go-isatty"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/pushers/console")

// Console writes event lines to the operator terminal.
type Console struct {
	io.Writer

	m sync.Mutex

	info    *color.Color
	warning *color.Color
	failed  bool
	forced  *bool
}

// WithWriter sets the destination writer.
func WithWriter(w io.Writer) func(*Console) {
	return func(c *Console) {
		c.Writer = w
	}
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) func(*Console) {
	return func(c *Console) {
		c.forced = &enabled

		for _, cl := range []*color.Color{c.info, c.warning} {
			if enabled {
				cl.EnableColor()
			} else {
				cl.DisableColor()
			}
		}
	}
}

// New returns a new Console channel writing to stdout unless configured
// otherwise. Colors are enabled when the writer is a terminal.
func New(options ...func(*Console)) (pushers.Channel, error) {
	c := &Console{
		Writer:  os.Stdout,
		info:    color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
	}

	for _, optionFn := range options {
		optionFn(c)
	}

	if c.forced == nil {
		WithColor(isTerminal(c.Writer))(c)
	}

	return c, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Send writes the event line in a single write.
func (c *Console) Send(e event.Event) {
	cl := c.info
	if e.Get("severity") == event.LevelWarning {
		cl = c.warning
	}

	line := cl.Sprint(event.Line(e)) + "\n"

	c.m.Lock()
	defer c.m.Unlock()

	if _, err := io.WriteString(c.Writer, line); err != nil && !c.failed {
		c.failed = true
		log.Errorf("Could not write to console: %s", err.Error())
	} else if err == nil {
		c.failed = false
	}
}

// Printf writes an operator notice which is not an event.
func (c *Console) Printf(format string, a ...interface{}) {
	c.m.Lock()
	defer c.m.Unlock()

	fmt.Fprint(c.Writer, c.warning.Sprintf(format, a...)+"\n")
}
