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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/honeytrap/ftptrap/credentials"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/console")

const usage = "Usage: passwd NEWPASS\n       quit | exit\n"

// Store is the part of the credential store the console mutates.
type Store interface {
	Current() credentials.Credential
	Replace(password string) error
}

// Events receives the operator events the console produces.
type Events interface {
	PasswordChanged(username string)
	ShutdownRequested()
	ConsoleEnded()
}

// Console reads operator commands line by line and applies them.
type Console struct {
	in     io.Reader
	out    io.Writer
	prompt string

	store    Store
	events   Events
	shutdown func()
}

// Option configures a Console.
type Option func(*Console)

// WithInput sets the reader commands are read from.
func WithInput(r io.Reader) Option {
	return func(c *Console) {
		c.in = r
	}
}

// WithOutput sets the writer for prompts and replies.
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		c.out = w
	}
}

// WithPrompt sets the prompt printed before every read.
func WithPrompt(p string) Option {
	return func(c *Console) {
		c.prompt = p
	}
}

// New returns a console mutating store, reporting to events and calling
// shutdown on quit. It reads stdin and writes stdout unless told otherwise.
func New(store Store, events Events, shutdown func(), options ...Option) *Console {
	c := &Console{
		in:       os.Stdin,
		out:      os.Stdout,
		prompt:   "admin> ",
		store:    store,
		events:   events,
		shutdown: shutdown,
	}

	for _, fn := range options {
		fn(c)
	}

	return c
}

// Run processes commands until quit, end of input or cancellation of ctx.
// Only quit requests a shutdown; the other two just end the console.
//
// The reader goroutine stays blocked on input that never arrives after
// Run returns, which is fine for stdin.
func (c *Console) Run(ctx context.Context) {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			log.Errorf("Error reading console input: %s", err.Error())
		}
	}()

	for {
		fmt.Fprint(c.out, c.prompt)

		select {
		case line, ok := <-lines:
			if !ok {
				c.end()
				return
			}

			if c.apply(line) {
				return
			}
		case <-ctx.Done():
			c.end()
			return
		}
	}
}

// apply executes one line and reports whether the console terminated.
func (c *Console) apply(line string) bool {
	cmd, err := Parse(line)
	if err == ErrInvalidCommand {
		log.Debugf("Invalid console command %q", cmd.Raw)
		fmt.Fprint(c.out, usage)
		return false
	}

	switch cmd.Kind {
	case Shutdown:
		fmt.Fprintln(c.out, "Shutting down (admin requested)...")

		c.events.ShutdownRequested()
		c.shutdown()
		return true
	case SetPassword:
		if err := c.store.Replace(cmd.Password); err != nil {
			log.Warningf("Password change rejected: %s", err.Error())
			fmt.Fprintf(c.out, "Error: %s\n", err.Error())
			return false
		}

		c.events.PasswordChanged(c.store.Current().Username)
	}

	return false
}

func (c *Console) end() {
	fmt.Fprintln(c.out, "\nAdmin console exiting.")
	c.events.ConsoleEnded()
}
