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
package event

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Categories of session lifecycle and operator events.
const (
	CategoryConnect         = "connect"
	CategoryDisconnect      = "disconnect"
	CategoryLoginOK         = "login_ok"
	CategoryLoginFail       = "login_fail"
	CategoryUpload          = "upload"
	CategoryPasswordChanged = "password_changed"
	CategoryShutdown        = "shutdown"
	CategoryConsoleEnded    = "console_ended"
	CategoryService         = "service"
)

// Severity levels carried by events.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// TimeFormat is the ISO-8601 layout used for persistent log lines.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// contains the predefined severity options.
var (
	SeverityInfo    = Severity(LevelInfo)
	SeverityWarning = Severity(LevelWarning)
)

// Option defines a function type for events modifications.
type Option func(Event)

// Apply applies all options to the Event returning it after it's done.
func Apply(e Event, opts ...Option) Event {
	for _, option := range opts {
		option(e)
	}

	return e
}

// Token adds the provided token into the giving Event.
func Token(token string) Option {
	return func(m Event) {
		m.Store("token", token)
	}
}

// Category returns an option for setting the category value.
func Category(s string) Option {
	return func(m Event) {
		m.Store("category", s)
	}
}

// Severity returns an option for setting the severity value.
func Severity(s string) Option {
	return func(m Event) {
		m.Store("severity", s)
	}
}

// Sensor returns an option for setting the sensor value.
func Sensor(s string) Option {
	return func(m Event) {
		m.Store("sensor", s)
	}
}

// SourceAddr returns an option for setting the source-ip and source-port values.
func SourceAddr(addr net.Addr) Option {
	return func(m Event) {
		switch ta := addr.(type) {
		case *net.TCPAddr:
			m.Store("source-ip", ta.IP.String())
			m.Store("source-port", ta.Port)
		case nil:
		default:
			host, port, err := net.SplitHostPort(addr.String())
			if err != nil {
				m.Store("source-ip", addr.String())
				return
			}

			m.Store("source-ip", host)
			m.Store("source-port", port)
		}
	}
}

// DestinationAddr returns an option for setting the destination-ip value.
func DestinationAddr(addr net.Addr) Option {
	return func(m Event) {
		if ta, ok := addr.(*net.TCPAddr); ok {
			m.Store("destination-ip", ta.IP.String())
			m.Store("destination-port", ta.Port)
		}
	}
}

// Message returns an option for setting the message value.
func Message(format string, a ...interface{}) Option {
	return func(m Event) {
		m.Store("message", fmt.Sprintf(format, a...))
	}
}

// Custom returns an option for setting the custom key-value pair.
func Custom(name string, value interface{}) Option {
	return func(m Event) {
		m.Store(name, value)
	}
}

// Date returns the capture time of the event.
func Date(e Event) time.Time {
	if v, ok := e.Load("date"); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	return time.Time{}
}

// Line renders the event as a single persistent log line:
//
//	<ISO-8601 timestamp> [<LEVEL>] <message>
//
// Line never contains a newline; control characters in the message are
// escaped so an attacker supplied username cannot forge extra records.
func Line(e Event) string {
	level := e.Get("severity")
	if level == "" {
		level = LevelInfo
	}

	return fmt.Sprintf("%s [%s] %s", Date(e).Format(TimeFormat), strings.ToUpper(level), Printify(e.Get("message")))
}

// Printify escapes non printable runes as \x.. sequences.
func Printify(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// ToMap returns a map containing all available data which map
// a string key and value type.
func ToMap(ev Event) map[string]interface{} {
	mp := make(map[string]interface{})

	ev.Range(func(key, value interface{}) bool {
		if keyName, ok := key.(string); ok {
			mp[keyName] = value
		}
		return true
	})

	return mp
}
