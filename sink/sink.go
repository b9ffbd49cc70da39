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
// Package sink turns session and operator activity into log events.
package sink

import (
	"net"

	"github.com/honeytrap/ftptrap/event"
	"github.com/honeytrap/ftptrap/pushers"
	"github.com/honeytrap/ftptrap/services/ftp"
)

// Sink records events on a channel, normally an event bus feeding the
// terminal and the durable log. Events are delivered synchronously, so
// events recorded by one goroutine keep their order.
type Sink struct {
	c pushers.Channel
}

// New returns a Sink delivering to c.
func New(c pushers.Channel) *Sink {
	return &Sink{c: c}
}

var _ ftp.Observer = (*Sink)(nil)

// Record builds an event of the given category with a capture time
// timestamp and delivers it.
func (s *Sink) Record(category string, remote net.Addr, opts ...event.Option) {
	base := []event.Option{
		event.Sensor("ftp"),
		event.Category(category),
		event.SeverityInfo,
		event.SourceAddr(remote),
	}

	s.c.Send(event.New(append(base, opts...)...))
}

// OnConnect records a new connection.
func (s *Sink) OnConnect(sess ftp.Session) {
	s.Record(event.CategoryConnect, sess.RemoteAddr,
		event.DestinationAddr(sess.LocalAddr),
		event.Custom("ftp.session-id", sess.ID),
		event.Message("[+] Connection from %s", hostPort(sess.RemoteAddr)),
	)
}

// OnDisconnect records the end of a connection.
func (s *Sink) OnDisconnect(sess ftp.Session) {
	s.Record(event.CategoryDisconnect, sess.RemoteAddr,
		event.Custom("ftp.session-id", sess.ID),
		event.Message("[-] Disconnected %s", hostPort(sess.RemoteAddr)),
	)
}

// OnLoginResult records an authentication attempt. The attempted password
// is only kept for failed attempts.
func (s *Sink) OnLoginResult(sess ftp.Session, username, password string, ok bool) {
	if ok {
		s.Record(event.CategoryLoginOK, sess.RemoteAddr,
			event.Custom("ftp.session-id", sess.ID),
			event.Custom("ftp.user", username),
			event.Message("[+] Login success: user=%s from %s", username, host(sess.RemoteAddr)),
		)
		return
	}

	s.Record(event.CategoryLoginFail, sess.RemoteAddr,
		event.SeverityWarning,
		event.Custom("ftp.session-id", sess.ID),
		event.Custom("ftp.user", username),
		event.Custom("ftp.password", password),
		event.Message("[!] Login failed: user=%s pass=%s from %s", username, password, host(sess.RemoteAddr)),
	)
}

// OnUpload records a completed file upload.
func (s *Sink) OnUpload(sess ftp.Session, upload ftp.Upload) {
	s.Record(event.CategoryUpload, sess.RemoteAddr,
		event.Custom("ftp.session-id", sess.ID),
		event.Custom("ftp.path", upload.Path),
		event.Custom("ftp.size", upload.Size),
		event.Custom("ftp.sha256", upload.SHA256),
		event.Message("[+] File uploaded: %s from %s", upload.Path, host(sess.RemoteAddr)),
	)
}

// PasswordChanged records an operator password change.
func (s *Sink) PasswordChanged(username string) {
	s.operator(event.CategoryPasswordChanged,
		event.Custom("ftp.user", username),
		event.Message("[+] Password changed for %s", username),
	)
}

// ShutdownRequested records an operator shutdown.
func (s *Sink) ShutdownRequested() {
	s.operator(event.CategoryShutdown, event.Message("Admin requested shutdown."))
}

// ConsoleEnded records the console stopping without a quit command.
func (s *Sink) ConsoleEnded() {
	s.operator(event.CategoryConsoleEnded,
		event.SeverityWarning,
		event.Message("Admin console terminated by signal."),
	)
}

// Started records the service start.
func (s *Sink) Started(addr net.Addr, username string) {
	s.operator(event.CategoryService,
		event.Custom("ftp.user", username),
		event.Message("FTP Honeypot starting on %s user=%s", addr.String(), username),
	)
}

// Stopped records the service stop.
func (s *Sink) Stopped() {
	s.operator(event.CategoryService, event.Message("FTP Honeypot stopped."))
}

func (s *Sink) operator(category string, opts ...event.Option) {
	base := []event.Option{
		event.Sensor("console"),
		event.Category(category),
		event.SeverityInfo,
	}

	s.c.Send(event.New(append(base, opts...)...))
}

func hostPort(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}

	return addr.String()
}

func host(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}

	if h, _, err := net.SplitHostPort(addr.String()); err == nil {
		return h
	}

	return addr.String()
}
