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
	"context"
	"net"

	"github.com/honeytrap/ftptrap/credentials"
	"github.com/honeytrap/ftptrap/storage"
	logging "github.com/op/go-logging"
	"github.com/rs/xid"
)

var log = logging.MustGetLogger("ftptrap/services/ftp")

// Session identifies one client connection.
type Session struct {
	ID         string
	RemoteAddr net.Addr
	LocalAddr  net.Addr
}

// Upload describes a file received from a client.
type Upload struct {
	// Path is the location of the stored file on the host.
	Path   string
	Size   int64
	SHA256 string
}

// Observer receives the lifecycle events of every session. Calls for one
// session are made sequentially from the goroutine serving it.
type Observer interface {
	OnConnect(Session)
	OnDisconnect(Session)
	OnLoginResult(s Session, username, password string, ok bool)
	OnUpload(Session, Upload)
}

// Service is the FTP protocol engine. It is safe for concurrent use; each
// call to Handle serves one connection.
type Service struct {
	opts *ServerOpts

	auth     Authorizer
	observer Observer
	drivers  DriverFactory
	uploads  *ftpStorage
}

// ServiceFunc configures a Service.
type ServiceFunc func(*Service) error

// WithObserver sets the observer notified of session events.
func WithObserver(o Observer) ServiceFunc {
	return func(s *Service) error {
		s.observer = o
		return nil
	}
}

// WithOpts sets the server options.
func WithOpts(opts ServerOpts) ServiceFunc {
	return func(s *Service) error {
		s.opts = serverOptsWithDefaults(&opts)
		return nil
	}
}

// WithDriverFactory overrides how a filesystem driver is made for a
// logged in user.
func WithDriverFactory(fn DriverFactory) ServiceFunc {
	return func(s *Service) error {
		s.drivers = fn
		return nil
	}
}

// WithStorage enables the upload index in the given storage namespace.
func WithStorage(st storage.Storage) ServiceFunc {
	return func(s *Service) error {
		s.uploads = &ftpStorage{Storage: st}
		return nil
	}
}

// New returns a Service authenticating against auth.
func New(auth Authorizer, options ...ServiceFunc) (*Service, error) {
	s := &Service{
		opts:     serverOptsWithDefaults(nil),
		auth:     auth,
		observer: nopObserver{},
		drivers:  NewFileDriver,
	}

	for _, fn := range options {
		if err := fn(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Handle serves the connection until the client quits, the connection
// fails or ctx is cancelled.
func (s *Service) Handle(ctx context.Context, conn net.Conn) error {
	sess := Session{
		ID:         xid.New().String(),
		RemoteAddr: conn.RemoteAddr(),
		LocalAddr:  conn.LocalAddr(),
	}

	c := s.newConn(ctx, conn, sess)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			log.Debugf("%s: closing on shutdown", sess.ID)
			c.Close()
		case <-done:
		}
	}()

	s.observer.OnConnect(sess)
	defer s.observer.OnDisconnect(sess)

	c.Serve()
	return nil
}

type nopObserver struct{}

func (nopObserver) OnConnect(Session) {}
func (nopObserver) OnDisconnect(Session) {}
func (nopObserver) OnLoginResult(Session, string, string, bool) {}
func (nopObserver) OnUpload(Session, Upload) {}

var _ Authorizer = (*credentials.Store)(nil)
