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
package socket

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/honeytrap/ftptrap/listener"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/listener/socket")

type socketListener struct {
	socketConfig

	ch   chan net.Conn
	done chan struct{}
	once sync.Once

	m         sync.Mutex
	listeners []net.Listener
}

type socketConfig struct {
	Addresses []net.Addr
}

func (sc *socketConfig) AddAddress(a net.Addr) {
	sc.Addresses = append(sc.Addresses, a)
}

// New returns a tcp socket listener. Addresses are added with
// listener.WithAddress.
func New(options ...func(listener.Listener) error) (listener.Listener, error) {
	l := socketListener{
		socketConfig: socketConfig{},
		ch:           make(chan net.Conn),
		done:         make(chan struct{}),
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return nil, err
		}
	}

	return &l, nil
}

// Start binds every address. If one fails, the ones already bound are
// released again. Cancelling ctx closes the listener.
func (sl *socketListener) Start(ctx context.Context) error {
	for _, address := range sl.Addresses {
		l, err := net.Listen(address.Network(), address.String())
		if err != nil {
			sl.Close()
			return &listener.StartError{Addr: address.String(), Err: err}
		}

		log.Infof("Listener started: tcp/%s", l.Addr())

		sl.m.Lock()
		sl.listeners = append(sl.listeners, l)
		sl.m.Unlock()

		go sl.serve(l)
	}

	go func() {
		select {
		case <-ctx.Done():
			sl.Close()
		case <-sl.done:
		}
	}()

	return nil
}

func (sl *socketListener) serve(l net.Listener) {
	var delay time.Duration

	for {
		c, err := l.Accept()
		if err != nil {
			select {
			case <-sl.done:
				return
			default:
			}

			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else if delay *= 2; delay > time.Second {
					delay = time.Second
				}

				log.Errorf("Error accepting connection: %s; retrying in %s", err.Error(), delay)
				time.Sleep(delay)
				continue
			}

			log.Errorf("Error accepting connection: %s", err.Error())
			return
		}

		delay = 0

		select {
		case sl.ch <- c:
		case <-sl.done:
			c.Close()
			return
		}
	}
}

func (sl *socketListener) Accept() (net.Conn, error) {
	select {
	case c := <-sl.ch:
		return c, nil
	case <-sl.done:
		return nil, listener.ErrClosed
	}
}

// Close stops accepting and unblocks pending Accept calls. It is safe to
// call more than once.
func (sl *socketListener) Close() error {
	sl.once.Do(func() {
		close(sl.done)

		sl.m.Lock()
		defer sl.m.Unlock()

		for _, l := range sl.listeners {
			l.Close()
		}
	})

	return nil
}

// Addr returns the bound address of the first listener, or nil before
// Start.
func (sl *socketListener) Addr() net.Addr {
	sl.m.Lock()
	defer sl.m.Unlock()

	if len(sl.listeners) == 0 {
		return nil
	}

	return sl.listeners[0].Addr()
}
