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
	"testing"
	"time"

	"github.com/honeytrap/ftptrap/listener"
)

func start(ctx context.Context, t *testing.T, address string) listener.Listener {
	t.Helper()

	l, err := New(listener.WithAddress("tcp", address))
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	return l
}

func TestAccept(t *testing.T) {
	l := start(context.Background(), t, "127.0.0.1:0")
	defer l.Close()

	addr := l.(listener.Addresser).Addr()
	if addr == nil {
		t.Fatal("No address after Start")
	}

	go func() {
		c, err := net.Dial("tcp", addr.String())
		if err == nil {
			c.Write([]byte("x"))
			c.Close()
		}
	}()

	c, err := l.Accept()
	if err != nil {
		t.Fatal(err)
	}

	defer c.Close()

	buf := make([]byte, 1)
	if _, err := c.Read(buf); err != nil || buf[0] != 'x' {
		t.Errorf("Read %q, %v", buf, err)
	}
}

func TestCloseUnblocksAccept(t *testing.T) {
	l := start(context.Background(), t, "127.0.0.1:0")

	errc := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)

	l.Close()
	l.Close()

	select {
	case err := <-errc:
		if err != listener.ErrClosed {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Accept still blocked after Close")
	}
}

func TestContextCancelCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	l := start(ctx, t, "127.0.0.1:0")
	addr := l.(listener.Addresser).Addr().String()

	cancel()

	if _, err := l.Accept(); err != listener.ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return
		}
		c.Close()
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Port %s still accepting after cancel", addr)
}

func TestPortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	defer busy.Close()

	l, err := New(listener.WithAddress("tcp", busy.Addr().String()))
	if err != nil {
		t.Fatal(err)
	}

	err = l.Start(context.Background())

	se, ok := err.(*listener.StartError)
	if !ok {
		t.Fatalf("Expected *StartError, got %v", err)
	}

	if se.Addr != busy.Addr().String() {
		t.Errorf("StartError for %s, want %s", se.Addr, busy.Addr())
	}
}

func TestWithAddressRejectsUDP(t *testing.T) {
	if _, err := New(listener.WithAddress("udp", "127.0.0.1:21")); err == nil {
		t.Error("Expected error for udp address")
	}
}
