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
package utils

import (
	"net"
	"testing"
	"time"
)

func TestTimeoutConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	defer ln.Close()

	go func() {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			return
		}

		defer c.Close()

		c.Write([]byte("a"))
		time.Sleep(time.Second)
	}()

	c, err := ln.Accept()
	if err != nil {
		t.Fatal(err)
	}

	tc := TimeoutConn(c, 50*time.Millisecond)
	defer tc.Close()

	buf := make([]byte, 1)
	if _, err := tc.Read(buf); err != nil {
		t.Fatalf("First read failed: %s", err)
	}

	_, err = tc.Read(buf)
	if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
		t.Errorf("Expected timeout on idle peer, got %v", err)
	}
}

func TestTimeoutConnDisabled(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	if TimeoutConn(a, 0) != a {
		t.Error("Zero timeout should return the connection unchanged")
	}
}

func TestRecoverHandler(t *testing.T) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer RecoverHandler()

		panic("boom")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Goroutine did not finish")
	}
}
