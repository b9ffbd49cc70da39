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
package server

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/honeytrap/ftptrap/config"
	"github.com/honeytrap/ftptrap/listener"
	"github.com/honeytrap/ftptrap/pushers/archive"
	"github.com/honeytrap/ftptrap/storage"
	client "github.com/jlaffaye/ftp"
)

type syncBuffer struct {
	m sync.Mutex
	b bytes.Buffer
}

func (sb *syncBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()

	return sb.b.Write(p)
}

func (sb *syncBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()

	return sb.b.String()
}

func testConfig(t *testing.T) (config.Config, string) {
	t.Helper()

	dir, err := ioutil.TempDir("", "ftptrap-server")
	if err != nil {
		t.Fatal(err)
	}

	c := config.Default
	c.BindIP = "127.0.0.1"
	c.Port = 0
	c.FTPRoot = filepath.Join(dir, "ftp_root")
	c.LogFile = filepath.Join(dir, "ftp_honeypot.log")
	c.DataDir = filepath.Join(dir, "data")
	c.ShutdownGrace = config.Delay(time.Second)

	return c, dir
}

type running struct {
	s   *Server
	out *syncBuffer
	err chan error
}

func (r *running) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-r.err:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for Run to return")
	}

	return nil
}

func run(ctx context.Context, t *testing.T, c config.Config, options ...OptionFn) *running {
	t.Helper()

	out := &syncBuffer{}

	s, err := New(append([]OptionFn{WithConfig(c), WithOutput(out)}, options...)...)
	if err != nil {
		t.Fatal(err)
	}

	r := &running{s: s, out: out, err: make(chan error, 1)}

	go func() {
		r.err <- s.Run(ctx)
	}()

	select {
	case <-s.Ready():
	case err := <-r.err:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for listener")
	}

	return r
}

func dial(t *testing.T, addr net.Addr) *client.ServerConn {
	t.Helper()

	c, err := client.Dial(addr.String(), client.DialWithTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func eventually(t *testing.T, what string, fn func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("Timeout waiting for %s", what)
}

func TestServer(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	pr, pw := io.Pipe()
	defer pw.Close()

	r := run(context.Background(), t, c, WithInput(pr))

	conn := dial(t, r.s.Addr())

	if err := conn.Login(c.FTPUser, "wrong"); err == nil {
		t.Errorf("Login with wrong password succeeded")
	}

	if err := conn.Login(c.FTPUser, c.FTPPass); err != nil {
		t.Fatalf("Login: %s", err)
	}

	if err := conn.Stor("evil.sh", strings.NewReader("#!/bin/sh\n")); err != nil {
		t.Fatalf("Stor: %s", err)
	}

	conn.Quit()

	eventually(t, "disconnect", func() bool {
		return strings.Contains(r.out.String(), "[-] Disconnected 127.0.0.1:")
	})

	if _, err := os.Stat(filepath.Join(c.FTPRoot, "evil.sh")); err != nil {
		t.Errorf("Upload did not land in the ftp root: %s", err)
	}

	if _, err := io.WriteString(pw, "passwd newpw123\n"); err != nil {
		t.Fatal(err)
	}

	eventually(t, "password change", func() bool {
		return r.s.Store().Current().Password == "newpw123"
	})

	conn = dial(t, r.s.Addr())

	if err := conn.Login(c.FTPUser, c.FTPPass); err == nil {
		t.Errorf("Old password still accepted")
	}

	if err := conn.Login(c.FTPUser, "newpw123"); err != nil {
		t.Errorf("New password rejected: %s", err)
	}

	conn.Quit()

	if _, err := io.WriteString(pw, "quit\n"); err != nil {
		t.Fatal(err)
	}

	if err := r.wait(t); err != nil {
		t.Fatalf("Run returned %s", err)
	}

	data, err := ioutil.ReadFile(c.LogFile)
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)

	ordered := []string{
		"[INFO] FTP Honeypot starting on 127.0.0.1:",
		"[INFO] [+] Connection from 127.0.0.1:",
		"[WARNING] [!] Login failed: user=testftppno9 pass=wrong from 127.0.0.1",
		"[INFO] [+] Login success: user=testftppno9 from 127.0.0.1",
		"[INFO] [+] File uploaded: " + filepath.Join(c.FTPRoot, "evil.sh") + " from 127.0.0.1",
		"[INFO] [-] Disconnected 127.0.0.1:",
		"[INFO] [+] Password changed for testftppno9",
		"[WARNING] [!] Login failed: user=testftppno9 pass=test@pno9 from 127.0.0.1",
		"[INFO] [+] Login success: user=testftppno9 from 127.0.0.1",
		"[INFO] Admin requested shutdown.",
		"[INFO] FTP Honeypot stopped.",
	}

	pos := 0
	for _, want := range ordered {
		i := strings.Index(text[pos:], want)
		if i < 0 {
			t.Fatalf("Expected %q after offset %d in log:\n%s", want, pos, text)
		}
		pos += i + len(want)
	}

	if n := strings.Count(text, "Password changed"); n != 1 {
		t.Errorf("Expected exactly one password change, got %d", n)
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if !strings.Contains(line, " [INFO] ") && !strings.Contains(line, " [WARNING] ") {
			t.Errorf("Malformed log line %q", line)
		}
	}

	out := r.out.String()
	if !strings.Contains(out, "FTP Honeypot running on 127.0.0.1:") {
		t.Errorf("Expected startup banner on the terminal, got:\n%s", out)
	}

	if !strings.Contains(out, "Login failed: user=testftppno9 pass=wrong") {
		t.Errorf("Expected events on the terminal, got:\n%s", out)
	}

	db, err := storage.Open(c.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	a, err := archive.New(db)
	if err != nil {
		t.Fatal(err)
	}

	events, err := a.(*archive.Backend).Events()
	if err != nil {
		t.Fatal(err)
	}

	uploads := 0
	for _, e := range events {
		if e["token"] == nil || e["token"] == "" {
			t.Errorf("Archived event without instance token: %v", e)
		}

		if e["category"] == "upload" {
			uploads++
		}
	}

	if uploads != 1 {
		t.Errorf("Expected one archived upload, got %d", uploads)
	}
}

func TestTokenIsStable(t *testing.T) {
	dir, err := ioutil.TempDir("", "ftptrap-token")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	first, err := loadToken(dir)
	if err != nil {
		t.Fatal(err)
	}

	second, err := loadToken(dir)
	if err != nil {
		t.Fatal(err)
	}

	if first == "" || first != second {
		t.Errorf("Expected stable token, got %q and %q", first, second)
	}
}

func TestPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	c.Port = ln.Addr().(*net.TCPAddr).Port

	out := &syncBuffer{}

	s, err := New(WithConfig(c), WithOutput(out), WithoutConsole())
	if err != nil {
		t.Fatal(err)
	}

	err = s.Run(context.Background())
	if _, ok := err.(*listener.StartError); !ok {
		t.Fatalf("Expected *listener.StartError, got %T: %v", err, err)
	}

	if !strings.Contains(out.String(), "Error starting listener") {
		t.Errorf("Expected bind error on the terminal, got %q", out.String())
	}

	select {
	case <-s.Ready():
		t.Errorf("Ready closed after a failed bind")
	default:
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	r := run(context.Background(), t, c, WithoutConsole())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.s.Shutdown()
		}()
	}
	wg.Wait()

	if err := r.wait(t); err != nil {
		t.Fatalf("Run returned %s", err)
	}

	r.s.Shutdown()

	if _, err := net.DialTimeout("tcp", r.s.Addr().String(), time.Second); err == nil {
		t.Errorf("Listener still accepting after shutdown")
	}
}

func TestContextCancelStops(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(context.Background())

	r := run(ctx, t, c, WithoutConsole())

	cancel()

	if err := r.wait(t); err != nil {
		t.Fatalf("Run returned %s", err)
	}
}

func TestGracePeriodClosesSessions(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	c.ShutdownGrace = config.Delay(100 * time.Millisecond)

	r := run(context.Background(), t, c, WithoutConsole())

	conn := dial(t, r.s.Addr())
	defer conn.Quit()

	if err := conn.Login(c.FTPUser, c.FTPPass); err != nil {
		t.Fatal(err)
	}

	start := time.Now()

	r.s.Shutdown()

	if err := r.wait(t); err != nil {
		t.Fatalf("Run returned %s", err)
	}

	if d := time.Since(start); d < 100*time.Millisecond {
		t.Errorf("Run returned after %s, before the grace period", d)
	}

	if err := conn.NoOp(); err == nil {
		t.Errorf("Session still served after forced close")
	}
}

func TestConsoleEOFKeepsServing(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	r := run(context.Background(), t, c, WithInput(strings.NewReader("")))

	eventually(t, "console end", func() bool {
		return strings.Contains(r.out.String(), "Admin console terminated by signal.")
	})

	conn := dial(t, r.s.Addr())

	if err := conn.Login(c.FTPUser, c.FTPPass); err != nil {
		t.Errorf("Login after console end: %s", err)
	}

	conn.Quit()

	r.s.Shutdown()

	if err := r.wait(t); err != nil {
		t.Fatalf("Run returned %s", err)
	}
}

func TestStalledUploadDisconnects(t *testing.T) {
	c, dir := testConfig(t)
	defer os.RemoveAll(dir)

	c.IdleTimeout = config.Delay(300 * time.Millisecond)

	r := run(context.Background(), t, c, WithoutConsole())
	defer r.s.Shutdown()

	conn, err := net.Dial("tcp", r.s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	tc := textproto.NewConn(conn)

	expect := func(code int) string {
		t.Helper()

		_, msg, err := tc.ReadResponse(code)
		if err != nil {
			t.Fatalf("Expected %d: %v", code, err)
		}
		return msg
	}

	expect(220)

	tc.PrintfLine("USER %s", c.FTPUser)
	expect(331)

	tc.PrintfLine("PASS %s", c.FTPPass)
	expect(230)

	tc.PrintfLine("EPSV")
	msg := expect(229)

	start, end := strings.Index(msg, "(|||"), strings.LastIndex(msg, "|)")
	if start < 0 || end < start+4 {
		t.Fatalf("Malformed EPSV reply %q", msg)
	}

	data, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", msg[start+4:end]))
	if err != nil {
		t.Fatal(err)
	}
	defer data.Close()

	tc.PrintfLine("STOR stall.bin")
	expect(150)

	eventually(t, "idle disconnect", func() bool {
		return strings.Contains(r.out.String(), "[-] Disconnected 127.0.0.1:")
	})

	if strings.Contains(r.out.String(), "File uploaded") {
		t.Errorf("Stalled upload reported as completed")
	}
}
