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
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/honeytrap/ftptrap/utils"
)

// dataTimeout bounds how long a data connection may take to be
// established.
var dataTimeout = 30 * time.Second

// DataSocket is used to send non-control data between the client and
// server.
type DataSocket interface {
	Host() string

	Port() int

	// the standard io.Reader interface
	Read(p []byte) (n int, err error)

	// the standard io.Writer interface
	Write(p []byte) (n int, err error)

	// the standard io.Closer interface
	Close() error
}

type ftpActiveSocket struct {
	conn net.Conn
	host string
	port int
}

// newActiveSocket dials the client. Reads and writes fail once the
// connection has been idle for longer than idle.
func newActiveSocket(remote string, port int, idle time.Duration, sessionid string) (DataSocket, error) {
	connectTo := net.JoinHostPort(remote, strconv.Itoa(port))

	log.Debugf("%s: Opening active data connection to %s", sessionid, connectTo)

	conn, err := net.DialTimeout("tcp", connectTo, dataTimeout)
	if err != nil {
		log.Debugf("%s: %s", sessionid, err.Error())
		return nil, err
	}

	return &ftpActiveSocket{
		conn: utils.TimeoutConn(conn, idle),
		host: remote,
		port: port,
	}, nil
}

func (socket *ftpActiveSocket) Host() string {
	return socket.host
}

func (socket *ftpActiveSocket) Port() int {
	return socket.port
}

func (socket *ftpActiveSocket) Read(p []byte) (n int, err error) {
	return socket.conn.Read(p)
}

func (socket *ftpActiveSocket) Write(p []byte) (n int, err error) {
	return socket.conn.Write(p)
}

func (socket *ftpActiveSocket) Close() error {
	return socket.conn.Close()
}

// ftpPassiveSocket accepts exactly one data connection from the client's
// address, then stops listening.
type ftpPassiveSocket struct {
	listener *net.TCPListener

	host string
	port int

	remote net.IP
	idle   time.Duration

	m    sync.Mutex
	conn net.Conn

	wg  sync.WaitGroup
	err error
}

func newPassiveSocket(host string, port int, remote string, idle time.Duration, sessionid string) (DataSocket, error) {
	socket := &ftpPassiveSocket{
		host:   host,
		port:   port,
		remote: net.ParseIP(remote),
		idle:   idle,
	}

	if err := socket.GoListenAndServe(sessionid); err != nil {
		return nil, err
	}

	return socket, nil
}

func (socket *ftpPassiveSocket) Host() string {
	return socket.host
}

func (socket *ftpPassiveSocket) Port() int {
	return socket.port
}

func (socket *ftpPassiveSocket) Read(p []byte) (n int, err error) {
	if err := socket.waitForOpenSocket(); err != nil {
		return 0, err
	}
	return socket.conn.Read(p)
}

func (socket *ftpPassiveSocket) Write(p []byte) (n int, err error) {
	if err := socket.waitForOpenSocket(); err != nil {
		return 0, err
	}
	return socket.conn.Write(p)
}

// Close stops the listener, unblocking a pending accept, and closes the
// data connection if one was made.
func (socket *ftpPassiveSocket) Close() error {
	socket.listener.Close()

	socket.wg.Wait()

	socket.m.Lock()
	defer socket.m.Unlock()

	if socket.conn != nil {
		return socket.conn.Close()
	}
	return nil
}

func (socket *ftpPassiveSocket) GoListenAndServe(sessionid string) error {
	laddr := &net.TCPAddr{Port: socket.port}

	listener, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		log.Debugf("%s: %s", sessionid, err.Error())
		return err
	}

	if err := listener.SetDeadline(time.Now().Add(dataTimeout)); err != nil {
		listener.Close()
		return err
	}

	socket.listener = listener
	socket.port = listener.Addr().(*net.TCPAddr).Port

	socket.wg.Add(1)

	go func() {
		defer socket.wg.Done()

		conn, err := socket.accept(sessionid)
		listener.Close()

		socket.m.Lock()
		defer socket.m.Unlock()

		if err != nil {
			log.Debugf("%s: passive accept: %s", sessionid, err.Error())
			socket.err = err
			return
		}

		socket.conn = utils.TimeoutConn(conn, socket.idle)
	}()

	return nil
}

// accept waits for a connection from the control connection's peer.
// Connections from other addresses are dropped.
func (socket *ftpPassiveSocket) accept(sessionid string) (net.Conn, error) {
	for {
		conn, err := socket.listener.Accept()
		if err != nil {
			return nil, err
		}

		if socket.remote == nil {
			return conn, nil
		}

		if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok && addr.IP.Equal(socket.remote) {
			return conn, nil
		}

		log.Warningf("%s: Dropped data connection from foreign address %s", sessionid, conn.RemoteAddr())
		conn.Close()
	}
}

func (socket *ftpPassiveSocket) waitForOpenSocket() error {
	socket.wg.Wait()
	return socket.err
}
