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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/honeytrap/ftptrap/credentials"
	"golang.org/x/time/rate"
)

var errLineTooLong = errors.New("command line too long")

// Conn holds the protocol state of one control connection.
type Conn struct {
	ctx context.Context

	conn          net.Conn
	controlReader *bufio.Reader
	controlWriter *bufio.Writer

	service *Service
	session Session

	// identity is the credential snapshot taken at login. Later password
	// changes do not affect the session.
	identity credentials.Credential
	driver   Driver

	reqUser     string
	user        string
	renameFrom  string
	lastFilePos int64

	m        sync.Mutex
	dataConn DataSocket
	closed   bool

	logins *rate.Limiter
}

func (conn *Conn) LoginUser() string {
	return conn.user
}

func (conn *Conn) IsLogin() bool {
	return len(conn.user) > 0
}

func (conn *Conn) passiveListenIP() string {
	if ip := conn.service.opts.PublicIP; len(ip) > 0 {
		return ip
	}

	host, _, err := net.SplitHostPort(conn.conn.LocalAddr().String())
	if err != nil {
		return ""
	}

	return host
}

func (conn *Conn) remoteIP() string {
	host, _, err := net.SplitHostPort(conn.session.RemoteAddr.String())
	if err != nil {
		return conn.session.RemoteAddr.String()
	}

	return host
}

// Serve reads FTP commands from the client and responds to them until the
// client quits or the connection is closed.
func (conn *Conn) Serve() {
	log.Debugf("%s: Connection Established", conn.session.ID)

	conn.writeMessage(StatusReady, conn.service.opts.WelcomeMessage)

	for {
		line, err := conn.readLine()
		if err == errLineTooLong {
			conn.writeMessage(StatusBadCommand, "Command line too long.")
			continue
		} else if err != nil {
			if err != io.EOF && !conn.isClosed() {
				log.Debugf("%s: Error: %s", conn.session.ID, err.Error())
			}

			break
		}

		conn.receiveLine(line)

		// QUIT command closes connection, break to avoid error on reading from
		// closed socket
		if conn.isClosed() {
			break
		}
	}

	conn.Close()

	log.Debugf("%s: Connection Terminated", conn.session.ID)
}

// Close will manually close this connection, even if the client isn't ready.
// It is safe to call from another goroutine.
func (conn *Conn) Close() {
	conn.m.Lock()
	conn.closed = true
	dc := conn.dataConn
	conn.dataConn = nil
	conn.m.Unlock()

	conn.conn.Close()

	if dc != nil {
		dc.Close()
	}
}

func (conn *Conn) isClosed() bool {
	conn.m.Lock()
	defer conn.m.Unlock()

	return conn.closed
}

// setDataConn replaces the pending data connection.
func (conn *Conn) setDataConn(dc DataSocket) {
	conn.m.Lock()
	prev := conn.dataConn
	conn.dataConn = dc
	conn.m.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (conn *Conn) dataSocket() DataSocket {
	conn.m.Lock()
	defer conn.m.Unlock()

	return conn.dataConn
}

func (conn *Conn) closeDataConn() {
	conn.setDataConn(nil)
}

func (conn *Conn) readLine() (string, error) {
	line, err := conn.controlReader.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		for err == bufio.ErrBufferFull {
			_, err = conn.controlReader.ReadSlice('\n')
		}

		if err != nil {
			return "", err
		}

		return "", errLineTooLong
	}

	return string(line), err
}

// receiveLine accepts a single line FTP command and co-ordinates an
// appropriate response.
func (conn *Conn) receiveLine(line string) {
	command, param := conn.parseLine(line)

	command = strings.ToUpper(command)

	if command == "PASS" {
		log.Debugf("%s: < PASS ****", conn.session.ID)
	} else {
		log.Debugf("%s: < %s %s", conn.session.ID, command, param)
	}

	cmdObj := commands[command]
	if cmdObj == nil {
		conn.writeMessage(StatusBadCommand, fmt.Sprintf("Command %q not understood.", command))
		return
	}

	if cmdObj.param && param == "" {
		conn.writeMessage(StatusBadArguments, "Syntax error: command needs an argument.")
	} else if cmdObj.auth && !conn.IsLogin() {
		conn.writeMessage(StatusNotLoggedIn, "")
	} else if cmdObj.perm != 0 && !conn.identity.Permissions.Has(cmdObj.perm) {
		conn.writeMessage(StatusFileUnavailable, "Not enough privileges.")
	} else {
		cmdObj.fn(conn, param)
	}
}

func (conn *Conn) parseLine(line string) (string, string) {
	params := strings.SplitN(strings.Trim(line, "\r\n"), " ", 2)
	if len(params) == 1 {
		return params[0], ""
	}
	return params[0], strings.TrimSpace(params[1])
}

// writeMessage will send a standard FTP response back to the client.
func (conn *Conn) writeMessage(code int, message string) (wrote int, err error) {
	if message == "" {
		message = statusText[code]
	}

	line := fmt.Sprintf("%d %s\r\n", code, message)
	wrote, err = conn.controlWriter.WriteString(line)
	conn.controlWriter.Flush()
	return
}

// writeMessageMultiline sends a multi line response, one line per entry.
func (conn *Conn) writeMessageMultiline(code int, header string, lines []string, footer string) (wrote int, err error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%d-%s\r\n", code, header)
	for _, l := range lines {
		fmt.Fprintf(&b, " %s\r\n", l)
	}
	fmt.Fprintf(&b, "%d %s\r\n", code, footer)

	wrote, err = conn.controlWriter.WriteString(b.String())
	conn.controlWriter.Flush()
	return
}

// sendOutofbandData will send data to the client via the currently open
// data socket.
func (conn *Conn) sendOutofbandData(data []byte) {
	dc := conn.dataSocket()
	if dc == nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "Use PORT or PASV first.")
		return
	}

	conn.writeMessage(StatusAboutToSend, "Here comes the directory listing.")

	_, err := dc.Write(data)
	conn.closeDataConn()

	if err != nil {
		conn.writeMessage(StatusTransfertAborted, "")
		return
	}

	conn.writeMessage(StatusClosingDataConnection, "")
}

func (conn *Conn) sendOutofBandDataWriter(dc DataSocket, data io.Reader) error {
	_, err := io.Copy(dc, data)
	conn.closeDataConn()

	if err != nil {
		conn.writeMessage(StatusTransfertAborted, "")
		return err
	}

	conn.writeMessage(StatusClosingDataConnection, "")
	return nil
}

// fsMessage turns a driver error into a reply that does not expose host
// paths.
func fsMessage(err error) string {
	switch {
	case os.IsNotExist(err):
		return "No such file or directory."
	case os.IsPermission(err):
		return "Permission denied."
	case os.IsExist(err):
		return "File exists."
	default:
		return "Operation failed."
	}
}

// quote formats a path for a 257 reply.
func quote(path string) string {
	return `"` + strings.Replace(path, `"`, `""`, -1) + `"`
}
