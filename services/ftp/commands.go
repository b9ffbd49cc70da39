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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/honeytrap/ftptrap/credentials"
)

type command struct {
	// param is set when the command needs an argument
	param bool
	// auth is set when the command needs a logged in user
	auth bool
	// perm is the permission the user needs
	perm credentials.Permissions

	fn func(*Conn, string)
}

var commands = map[string]*command{
	"USER": {param: true, fn: (*Conn).cmdUser},
	"PASS": {fn: (*Conn).cmdPass},
	"QUIT": {fn: (*Conn).cmdQuit},
	"NOOP": {fn: (*Conn).cmdNoop},
	"SYST": {fn: (*Conn).cmdSyst},
	"FEAT": {fn: (*Conn).cmdFeat},
	"OPTS": {param: true, fn: (*Conn).cmdOpts},

	"TYPE": {param: true, auth: true, fn: (*Conn).cmdType},
	"MODE": {param: true, auth: true, fn: (*Conn).cmdMode},
	"STRU": {param: true, auth: true, fn: (*Conn).cmdStru},
	"ALLO": {auth: true, fn: (*Conn).cmdAllo},
	"REST": {param: true, auth: true, fn: (*Conn).cmdRest},

	"PWD":  {auth: true, fn: (*Conn).cmdPwd},
	"XPWD": {auth: true, fn: (*Conn).cmdPwd},
	"CWD":  {param: true, auth: true, perm: credentials.PermChangeDir, fn: (*Conn).cmdCwd},
	"XCWD": {param: true, auth: true, perm: credentials.PermChangeDir, fn: (*Conn).cmdCwd},
	"CDUP": {auth: true, perm: credentials.PermChangeDir, fn: (*Conn).cmdCdup},

	"PASV": {auth: true, fn: (*Conn).cmdPasv},
	"EPSV": {auth: true, fn: (*Conn).cmdEpsv},
	"PORT": {param: true, auth: true, fn: (*Conn).cmdPort},

	"LIST": {auth: true, perm: credentials.PermList, fn: (*Conn).cmdList},
	"NLST": {auth: true, perm: credentials.PermList, fn: (*Conn).cmdNlst},
	"SIZE": {param: true, auth: true, perm: credentials.PermList, fn: (*Conn).cmdSize},
	"MDTM": {param: true, auth: true, perm: credentials.PermList, fn: (*Conn).cmdMdtm},

	"RETR": {param: true, auth: true, perm: credentials.PermRetrieve, fn: (*Conn).cmdRetr},
	"STOR": {param: true, auth: true, perm: credentials.PermStore, fn: (*Conn).cmdStor},
	"APPE": {param: true, auth: true, perm: credentials.PermAppend, fn: (*Conn).cmdAppe},
	"DELE": {param: true, auth: true, perm: credentials.PermDelete, fn: (*Conn).cmdDele},
	"MKD":  {param: true, auth: true, perm: credentials.PermMakeDir, fn: (*Conn).cmdMkd},
	"XMKD": {param: true, auth: true, perm: credentials.PermMakeDir, fn: (*Conn).cmdMkd},
	"RMD":  {param: true, auth: true, perm: credentials.PermDelete, fn: (*Conn).cmdRmd},
	"XRMD": {param: true, auth: true, perm: credentials.PermDelete, fn: (*Conn).cmdRmd},
	"RNFR": {param: true, auth: true, perm: credentials.PermRename, fn: (*Conn).cmdRnfr},
	"RNTO": {param: true, auth: true, perm: credentials.PermRename, fn: (*Conn).cmdRnto},
	"MFMT": {param: true, auth: true, perm: credentials.PermModifyTime, fn: (*Conn).cmdMfmt},
	"SITE": {param: true, auth: true, fn: (*Conn).cmdSite},
}

var features = []string{
	"EPSV",
	"MDTM",
	"MFMT",
	"PASV",
	"REST STREAM",
	"SIZE",
	"UTF8",
}

func (conn *Conn) cmdUser(param string) {
	conn.reqUser = param
	conn.user = ""
	conn.driver = nil

	conn.writeMessage(StatusUserOK, "")
}

func (conn *Conn) cmdPass(param string) {
	if conn.IsLogin() {
		conn.writeMessage(StatusBadSequence, "User already authenticated.")
		return
	}

	if conn.reqUser == "" {
		conn.writeMessage(StatusBadSequence, "Login with USER first.")
		return
	}

	username := conn.reqUser
	conn.reqUser = ""

	if conn.logins != nil {
		if err := conn.logins.Wait(conn.ctx); err != nil {
			return
		}
	}

	identity, ok := conn.service.auth.Authenticate(username, param)

	conn.service.observer.OnLoginResult(conn.session, username, param, ok)

	if !ok {
		conn.writeMessage(StatusNotLoggedIn, "Authentication failed.")
		return
	}

	driver, err := conn.service.drivers(identity.HomeDir)
	if err != nil {
		log.Errorf("%s: Could not open home directory %s: %s", conn.session.ID, identity.HomeDir, err.Error())
		conn.writeMessage(StatusNotLoggedIn, "Home directory unavailable.")
		return
	}

	conn.user = username
	conn.identity = identity
	conn.driver = driver

	conn.writeMessage(StatusLoggedIn, "")
}

func (conn *Conn) cmdQuit(param string) {
	conn.writeMessage(StatusClosing, "")
	conn.Close()
}

func (conn *Conn) cmdNoop(param string) {
	conn.writeMessage(StatusCommandOK, "NOOP ok.")
}

func (conn *Conn) cmdSyst(param string) {
	conn.writeMessage(StatusName, "")
}

func (conn *Conn) cmdFeat(param string) {
	conn.writeMessageMultiline(StatusSystem, "Features supported:", features, "End FEAT.")
}

func (conn *Conn) cmdOpts(param string) {
	if strings.EqualFold(param, "UTF8 ON") || strings.EqualFold(param, "UTF8") {
		conn.writeMessage(StatusCommandOK, "Always in UTF8 mode.")
		return
	}

	conn.writeMessage(StatusBadArguments, "Invalid OPTS argument.")
}

func (conn *Conn) cmdType(param string) {
	switch strings.ToUpper(param) {
	case "A", "A N":
		conn.writeMessage(StatusCommandOK, "Type set to: ASCII.")
	case "I", "L 8":
		conn.writeMessage(StatusCommandOK, "Type set to: Binary.")
	default:
		conn.writeMessage(StatusNotImplementedParameter, "Unsupported type.")
	}
}

func (conn *Conn) cmdMode(param string) {
	if strings.ToUpper(param) == "S" {
		conn.writeMessage(StatusCommandOK, "Transfer mode set to: S")
		return
	}

	conn.writeMessage(StatusNotImplementedParameter, "Unimplemented MODE type.")
}

func (conn *Conn) cmdStru(param string) {
	if strings.ToUpper(param) == "F" {
		conn.writeMessage(StatusCommandOK, "File transfer structure set to: F.")
		return
	}

	conn.writeMessage(StatusNotImplementedParameter, "Unimplemented STRU type.")
}

func (conn *Conn) cmdAllo(param string) {
	conn.writeMessage(StatusCommandNotImplemented, "No storage allocation necessary.")
}

func (conn *Conn) cmdRest(param string) {
	pos, err := strconv.ParseInt(param, 10, 64)
	if err != nil || pos < 0 {
		conn.writeMessage(StatusBadArguments, "Invalid REST parameter.")
		return
	}

	conn.lastFilePos = pos
	conn.writeMessage(StatusRequestFilePending, fmt.Sprintf("Restarting at position %d.", pos))
}

func (conn *Conn) cmdPwd(param string) {
	conn.writeMessage(StatusPathCreated, quote(conn.driver.CurDir())+" is the current directory.")
}

func (conn *Conn) cmdCwd(param string) {
	if err := conn.driver.ChangeDir(param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusRequestedFileActionOK, quote(conn.driver.CurDir())+" is the current directory.")
}

func (conn *Conn) cmdCdup(param string) {
	conn.cmdCwd("..")
}

func (conn *Conn) openPassive() (DataSocket, bool) {
	socket, err := newPassiveSocket(conn.passiveListenIP(), conn.service.opts.passivePort(), conn.remoteIP(), conn.service.opts.IdleTimeout, conn.session.ID)
	if err != nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "")
		return nil, false
	}

	conn.setDataConn(socket)
	return socket, true
}

func (conn *Conn) cmdPasv(param string) {
	ip := net.ParseIP(conn.passiveListenIP()).To4()
	if ip == nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "PASV needs an IPv4 address, use EPSV.")
		return
	}

	socket, ok := conn.openPassive()
	if !ok {
		return
	}

	p1 := socket.Port() / 256
	p2 := socket.Port() - (p1 * 256)

	conn.writeMessage(StatusPassiveMode, fmt.Sprintf("Entering Passive Mode (%d,%d,%d,%d,%d,%d).", ip[0], ip[1], ip[2], ip[3], p1, p2))
}

func (conn *Conn) cmdEpsv(param string) {
	if strings.EqualFold(param, "ALL") {
		conn.writeMessage(StatusCommandOK, "EPSV ALL ok.")
		return
	}

	socket, ok := conn.openPassive()
	if !ok {
		return
	}

	conn.writeMessage(StatusExtendedPassiveMode, fmt.Sprintf("Entering Extended Passive Mode (|||%d|).", socket.Port()))
}

// parsePort parses the h1,h2,h3,h4,p1,p2 argument of PORT.
func parsePort(param string) (string, int, bool) {
	nums := strings.Split(param, ",")
	if len(nums) != 6 {
		return "", 0, false
	}

	var b [6]int
	for i, s := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 || n > 255 {
			return "", 0, false
		}
		b[i] = n
	}

	host := fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
	return host, b[4]*256 + b[5], true
}

func (conn *Conn) cmdPort(param string) {
	host, port, ok := parsePort(param)
	if !ok {
		conn.writeMessage(StatusBadArguments, "Invalid PORT format.")
		return
	}

	if port < 1024 {
		conn.writeMessage(StatusBadArguments, "Can't connect over a privileged port.")
		return
	}

	if !net.ParseIP(host).Equal(net.ParseIP(conn.remoteIP())) {
		log.Debugf("%s: Rejected data connection to foreign address %s", conn.session.ID, host)
		conn.writeMessage(StatusBadArguments, "Rejected data connection to foreign address.")
		return
	}

	socket, err := newActiveSocket(host, port, conn.service.opts.IdleTimeout, conn.session.ID)
	if err != nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "")
		return
	}

	conn.setDataConn(socket)
	conn.writeMessage(StatusCommandOK, "Active data connection established.")
}

// listPath strips ls style flags clients send with LIST.
func listPath(param string) string {
	var path []string
	for _, f := range strings.Fields(param) {
		if strings.HasPrefix(f, "-") {
			continue
		}
		path = append(path, f)
	}
	return strings.Join(path, " ")
}

func (conn *Conn) listDir(param string) (listFormatter, bool) {
	list, err := conn.driver.ListDir(listPath(param))
	if err != nil {
		conn.closeDataConn()
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return nil, false
	}

	return listFormatter(list), true
}

func (conn *Conn) cmdList(param string) {
	if list, ok := conn.listDir(param); ok {
		conn.sendOutofbandData(list.Detailed(time.Now()))
	}
}

func (conn *Conn) cmdNlst(param string) {
	if list, ok := conn.listDir(param); ok {
		conn.sendOutofbandData(list.Short())
	}
}

func (conn *Conn) cmdSize(param string) {
	info, err := conn.driver.Stat(param)
	if err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	if info.IsDir() {
		conn.writeMessage(StatusFileUnavailable, "Not a regular file.")
		return
	}

	conn.writeMessage(StatusFile, strconv.FormatInt(info.Size(), 10))
}

func (conn *Conn) cmdMdtm(param string) {
	info, err := conn.driver.Stat(param)
	if err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusFile, info.ModTime().UTC().Format("20060102150405"))
}

func (conn *Conn) cmdRetr(param string) {
	dc := conn.dataSocket()
	if dc == nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "Use PORT or PASV first.")
		return
	}

	offset := conn.lastFilePos
	conn.lastFilePos = 0

	_, data, err := conn.driver.GetFile(param, offset)
	if err != nil {
		conn.closeDataConn()
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	defer data.Close()

	conn.writeMessage(StatusAboutToSend, "Data connection already open. Transfer starting.")

	if err := conn.sendOutofBandDataWriter(dc, data); err != nil {
		log.Debugf("%s: RETR %s: %s", conn.session.ID, param, err.Error())
	}
}

func (conn *Conn) cmdStor(param string) {
	conn.storeFile(param, false)
}

func (conn *Conn) cmdAppe(param string) {
	conn.storeFile(param, true)
}

// storeFile receives a file on the data connection. A completed upload is
// reported to the observer and indexed before the client gets the final
// reply.
func (conn *Conn) storeFile(param string, appendData bool) {
	conn.lastFilePos = 0

	dc := conn.dataSocket()
	if dc == nil {
		conn.writeMessage(StatusCanNotOpenDataConnection, "Use PORT or PASV first.")
		return
	}

	conn.writeMessage(StatusAboutToSend, "Ok to send data.")

	hash := sha256.New()

	n, err := conn.driver.PutFile(param, io.TeeReader(dc, hash), appendData)
	conn.closeDataConn()

	if err != nil {
		log.Errorf("%s: Could not store %s: %s", conn.session.ID, param, err.Error())
		conn.writeMessage(StatusActionAborted, "Error writing file.")
		return
	}

	upload := Upload{
		Path:   conn.driver.RealPath(param),
		Size:   n,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}

	conn.service.observer.OnUpload(conn.session, upload)

	if conn.service.uploads != nil {
		if err := conn.service.uploads.RecordUpload(upload, conn.remoteIP()); err != nil {
			log.Errorf("%s: Could not index upload %s: %s", conn.session.ID, upload.SHA256, err.Error())
		}
	}

	conn.writeMessage(StatusClosingDataConnection, "")
}

func (conn *Conn) cmdDele(param string) {
	if err := conn.driver.DeleteFile(param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusRequestedFileActionOK, "File removed.")
}

func (conn *Conn) cmdMkd(param string) {
	if err := conn.driver.MakeDir(param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusPathCreated, quote(param)+" directory created.")
}

func (conn *Conn) cmdRmd(param string) {
	if err := conn.driver.DeleteDir(param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusRequestedFileActionOK, "Directory removed.")
}

func (conn *Conn) cmdRnfr(param string) {
	if _, err := conn.driver.Stat(param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.renameFrom = param
	conn.writeMessage(StatusRequestFilePending, "Ready for destination name.")
}

func (conn *Conn) cmdRnto(param string) {
	from := conn.renameFrom
	conn.renameFrom = ""

	if from == "" {
		conn.writeMessage(StatusBadSequence, "Use RNFR first.")
		return
	}

	if err := conn.driver.Rename(from, param); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusRequestedFileActionOK, "Renaming ok.")
}

func (conn *Conn) cmdMfmt(param string) {
	parts := strings.SplitN(param, " ", 2)
	if len(parts) != 2 {
		conn.writeMessage(StatusBadArguments, "Invalid MFMT parameters.")
		return
	}

	t, err := time.Parse("20060102150405", parts[0])
	if err != nil {
		conn.writeMessage(StatusBadArguments, "Invalid time format.")
		return
	}

	if err := conn.driver.Chtimes(parts[1], t); err != nil {
		conn.writeMessage(StatusFileUnavailable, fsMessage(err))
		return
	}

	conn.writeMessage(StatusFile, fmt.Sprintf("Modify=%s; %s.", parts[0], parts[1]))
}

func (conn *Conn) cmdSite(param string) {
	fields := strings.Fields(param)

	switch strings.ToUpper(fields[0]) {
	case "HELP":
		conn.writeMessageMultiline(StatusHelp, "The following SITE commands are recognized:", []string{"CHMOD", "HELP"}, "Help SITE command successful.")
	case "CHMOD":
		if !conn.identity.Permissions.Has(credentials.PermChmod) {
			conn.writeMessage(StatusFileUnavailable, "Not enough privileges.")
			return
		}

		if len(fields) != 3 {
			conn.writeMessage(StatusBadArguments, "Syntax error: SITE CHMOD mode path.")
			return
		}

		mode, err := strconv.ParseUint(fields[1], 8, 32)
		if err != nil || mode > 0777 {
			conn.writeMessage(StatusBadArguments, "Invalid SITE CHMOD format.")
			return
		}

		if err := conn.driver.Chmod(fields[2], os.FileMode(mode)); err != nil {
			conn.writeMessage(StatusFileUnavailable, fsMessage(err))
			return
		}

		conn.writeMessage(StatusCommandOK, "SITE CHMOD successful.")
	default:
		conn.writeMessage(StatusBadArguments, "Unknown SITE command.")
	}
}
