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
	"io"
	"os"
	"time"
)

// DriverFactory returns the filesystem driver for a session that logged in
// with the given home directory.
type DriverFactory func(home string) (Driver, error)

// Driver is the persistence layer behind the FTP commands. Paths are client
// paths, absolute or relative to the current directory.
type Driver interface {
	Stat(string) (os.FileInfo, error)

	ChangeDir(string) error

	ListDir(string) ([]os.FileInfo, error)

	DeleteDir(string) error

	DeleteFile(string) error

	Rename(string, string) error

	MakeDir(string) error

	Chmod(string, os.FileMode) error

	Chtimes(string, time.Time) error

	// GetFile opens the file positioned at offset and returns its size.
	GetFile(string, int64) (int64, io.ReadCloser, error)

	// PutFile stores the data and returns the number of bytes written. With
	// append set, data is added to an existing file.
	PutFile(string, io.Reader, bool) (int64, error)

	CurDir() string

	// RealPath maps a client path to the host path.
	RealPath(string) string
}
