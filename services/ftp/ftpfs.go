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

	"github.com/honeytrap/ftptrap/services/filesystem"
	"github.com/pkg/errors"
)

// Fs is a Driver storing files below a host directory.
type Fs struct {
	*filesystem.Htfs
}

// NewFileDriver returns a Driver rooted at home.
func NewFileDriver(home string) (Driver, error) {
	f, err := filesystem.New(home)
	if err != nil {
		return nil, err
	}

	return &Fs{f}, nil
}

func (ftp *Fs) Stat(path string) (os.FileInfo, error) {
	return os.Lstat(ftp.RealPath(path))
}

func (ftp *Fs) ChangeDir(path string) error {
	return ftp.Htfs.ChangeDir(path)
}

func (ftp *Fs) ListDir(path string) ([]os.FileInfo, error) {
	p := ftp.RealPath(path)

	info, err := os.Lstat(p)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []os.FileInfo{info}, nil
	}

	dir, err := os.Open(p)
	if err != nil {
		return nil, err
	}

	defer dir.Close()

	return dir.Readdir(-1)
}

func (ftp *Fs) DeleteDir(path string) error {
	p := ftp.RealPath(path)

	info, err := os.Lstat(p)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return errors.New("not a directory")
	}

	if p == ftp.RealPath("/") {
		return errors.New("can not remove root directory")
	}

	return os.Remove(p)
}

func (ftp *Fs) DeleteFile(path string) error {
	p := ftp.RealPath(path)

	info, err := os.Lstat(p)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return errors.New("is a directory")
	}

	return os.Remove(p)
}

func (ftp *Fs) Rename(from, to string) error {
	return os.Rename(ftp.RealPath(from), ftp.RealPath(to))
}

func (ftp *Fs) MakeDir(path string) error {
	return os.Mkdir(ftp.RealPath(path), 0750)
}

func (ftp *Fs) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(ftp.RealPath(path), mode.Perm())
}

func (ftp *Fs) Chtimes(path string, t time.Time) error {
	return os.Chtimes(ftp.RealPath(path), t, t)
}

func (ftp *Fs) GetFile(path string, offset int64) (int64, io.ReadCloser, error) {
	of, err := os.Open(ftp.RealPath(path))
	if err != nil {
		return 0, nil, err
	}

	info, err := of.Stat()
	if err != nil {
		of.Close()
		return 0, nil, err
	}

	if info.IsDir() {
		of.Close()
		return 0, nil, errors.New("is a directory")
	}

	if _, err := of.Seek(offset, io.SeekStart); err != nil {
		of.Close()
		return 0, nil, err
	}

	return info.Size(), of, nil
}

func (ftp *Fs) PutFile(path string, data io.Reader, appendData bool) (int64, error) {
	p := ftp.RealPath(path)

	if info, err := os.Lstat(p); err == nil && info.IsDir() {
		return 0, errors.New("a directory has the same name")
	} else if err != nil && !os.IsNotExist(err) {
		return 0, errors.Wrap(err, "put file")
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendData {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	of, err := os.OpenFile(p, flags, 0640)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(of, data)
	if cerr := of.Close(); err == nil {
		err = cerr
	}

	return n, err
}

func (ftp *Fs) CurDir() string {
	return ftp.Cwd()
}
