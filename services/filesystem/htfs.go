/*
* Honeytrap
* Copyright (C) 2016-2017 DutchSec (https://dutchsec.com/)
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
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Htfs is a sandboxed view of a host directory. Client paths, absolute or
// relative to the current directory, never resolve outside the root.
type Htfs struct {
	root string //absolute path on host
	cwd  string //current working directory relative to root
}

// RealPath maps a client path to a path on the host. The result is always
// inside the root.
func (f *Htfs) RealPath(path string) string {
	var abspath string

	if !filepath.IsAbs(path) {
		abspath = filepath.Join(f.cwd, path)
	} else {
		abspath = filepath.Clean(path)
	}

	return filepath.Join(f.root, abspath)
}

// Root returns the host directory.
func (f *Htfs) Root() string {
	return f.root
}

func (f *Htfs) Cwd() string {
	return f.cwd
}

func (f *Htfs) ChangeDir(path string) error {
	rpath := f.RealPath(path)

	d, err := os.Lstat(rpath)
	if err != nil {
		return err
	}

	if !d.IsDir() {
		return errors.Errorf("not a directory: %s", path)
	}

	rel, err := filepath.Rel(f.root, rpath)
	if err != nil {
		return err
	}

	f.cwd = filepath.Join(string(filepath.Separator), rel)
	return nil
}

// New returns a filesystem rooted at root, which must be an existing
// directory.
func New(root string) (*Htfs, error) {
	if root == "" {
		return nil, errors.New("no root directory")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "bad root path %s", root)
	}

	if !info.IsDir() {
		return nil, errors.Errorf("bad root path %s: not a directory", root)
	}

	return &Htfs{
		root: abs,
		cwd:  string(filepath.Separator),
	}, nil
}
