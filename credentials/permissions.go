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
package credentials

import (
	"fmt"
	"strings"
)

// Permissions is a set of capability flags granted to the lure user.
type Permissions uint16

// Capability flags, named after their pyftpdlib letters.
const (
	PermChangeDir  Permissions = 1 << iota // e
	PermList                               // l
	PermRetrieve                           // r
	PermAppend                             // a
	PermDelete                             // d
	PermRename                             // f
	PermMakeDir                            // m
	PermStore                              // w
	PermChmod                              // M
	PermModifyTime                         // T
)

// DefaultPermissions is the full read/write set handed out to the lure user.
const DefaultPermissions = "elradfmwMT"

var permLetters = []struct {
	letter byte
	perm   Permissions
}{
	{'e', PermChangeDir},
	{'l', PermList},
	{'r', PermRetrieve},
	{'a', PermAppend},
	{'d', PermDelete},
	{'f', PermRename},
	{'m', PermMakeDir},
	{'w', PermStore},
	{'M', PermChmod},
	{'T', PermModifyTime},
}

// ParsePermissions parses a permission string like "elradfmwMT".
func ParsePermissions(s string) (Permissions, error) {
	var p Permissions

outer:
	for i := 0; i < len(s); i++ {
		for _, pl := range permLetters {
			if pl.letter == s[i] {
				p |= pl.perm
				continue outer
			}
		}

		return 0, fmt.Errorf("unknown permission %q in %q", s[i], s)
	}

	return p, nil
}

// MustParsePermissions is like ParsePermissions but panics on error.
func MustParsePermissions(s string) Permissions {
	p, err := ParsePermissions(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Has reports whether every flag in q is granted.
func (p Permissions) Has(q Permissions) bool {
	return p&q == q
}

func (p Permissions) String() string {
	var b strings.Builder
	for _, pl := range permLetters {
		if p.Has(pl.perm) {
			b.WriteByte(pl.letter)
		}
	}
	return b.String()
}
