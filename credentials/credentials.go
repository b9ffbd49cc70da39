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
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/credentials")

// ErrInvalidCredential is returned when a password change is malformed. The
// previously active credential stays in place.
var ErrInvalidCredential = errors.New("invalid credential: password must not be empty")

// Credential is the lure identity offered to attackers. Values are never
// mutated after construction; a Store swaps whole Credentials.
type Credential struct {
	Username    string
	Password    string
	HomeDir     string
	Permissions Permissions
}

// Store holds the single active Credential. Readers get a consistent
// snapshot, writers are serialized and publish a fresh copy.
type Store struct {
	v  atomic.Value
	mu sync.Mutex
}

// New returns a Store seeded with the given credential.
func New(c Credential) (*Store, error) {
	if isBlank(c.Username) {
		return nil, errors.New("invalid credential: username must not be empty")
	}

	if isBlank(c.Password) {
		return nil, ErrInvalidCredential
	}

	s := &Store{}
	s.v.Store(&c)
	return s, nil
}

// Current returns a snapshot of the active credential.
func (s *Store) Current() Credential {
	return *s.v.Load().(*Credential)
}

// Replace swaps the password of the active credential, keeping username,
// home directory and permissions. The store does not log the outcome.
func (s *Store) Replace(password string) error {
	if isBlank(password) {
		return ErrInvalidCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Current()
	next.Password = password

	s.v.Store(&next)
	return nil
}

// Authenticate checks the given pair against the credential active at the
// time of the call and returns the snapshot that was used.
func (s *Store) Authenticate(username, password string) (Credential, bool) {
	c := s.Current()

	if username != c.Username || password != c.Password {
		log.Debugf("Rejected credentials for user %q", username)
		return c, false
	}

	return c, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
