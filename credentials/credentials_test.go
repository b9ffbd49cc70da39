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
	"sync"
	"testing"
)

func lure() Credential {
	return Credential{
		Username:    "testftppno9",
		Password:    "test@pno9",
		HomeDir:     "/srv/ftp_root",
		Permissions: MustParsePermissions(DefaultPermissions),
	}
}

func TestReplacePreservesIdentity(t *testing.T) {
	s, err := New(lure())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Replace("newpw123"); err != nil {
		t.Fatalf("Replace failed: %s", err)
	}

	c := s.Current()

	want := lure()
	want.Password = "newpw123"

	if c != want {
		t.Errorf("Expected %+v, got %+v", want, c)
	}
}

func TestReplaceRejectsBlank(t *testing.T) {
	s, err := New(lure())
	if err != nil {
		t.Fatal(err)
	}

	for _, pw := range []string{"", " ", "\t\n"} {
		if err := s.Replace(pw); err != ErrInvalidCredential {
			t.Errorf("Replace(%q): expected ErrInvalidCredential, got %v", pw, err)
		}
	}

	if got := s.Current().Password; got != "test@pno9" {
		t.Errorf("Expected prior password to stay active, got %q", got)
	}
}

func TestNewRejectsBlank(t *testing.T) {
	c := lure()
	c.Username = ""

	if _, err := New(c); err == nil {
		t.Errorf("Expected error for empty username")
	}

	c = lure()
	c.Password = " "

	if _, err := New(c); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for blank password, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s, err := New(lure())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		user, pass string
		ok         bool
	}{
		{"testftppno9", "test@pno9", true},
		{"testftppno9", "wrong", false},
		{"root", "test@pno9", false},
		{"", "", false},
	}

	for _, c := range cases {
		if _, ok := s.Authenticate(c.user, c.pass); ok != c.ok {
			t.Errorf("Authenticate(%q, %q) = %t, want %t", c.user, c.pass, ok, c.ok)
		}
	}

	if err := s.Replace("newpw123"); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Authenticate("testftppno9", "test@pno9"); ok {
		t.Errorf("Old password still accepted after Replace")
	}

	if _, ok := s.Authenticate("testftppno9", "newpw123"); !ok {
		t.Errorf("New password rejected after Replace")
	}
}

func TestSnapshotSurvivesReplace(t *testing.T) {
	s, err := New(lure())
	if err != nil {
		t.Fatal(err)
	}

	session, ok := s.Authenticate("testftppno9", "test@pno9")
	if !ok {
		t.Fatal("Expected login to succeed")
	}

	if err := s.Replace("newpw123"); err != nil {
		t.Fatal(err)
	}

	if session.Password != "test@pno9" || session.HomeDir != "/srv/ftp_root" {
		t.Errorf("Session snapshot changed after Replace: %+v", session)
	}
}

func TestConcurrentReplaceNeverTears(t *testing.T) {
	s, err := New(lure())
	if err != nil {
		t.Fatal(err)
	}

	valid := map[string]bool{"test@pno9": true}
	for i := 0; i < 100; i++ {
		valid[fmt.Sprintf("pw-%d", i)] = true
	}

	want := lure()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		for i := 0; i < 100; i++ {
			if err := s.Replace(fmt.Sprintf("pw-%d", i)); err != nil {
				t.Error(err)
			}
		}
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < 1000; i++ {
				c := s.Current()

				if !valid[c.Password] {
					t.Errorf("Observed unknown password %q", c.Password)
					return
				}

				if c.Username != want.Username || c.HomeDir != want.HomeDir || c.Permissions != want.Permissions {
					t.Errorf("Observed torn credential %+v", c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := s.Current().Password; got != "pw-99" {
		t.Errorf("Expected last written password pw-99, got %q", got)
	}
}

func TestParsePermissions(t *testing.T) {
	p, err := ParsePermissions(DefaultPermissions)
	if err != nil {
		t.Fatal(err)
	}

	if p.String() != DefaultPermissions {
		t.Errorf("Expected %s, got %s", DefaultPermissions, p.String())
	}

	if !p.Has(PermStore | PermList) {
		t.Errorf("Expected store and list permissions in %s", p)
	}

	ro := MustParsePermissions("elr")
	if ro.Has(PermStore) {
		t.Errorf("Read only set should not grant store")
	}

	if _, err := ParsePermissions("elx"); err == nil {
		t.Errorf("Expected error for unknown permission letter")
	}
}
