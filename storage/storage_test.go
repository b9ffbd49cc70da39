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
package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"
	"testing"
)

func openTemp(t *testing.T) *DB {
	dir, err := ioutil.TempDir("", "ftptrap-storage")
	if err != nil {
		t.Fatal(err)
	}

	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(dir)
	})

	return db
}

func TestGetSet(t *testing.T) {
	db := openTemp(t)

	s, err := db.Namespace("ftp")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get("missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Set("token", []byte("abc")); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get("token")
	if err != nil {
		t.Fatal(err)
	}

	if string(v) != "abc" {
		t.Errorf("Expected abc, got %s", v)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	db := openTemp(t)

	a, _ := db.Namespace("a")
	b, _ := db.Namespace("b")

	if err := a.Set("k", []byte("1")); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Get("k"); err != ErrNotFound {
		t.Errorf("Expected key to be absent in other namespace, got %v", err)
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	db := openTemp(t)

	s, err := db.Namespace("events")
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []string{"connect", "login_ok", "upload", "disconnect"} {
		if _, err := s.Append([]byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	if err := s.Range(func(k, v []byte) error {
		got = append(got, string(v))
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	want := []string{"connect", "login_ok", "upload", "disconnect"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestConcurrentAppend(t *testing.T) {
	db := openTemp(t)

	s, err := db.Namespace("events")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 20; j++ {
				if _, err := s.Append([]byte(fmt.Sprintf("%d-%d", i, j))); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	n := 0
	if err := s.Range(func(k, v []byte) error {
		n++
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if n != 160 {
		t.Errorf("Expected 160 records, got %d", n)
	}
}
