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
package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/honeytrap/ftptrap/event"
)

func TestConsoleWritesLines(t *testing.T) {
	var buf bytes.Buffer

	c, err := New(WithWriter(&buf))
	if err != nil {
		t.Fatal(err)
	}

	c.Send(event.New(event.SeverityInfo, event.Message("[+] Connection from 127.0.0.1:4000")))
	c.Send(event.New(event.SeverityWarning, event.Message("[!] Login failed: user=a pass=b from 127.0.0.1")))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	if !strings.HasSuffix(lines[0], "[INFO] [+] Connection from 127.0.0.1:4000") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}

	if !strings.HasSuffix(lines[1], "[WARNING] [!] Login failed: user=a pass=b from 127.0.0.1") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Expected no color codes for a non terminal writer")
	}
}

func TestConsolePrintf(t *testing.T) {
	var buf bytes.Buffer

	c, _ := New(WithWriter(&buf))
	c.(*Console).Printf("logging degraded: %s", "disk full")

	if buf.String() != "logging degraded: disk full\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
