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
	"errors"
	"strings"
)

// ErrInvalidCommand is returned by Parse for input that is not a valid
// console command.
var ErrInvalidCommand = errors.New("invalid command")

// Kind is the variant of a parsed Command.
type Kind int

const (
	// Empty is blank input; it is ignored.
	Empty Kind = iota
	// SetPassword replaces the lure password.
	SetPassword
	// Shutdown stops the honeypot.
	Shutdown
	// Unknown is anything else.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case SetPassword:
		return "passwd"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Command is one parsed line of operator input.
type Command struct {
	Kind Kind

	// Password is set for SetPassword.
	Password string

	// Raw is the trimmed input line.
	Raw string
}

// Parse parses a line of operator input. The command word is case
// insensitive. passwd takes exactly one argument; any other arity, like any
// unrecognized input, yields an Unknown command and ErrInvalidCommand.
func Parse(line string) (Command, error) {
	raw := strings.TrimSpace(line)

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Kind: Empty}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return Command{Kind: Shutdown, Raw: raw}, nil
	case "passwd":
		if len(fields) == 2 {
			return Command{Kind: SetPassword, Password: fields[1], Raw: raw}, nil
		}
	}

	return Command{Kind: Unknown, Raw: raw}, ErrInvalidCommand
}
