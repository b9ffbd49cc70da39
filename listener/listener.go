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
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrClosed is returned by Accept after the listener has been closed.
var ErrClosed = errors.New("listener closed")

// Listener hands out accepted connections. Start binds the configured
// addresses; a bind failure is returned as a *StartError.
type Listener interface {
	Start(ctx context.Context) error
	Close() error
	Accept() (net.Conn, error)
}

// StartError reports that an address could not be bound.
type StartError struct {
	Addr string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("could not listen on %s: %s", e.Addr, e.Err.Error())
}

// Cause returns the underlying bind error.
func (e *StartError) Cause() error {
	return e.Err
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// Addresser is implemented by listeners that can report their bound
// address.
type Addresser interface {
	Addr() net.Addr
}
