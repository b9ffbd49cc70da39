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
package eventbus

import (
	"sync"

	"github.com/honeytrap/ftptrap/event"
	"github.com/honeytrap/ftptrap/pushers"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/eventbus")

// EventBus defines a structure which provides a pubsub bus where message.Events
// are sent along it's wires for delivery. Delivery is synchronous so events
// sent from one goroutine reach every subscriber in the order they were sent.
type EventBus struct {
	m           sync.RWMutex
	subscribers []pushers.Channel
}

// New returns a new instance of a EventBus.
func New() *EventBus {
	return &EventBus{}
}

// Subscribe adds the giving channel to the list of subscribers for the giving bus.
func (eb *EventBus) Subscribe(channel pushers.Channel) error {
	eb.m.Lock()
	defer eb.m.Unlock()

	eb.subscribers = append(eb.subscribers, channel)
	return nil
}

// Send deliverers the event to all subscribers.
func (eb *EventBus) Send(e event.Event) {
	eb.m.RLock()
	defer eb.m.RUnlock()

	for _, subscriber := range eb.subscribers {
		subscriber.Send(e)
	}
}

// Close closes every subscriber holding resources, returning the first error.
func (eb *EventBus) Close() error {
	eb.m.Lock()
	defer eb.m.Unlock()

	var first error
	for _, subscriber := range eb.subscribers {
		if err := pushers.Close(subscriber); err != nil {
			log.Errorf("Error closing channel: %s", err.Error())

			if first == nil {
				first = err
			}
		}
	}

	eb.subscribers = nil
	return first
}
