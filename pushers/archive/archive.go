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
package archive

import (
	"encoding/json"

	"github.com/honeytrap/ftptrap/event"
	"github.com/honeytrap/ftptrap/pushers"
	"github.com/honeytrap/ftptrap/storage"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ftptrap/pushers/archive")

// Namespace is the storage namespace events are archived in.
const Namespace = "events"

// Backend stores every event as a JSON document keyed by sequence number,
// giving a machine readable copy of the attack log.
type Backend struct {
	s storage.Storage
}

// New returns an archive channel on top of the given database.
func New(db *storage.DB) (pushers.Channel, error) {
	s, err := db.Namespace(Namespace)
	if err != nil {
		return nil, err
	}

	return &Backend{s: s}, nil
}

// Send archives the event. Failures are logged and otherwise ignored.
func (b *Backend) Send(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("Could not marshal event: %s", err.Error())
		return
	}

	if _, err := b.s.Append(data); err != nil {
		log.Errorf("Could not archive event: %s", err.Error())
	}
}

// Events returns all archived events in order.
func (b *Backend) Events() ([]map[string]interface{}, error) {
	var list []map[string]interface{}

	err := b.s.Range(func(_, v []byte) error {
		var item map[string]interface{}
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}

		list = append(list, item)
		return nil
	})

	return list, err
}
