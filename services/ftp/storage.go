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
package ftp

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/honeytrap/ftptrap/storage"
)

// StorageNamespace is the storage namespace of the upload index.
const StorageNamespace = "ftp"

// UploadRecord summarizes every upload of one file content.
type UploadRecord struct {
	SHA256     string    `json:"sha256"`
	Size       int64     `json:"size"`
	FirstSeen  time.Time `json:"first-seen"`
	LastSeen   time.Time `json:"last-seen"`
	Count      int       `json:"count"`
	LastPath   string    `json:"last-path"`
	LastSource string    `json:"last-source"`
}

type ftpStorage struct {
	storage.Storage

	m sync.Mutex
}

func uploadKey(sum string) string {
	return "upload." + sum
}

// Upload returns the index record of the given digest.
func (s *ftpStorage) Upload(sum string) (UploadRecord, error) {
	var r UploadRecord

	data, err := s.Get(uploadKey(sum))
	if err != nil {
		return r, err
	}

	err = json.Unmarshal(data, &r)
	return r, err
}

// RecordUpload adds an upload to the index.
func (s *ftpStorage) RecordUpload(u Upload, source string) error {
	s.m.Lock()
	defer s.m.Unlock()

	now := time.Now()

	r, err := s.Upload(u.SHA256)
	if err == storage.ErrNotFound {
		r = UploadRecord{
			SHA256:    u.SHA256,
			FirstSeen: now,
		}
	} else if err != nil {
		return err
	}

	r.Size = u.Size
	r.LastSeen = now
	r.Count++
	r.LastPath = u.Path
	r.LastSource = source

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.Set(uploadKey(u.SHA256), data)
}

// LookupUpload reads the index record of a digest from st.
func LookupUpload(st storage.Storage, sum string) (UploadRecord, error) {
	return (&ftpStorage{Storage: st}).Upload(sum)
}
