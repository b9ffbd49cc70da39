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
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var log = logging.MustGetLogger("ftptrap/storage")

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

// Storage interface
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error

	// Append stores data under the next sequence number of the namespace.
	Append(data []byte) (uint64, error)

	// Range calls fn for every key in order until fn returns an error.
	Range(fn func(key, value []byte) error) error
}

// DB is a bolt database holding one bucket per namespace.
type DB struct {
	db *bolt.DB
}

// Open opens (or creates) the database in the given data directory.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "could not create data dir %s", dataDir)
	}

	p := filepath.Join(dataDir, "ftptrap.db")

	db, err := bolt.Open(p, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database %s", p)
	}

	log.Debugf("Opened database %s", p)
	return &DB{db: db}, nil
}

// Namespace returns the storage for the namespace, creating its bucket.
func (d *DB) Namespace(namespace string) (Storage, error) {
	name := []byte(namespace)

	if err := d.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	}); err != nil {
		return nil, errors.Wrapf(err, "could not create namespace %s", namespace)
	}

	return &boltStorage{
		db: d.db,
		ns: name,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

type boltStorage struct {
	db *bolt.DB

	ns []byte
}

func (s *boltStorage) Get(key string) ([]byte, error) {
	var val []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.ns).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}

		val = append([]byte{}, v...)
		return nil
	})

	return val, err
}

func (s *boltStorage) Set(key string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.ns).Put([]byte(key), data)
	})
}

func (s *boltStorage) Append(data []byte) (uint64, error) {
	var id uint64

	err := s.db.Update(func(tx *bolt.Tx) error {
		bu := tx.Bucket(s.ns)

		next, err := bu.NextSequence()
		if err != nil {
			return err
		}

		id = next
		return bu.Put(sequenceKey(next), data)
	})

	return id, err
}

func (s *boltStorage) Range(fn func(key, value []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.ns).ForEach(func(k, v []byte) error {
			// sub buckets
			if v == nil {
				return nil
			}

			return fn(k, v)
		})
	})
}

// sequenceKey returns the big endian form of the sequence so keys sort in
// insertion order.
func sequenceKey(b uint64) []byte {
	bl := make([]byte, 8)
	binary.BigEndian.PutUint64(bl, b)
	return bl
}
