package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

// Store keeps the grade collection as one indented JSON document in a single file.
// Reads share a lock; Save and Update hold it exclusively so that
// a load-modify-save cycle cannot interleave with another writer of the same Store.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ grade.Repository = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", s.path)
	}
	return true, nil
}

func (s *Store) Load(ctx context.Context) (grade.Collection, error) {
	if err := ctx.Err(); err != nil {
		return grade.Collection{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *Store) Save(ctx context.Context, coll grade.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(coll)
}

func (s *Store) Update(ctx context.Context, fn func(coll *grade.Collection) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.load()
	if err != nil {
		return err
	}
	if err = fn(&coll); err != nil {
		return err
	}
	return s.save(coll)
}

func (s *Store) load() (grade.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return grade.NewCollection(), nil
		}
		return grade.Collection{}, errors.Wrapf(err, "reading %s", s.path)
	}

	var coll grade.Collection
	if err = json.Unmarshal(data, &coll); err != nil {
		return grade.Collection{}, errors.Wrapf(err, "parsing %s", s.path)
	}
	return grade.NewCollection(coll.Grades...), nil
}

func (s *Store) save(coll grade.Collection) error {
	data, err := Marshal(coll)
	if err != nil {
		return errors.Wrap(err, "encoding grades")
	}
	if err = os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", s.path)
	}
	return nil
}

// Marshal encodes the collection the way it is written to disk:
// 2-space indentation, non-ASCII text and HTML characters kept verbatim.
func Marshal(coll grade.Collection) ([]byte, error) {
	coll = grade.NewCollection(coll.Grades...)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(coll); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
