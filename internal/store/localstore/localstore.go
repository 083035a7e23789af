// Package localstore is the client-side flavor of the store contract: every
// record lives in memory and the whole data set is persisted as one JSON
// document whose top-level keys mirror the relational table names (orders,
// products, users, order_drafts). A single process-wide mutex serializes all
// writers, which is what makes order number assignment safe here; there is
// no transaction support beyond that.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

type document struct {
	Orders   []domain.Order      `json:"orders"`
	Products []domain.Product    `json:"products"`
	Users    []domain.User       `json:"users"`
	Drafts   []domain.OrderDraft `json:"order_drafts"`
	OrderSeq int64               `json:"order_seq"`
}

type Store struct {
	mu   sync.Mutex
	path string // empty means memory-only (tests)
	doc  document

	nextProductID int64
	nextUserID    int64
	nextDraftID   int64
}

// Open loads the document at path, or starts empty when the file does not
// exist yet. path == "" keeps everything in memory.
func Open(path string) (*Store, error) {
	s := &Store{path: path, nextProductID: 1, nextUserID: 1, nextDraftID: 1}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// first run
		case err != nil:
			return nil, &domain.PersistenceError{Op: "open local store", Err: err}
		default:
			if err := json.Unmarshal(data, &s.doc); err != nil {
				return nil, &domain.PersistenceError{Op: "open local store", Err: err}
			}
		}
	}

	for i := range s.doc.Products {
		if s.doc.Products[i].ID >= s.nextProductID {
			s.nextProductID = s.doc.Products[i].ID + 1
		}
	}
	// Internal surrogate keys are not serialized; regenerate them.
	for i := range s.doc.Users {
		s.doc.Users[i].ID = s.nextUserID
		s.nextUserID++
	}
	for i := range s.doc.Drafts {
		s.doc.Drafts[i].ID = s.nextDraftID
		s.nextDraftID++
	}
	for i := range s.doc.Orders {
		s.doc.Orders[i].ID = int64(i + 1)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// save rewrites the backing file. Callers hold the mutex. Best effort via a
// temp file rename so a crash mid-write cannot truncate the document.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "save local store", Err: err}
	}

	tmp := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &domain.PersistenceError{Op: "save local store", Err: err}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &domain.PersistenceError{Op: "save local store", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &domain.PersistenceError{Op: "save local store", Err: err}
	}
	return nil
}

func copyItems(items []domain.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	copy(out, items)
	return out
}

func copyOrder(o *domain.Order) *domain.Order {
	dup := *o
	dup.Status = domain.NormalizeStatus(string(o.Status))
	dup.Items = copyItems(o.Items)
	return &dup
}
