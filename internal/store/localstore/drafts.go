package localstore

import (
	"context"
	"sort"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

func (s *Store) CreateDraft(ctx context.Context, draft *domain.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = s.nextDraftID
	s.nextDraftID++
	draft.Items = copyItems(draft.Items)
	s.doc.Drafts = append(s.doc.Drafts, *draft)
	return s.save()
}

func (s *Store) findDraft(publicID string) *domain.OrderDraft {
	for i := range s.doc.Drafts {
		if s.doc.Drafts[i].PublicID == publicID {
			return &s.doc.Drafts[i]
		}
	}
	return nil
}

func (s *Store) GetDraft(ctx context.Context, publicID string) (*domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d := s.findDraft(publicID); d != nil {
		dup := *d
		dup.Items = copyItems(d.Items)
		return &dup, nil
	}
	return nil, &domain.NotFoundError{Resource: "order draft", ID: publicID}
}

func (s *Store) ListDrafts(ctx context.Context) ([]domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts := make([]domain.OrderDraft, 0, len(s.doc.Drafts))
	for i := range s.doc.Drafts {
		dup := s.doc.Drafts[i]
		dup.Items = copyItems(dup.Items)
		drafts = append(drafts, dup)
	}
	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})
	return drafts, nil
}

func (s *Store) ConfirmDraft(ctx context.Context, publicID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDraft(publicID)
	if d == nil {
		return &domain.NotFoundError{Resource: "order draft", ID: publicID}
	}
	if d.ConfirmedAt != nil {
		return &domain.ConflictError{Resource: "order draft", Field: "confirmation", Value: publicID}
	}

	stamp := at
	d.ConfirmedAt = &stamp
	return s.save()
}
