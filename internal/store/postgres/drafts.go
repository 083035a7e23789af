package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

func (s *Store) CreateDraft(ctx context.Context, draft *domain.OrderDraft) error {
	items, err := json.Marshal(draft.Items)
	if err != nil {
		return persistence("create draft", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO order_drafts (uuid, source, sender_id, message_text, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, draft.PublicID, draft.Source, draft.SenderID, draft.MessageText, items, draft.CreatedAt).Scan(&draft.ID)
	if err != nil {
		return persistence("create draft", err)
	}
	return nil
}

func (s *Store) GetDraft(ctx context.Context, publicID string) (*domain.OrderDraft, error) {
	draft := &domain.OrderDraft{}
	var items []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, source, sender_id, message_text, items, created_at, confirmed_at
		FROM order_drafts
		WHERE uuid = $1
	`, publicID).Scan(&draft.ID, &draft.PublicID, &draft.Source, &draft.SenderID,
		&draft.MessageText, &items, &draft.CreatedAt, &draft.ConfirmedAt)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "order draft", ID: publicID}
	}
	if err != nil {
		return nil, persistence("get draft", err)
	}

	if err := json.Unmarshal(items, &draft.Items); err != nil {
		return nil, persistence("get draft", err)
	}
	return draft, nil
}

func (s *Store) ListDrafts(ctx context.Context) ([]domain.OrderDraft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, source, sender_id, message_text, items, created_at, confirmed_at
		FROM order_drafts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, persistence("list drafts", err)
	}
	defer func() { _ = rows.Close() }()

	drafts := []domain.OrderDraft{}
	for rows.Next() {
		var draft domain.OrderDraft
		var items []byte
		if err := rows.Scan(&draft.ID, &draft.PublicID, &draft.Source, &draft.SenderID,
			&draft.MessageText, &items, &draft.CreatedAt, &draft.ConfirmedAt); err != nil {
			return nil, persistence("list drafts", err)
		}
		if err := json.Unmarshal(items, &draft.Items); err != nil {
			return nil, persistence("list drafts", err)
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("list drafts", err)
	}
	return drafts, nil
}

func (s *Store) ConfirmDraft(ctx context.Context, publicID string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE order_drafts
		SET confirmed_at = $2
		WHERE uuid = $1 AND confirmed_at IS NULL
	`, publicID, at)
	if err != nil {
		return persistence("confirm draft", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence("confirm draft", err)
	}
	if affected == 0 {
		if _, err := s.GetDraft(ctx, publicID); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "order draft", Field: "confirmation", Value: publicID}
	}
	return nil
}
