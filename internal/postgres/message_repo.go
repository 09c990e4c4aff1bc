package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/presence-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, roomID, userID int64, text string) (*domain.Message, error) {
	var m domain.Message
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (room_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, user_id, text, created_at
	`, roomID, userID, text).
		Scan(&m.ID, &m.RoomID, &m.UserID, &m.Text, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) LastByRoom(ctx context.Context, roomID int64) (*domain.Message, error) {
	var m domain.Message
	err := r.db.QueryRow(ctx, `
		SELECT id, room_id, user_id, text, created_at
		FROM messages
		WHERE room_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, roomID).Scan(&m.ID, &m.RoomID, &m.UserID, &m.Text, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListByRoom returns up to limit most recent messages in ascending order.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, user_id, text, created_at
		FROM (
			SELECT id, room_id, user_id, text, created_at
			FROM messages
			WHERE room_id=$1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
