package postgres

import (
	"context"

	"github.com/cwrk-planet/presence-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

type MembershipRow struct {
	Membership domain.Membership
	User       domain.User
}

func (r *MembershipRepository) ListByRoom(ctx context.Context, roomID int64) ([]MembershipRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.room_id, m.user_id, m.nickname, m.last_seen, u.username
		FROM room_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id=$1
		ORDER BY m.user_id
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MembershipRow
	for rows.Next() {
		var row MembershipRow
		if err := rows.Scan(
			&row.Membership.RoomID,
			&row.Membership.UserID,
			&row.Membership.Nickname,
			&row.Membership.LastSeen,
			&row.User.Username,
		); err != nil {
			return nil, err
		}
		row.User.ID = row.Membership.UserID
		out = append(out, row)
	}
	return out, rows.Err()
}

// Touch upserts the membership and bumps last_seen; message creation counts
// as room activity.
func (r *MembershipRepository) Touch(ctx context.Context, roomID, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO room_memberships (room_id, user_id, last_seen)
		VALUES ($1, $2, now())
		ON CONFLICT (room_id, user_id) DO UPDATE SET last_seen = now()
	`, roomID, userID)
	return err
}
