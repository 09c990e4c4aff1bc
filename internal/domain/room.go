package domain

import "time"

type Room struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Membership is a user's standing relation to a room (distinct from the
// volatile online set kept in the presence store).
type Membership struct {
	RoomID   int64     `db:"room_id"`
	UserID   int64     `db:"user_id"`
	Nickname string    `db:"nickname"`
	LastSeen time.Time `db:"last_seen"`
}
