package service

import (
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/postgres"
)

// Wire representations of the persisted entities. Field names and the
// formatted timestamp layout are part of the client contract.

type UserRepr struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type MessageRepr struct {
	ID                 int64     `json:"id"`
	Text               string    `json:"text"`
	User               UserRepr  `json:"user"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedAtFormatted string    `json:"created_at_formatted"`
}

type MemberRepr struct {
	User     UserRepr  `json:"user"`
	Nickname string    `json:"nickname"`
	LastSeen time.Time `json:"last_seen"`
}

type RoomRepr struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Members     []MemberRepr `json:"members"`
	LastMessage *MessageRepr `json:"last_message"`
}

const createdAtLayout = "02-01-2006 15:04:05"

func messageRepr(m *domain.Message, u *domain.User) MessageRepr {
	return MessageRepr{
		ID:                 m.ID,
		Text:               m.Text,
		User:               UserRepr{ID: u.ID, Username: u.Username},
		CreatedAt:          m.CreatedAt,
		CreatedAtFormatted: m.CreatedAt.Format(createdAtLayout),
	}
}

func memberRepr(row postgres.MembershipRow) MemberRepr {
	return MemberRepr{
		User:     UserRepr{ID: row.User.ID, Username: row.User.Username},
		Nickname: row.Membership.Nickname,
		LastSeen: row.Membership.LastSeen,
	}
}
