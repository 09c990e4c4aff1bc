package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/postgres"
)

// ChatService is the persistence collaborator for the chat channel: room
// lookup, message creation and the wire representations of both.
type ChatService struct {
	roomRepo       *postgres.RoomRepository
	messageRepo    *postgres.MessageRepository
	userRepo       *postgres.UserRepository
	membershipRepo *postgres.MembershipRepository
}

func NewChatService(
	roomRepo *postgres.RoomRepository,
	messageRepo *postgres.MessageRepository,
	userRepo *postgres.UserRepository,
	membershipRepo *postgres.MembershipRepository,
) *ChatService {
	return &ChatService{
		roomRepo:       roomRepo,
		messageRepo:    messageRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *ChatService) FindRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.roomRepo.Get(ctx, id)
}

func (s *ChatService) GetOrCreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	return s.roomRepo.GetOrCreateByName(ctx, name)
}

func (s *ChatService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.roomRepo.List(ctx)
}

// CreateMessage persists a message for an authenticated user in an existing
// room. The room is resolved first so a dangling id maps to ErrRoomNotFound
// rather than a constraint violation.
func (s *ChatService) CreateMessage(ctx context.Context, roomID, userID int64, text string) (*domain.Message, error) {
	if len(text) > domain.MaxMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters",
			domain.ErrInvalidInput, domain.MaxMessageLen)
	}

	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.Create(ctx, room.ID, userID, text)
	if err != nil {
		return nil, err
	}

	// posting counts as room activity; best-effort
	if err := s.membershipRepo.Touch(ctx, room.ID, userID); err != nil {
		slog.Debug("touch membership failed",
			"room", room.ID, "user", userID, "err", err)
	}

	return msg, nil
}

func (s *ChatService) SerializeMessage(ctx context.Context, m *domain.Message) (MessageRepr, error) {
	user, err := s.userRepo.Get(ctx, m.UserID)
	if err != nil {
		return MessageRepr{}, fmt.Errorf("serialize message %d: %w", m.ID, err)
	}
	return messageRepr(m, user), nil
}

func (s *ChatService) SerializeRoom(ctx context.Context, room *domain.Room) (RoomRepr, error) {
	rows, err := s.membershipRepo.ListByRoom(ctx, room.ID)
	if err != nil {
		return RoomRepr{}, fmt.Errorf("serialize room %d: %w", room.ID, err)
	}
	members := make([]MemberRepr, 0, len(rows))
	for _, row := range rows {
		members = append(members, memberRepr(row))
	}

	repr := RoomRepr{ID: room.ID, Name: room.Name, Members: members}

	last, err := s.messageRepo.LastByRoom(ctx, room.ID)
	if err != nil {
		return RoomRepr{}, fmt.Errorf("serialize room %d: %w", room.ID, err)
	}
	if last != nil {
		lastRepr, err := s.SerializeMessage(ctx, last)
		if err != nil {
			return RoomRepr{}, err
		}
		repr.LastMessage = &lastRepr
	}

	return repr, nil
}

// RoomHistory returns the room's recent messages, oldest first.
func (s *ChatService) RoomHistory(ctx context.Context, roomID int64, limit int) ([]MessageRepr, error) {
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListByRoom(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]MessageRepr, 0, len(msgs))
	for i := range msgs {
		repr, err := s.SerializeMessage(ctx, &msgs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, repr)
	}
	return out, nil
}

// OnlineUsers resolves reconciled ids to users for the REST surface.
func (s *ChatService) OnlineUsers(ctx context.Context, ids []int64) ([]UserRepr, error) {
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserRepr, 0, len(users))
	for _, u := range users {
		out = append(out, UserRepr{ID: u.ID, Username: u.Username})
	}
	return out, nil
}
