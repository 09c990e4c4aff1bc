package service

import (
	"context"
	"fmt"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

// Publisher is the fanout side of the hub.
type Publisher interface {
	Publish(group string, build func(token string) any)
}

type MessageSerializer interface {
	SerializeMessage(ctx context.Context, m *domain.Message) (MessageRepr, error)
}

// MessagePush is the event pushed to chat subscribers when a message is
// created. RequestID echoes the token of each logical subscription so a
// multiplexed client can route the push.
type MessagePush struct {
	RequestID string      `json:"request_id"`
	Data      MessageRepr `json:"data"`
	Action    string      `json:"action"`
	PK        int64       `json:"pk"`
}

// MessageObserver ties a created message to the broadcast fabric: which
// groups an event lands on, how it serializes, and which groups a consumer
// subscribes for given params. One explicit type per broadcastable entity.
type MessageObserver struct {
	pub Publisher
	ser MessageSerializer
}

func NewMessageObserver(pub Publisher, ser MessageSerializer) *MessageObserver {
	return &MessageObserver{pub: pub, ser: ser}
}

// ChatRoomGroup names the broadcast group carrying a room's messages. Chat
// and room presence use distinct namespaces so events never cross concerns.
func ChatRoomGroup(roomID int64) string {
	return fmt.Sprintf("room__%d", roomID)
}

// GroupsFor derives the groups a created message is published to.
func (o *MessageObserver) GroupsFor(m *domain.Message) []string {
	return []string{ChatRoomGroup(m.RoomID)}
}

// ConsumerGroups derives the groups a consumer joins for a room.
func (o *MessageObserver) ConsumerGroups(roomID int64) []string {
	return []string{ChatRoomGroup(roomID)}
}

// MessageCreated serializes once and fans the event out to every group the
// message belongs to.
func (o *MessageObserver) MessageCreated(ctx context.Context, m *domain.Message) error {
	repr, err := o.ser.SerializeMessage(ctx, m)
	if err != nil {
		return fmt.Errorf("observe message %d: %w", m.ID, err)
	}

	for _, group := range o.GroupsFor(m) {
		o.pub.Publish(group, func(token string) any {
			return MessagePush{
				RequestID: token,
				Data:      repr,
				Action:    "create",
				PK:        m.ID,
			}
		})
	}
	return nil
}
