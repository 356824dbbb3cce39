package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/linksclub/teesheet-service/internal/events"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MemberConsumer mirrors the membership directory into the local members
// table so pricing and display never call out to another service.
type MemberConsumer struct {
	members repository.MemberRepository
}

func NewMemberConsumer(members repository.MemberRepository) *MemberConsumer {
	return &MemberConsumer{members: members}
}

// Start drains the delivery channel until it closes.
func (mc *MemberConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			mc.handleMessage(msg)
		}
		log.Println("[MemberConsumer] channel closed, stopping consumer")
	}()
}

func (mc *MemberConsumer) handleMessage(msg amqp.Delivery) {
	var payload events.MemberSyncPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		log.Printf("[MemberConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	if payload.ID == "" {
		log.Printf("[MemberConsumer] dropping payload without member id")
		msg.Nack(false, false)
		return
	}

	member := models.Member{
		ID:             payload.ID,
		DisplayName:    payload.DisplayName,
		MembershipType: payload.MembershipType,
		Contact:        payload.Contact,
		Active:         payload.Active,
	}

	if err := mc.members.Upsert(context.Background(), &member); err != nil {
		log.Printf("[MemberConsumer] failed to upsert member %s: %v", member.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[MemberConsumer] synced member %s: %s", member.ID, member.DisplayName)
	msg.Ack(false)
}
