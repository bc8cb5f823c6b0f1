// Package utils holds the watermill plumbing shared by every module router:
// payload (un)marshalling and metadata middleware.
package utils

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Helpers is the message plumbing contract handlers depend on.
type Helpers interface {
	UnmarshalPayload(msg *message.Message, out any) error
	CreateResultMessage(src *message.Message, payload any, topic string) (*message.Message, error)
}

// NewHelpers returns the standard JSON-based Helpers implementation.
func NewHelpers() Helpers { return &jsonHelpers{} }

type jsonHelpers struct{}

func (jsonHelpers) UnmarshalPayload(msg *message.Message, out any) error {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// CreateResultMessage builds a follow-up message that inherits the source
// message's correlation id and records the topic it should be published to.
func (jsonHelpers) CreateResultMessage(src *message.Message, payload any, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if src != nil {
		middleware.SetCorrelationID(middleware.MessageCorrelationID(src), msg)
	}
	msg.Metadata.Set("topic", topic)
	return msg, nil
}

// PublishTopic reads back the topic recorded by CreateResultMessage.
func PublishTopic(msg *message.Message) string {
	return msg.Metadata.Get("topic")
}
