package pubsub

import (
	"context"
	"encoding/json"
)

const (
	// EventDomainVerified is published when an ownership verification check succeeds
	EventDomainVerified = "domainVerified"
	// EventMagicKeyRotated is published when a management key is reissued without re-verification
	EventMagicKeyRotated = "magicKeyRotated"
)

// Event defines the payload
type Event interface {
	Marshal() (msg Message, err error)
	Unmarshal(msg Message) error
}

// Message is the payload received in a pubsub subscriber. The input for callback functions
type Message []byte

// DomainVerifiedEvent carries the data needed to deliver a management link
// after a successful ownership check.
type DomainVerifiedEvent struct {
	Domain   string `json:"domain"`
	Email    string `json:"email"`
	MagicKey string `json:"magicKey"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *DomainVerifiedEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *DomainVerifiedEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, &ev)
}

// MagicKeyRotatedEvent carries the data for a magic key resend.
type MagicKeyRotatedEvent struct {
	Domain   string `json:"domain"`
	Email    string `json:"email"`
	MagicKey string `json:"magicKey"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *MagicKeyRotatedEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *MagicKeyRotatedEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, &ev)
}

// Publisher sends topics to the pubsub
type Publisher interface {
	Publish(ctx context.Context, topic string, payload Event) error
}

// EventHandler is the type that functions that handle an event must comply.
type EventHandler func(context.Context, Message) error

// Subscriber subscribes to the pubsub topics
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, callback EventHandler)
}

// Client is formed by the publisher and subscriber
type Client interface {
	Publisher
	Subscriber
}
