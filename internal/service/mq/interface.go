package mq

import "context"

// Message is one business event read from a broker.
type Message struct {
	ID      string // stream entry id or partition/offset
	Topic   string
	Key     string // partition key, e.g. user id
	Payload []byte // JSON
}

// Producer publishes events.
type Producer interface {
	// Publish sends payload to topic. An empty key lets the broker pick a partition.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

// Consumer reads events of a topic until ctx is done.
type Consumer interface {
	// Subscribe blocks; a handler error leaves the message unacknowledged.
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error
	Close() error
}
