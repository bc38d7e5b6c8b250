// Package rabbitmqtest provides in-memory MQTT client doubles for tests.
package rabbitmqtest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Token is an already-completed mqtt.Token.
type Token struct{ Err error }

func (t *Token) Wait() bool                     { return true }
func (t *Token) WaitTimeout(time.Duration) bool { return true }
func (t *Token) Error() error                   { return t.Err }
func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Message is a static mqtt.Message.
type Message struct {
	TopicName string
	Body      []byte
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return 1 }
func (m *Message) Retained() bool    { return false }
func (m *Message) Topic() string     { return m.TopicName }
func (m *Message) MessageID() uint16 { return 1 }
func (m *Message) Payload() []byte   { return m.Body }
func (m *Message) Ack()              {}

// Published records one Publish call.
type Published struct {
	Topic   string
	QoS     byte
	Payload []byte
}

// Client is an in-memory mqtt.Client: Publish records, Deliver feeds subscribers.
type Client struct {
	mu          sync.Mutex
	published   []Published
	subscribers map[string]mqtt.MessageHandler
	PublishErr  error
	connected   bool
}

var _ mqtt.Client = (*Client)(nil)

func NewClient() *Client {
	return &Client{subscribers: make(map[string]mqtt.MessageHandler), connected: true}
}

func (c *Client) IsConnected() bool      { return c.connected }
func (c *Client) IsConnectionOpen() bool { return c.connected }
func (c *Client) Connect() mqtt.Token    { c.connected = true; return &Token{} }
func (c *Client) Disconnect(uint)        { c.connected = false }

func (c *Client) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil {
		return &Token{Err: c.PublishErr}
	}
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = append([]byte(nil), p...)
	case string:
		b = []byte(p)
	}
	c.published = append(c.published, Published{Topic: topic, QoS: qos, Payload: b})
	return &Token{}
}

func (c *Client) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[topic] = callback
	return &Token{}
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic := range filters {
		c.Subscribe(topic, 0, callback)
	}
	return &Token{}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.subscribers, t)
	}
	return &Token{}
}

func (c *Client) AddRoute(string, mqtt.MessageHandler) {}

func (c *Client) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

// Deliver hands payload to the subscriber registered on topic, if any.
func (c *Client) Deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	cb, ok := c.subscribers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	cb(c, &Message{TopicName: topic, Body: payload})
	return true
}

// Subscribed reports whether topic currently has a subscriber.
func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subscribers[topic]
	return ok
}

// Published returns a copy of every recorded Publish call.
func (c *Client) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}
