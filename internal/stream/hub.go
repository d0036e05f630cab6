package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Well-known topics.
const (
	TopicAuth      = "auth"
	TopicCommunity = "community"
)

// Hub fans events out to in-process subscribers and mirrors them over redis
// pub/sub so other instances on the same device bus see them too.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Topic string
	Recv  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Recv:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topicClients, ok := h.clients[client.Topic]; ok {
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.clients, client.Topic)
		}
	}
	close(client.Recv)
}

// Broadcast delivers payload to every subscriber of topic. With redis
// attached delivery goes through pub/sub so every hub on the bus sees the
// event exactly once; without redis it is in-process only.
func (h *Hub) Broadcast(topic string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(topic, payload)
}

// deliver holds the read lock across the sends so Unregister cannot close
// a Recv channel mid-loop. Sends are non-blocking, so the lock is brief.
func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Recv <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "taqvo:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(topicFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(topic string) string {
	return "taqvo:" + topic + ":events"
}

func topicFromChannel(ch string) string {
	// taqvo:{topic}:events
	const prefix = "taqvo:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
