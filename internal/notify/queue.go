package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys of the pending and dead-letter lists.
const (
	PendingKey = "notifications:pending"
	DeadKey    = "notifications:dead"
)

var ErrQueueFull = errors.New("notification queue is full")

// Queue holds notifications between the request that produced them and the
// worker that delivers them.
type Queue interface {
	Enqueue(ctx context.Context, msg *Message) error
	// Dequeue waits for the next message. It returns nil, nil when nothing
	// arrived within the queue's poll interval.
	Dequeue(ctx context.Context) (*Message, error)
	DeadLetter(ctx context.Context, msg *Message) error
	// RequeueDeadLetters moves every dead letter back to the pending list.
	RequeueDeadLetters(ctx context.Context) (int, error)
}

// RedisQueue keeps notifications in two Redis lists: producers LPUSH onto the
// pending list and the worker BRPOPs from it.
type RedisQueue struct {
	client      *redis.Client
	pollTimeout time.Duration
}

// NewRedisQueue connects to Redis and returns a queue on it
func NewRedisQueue(redisURL string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// If URL parsing fails, try as simple host:port
		opt = &redis.Options{
			Addr: redisURL,
			DB:   0,
		}
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisQueueFromClient(client), nil
}

// NewRedisQueueFromClient wraps an existing client.
func NewRedisQueueFromClient(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, pollTimeout: 5 * time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg *Message) error {
	return q.push(ctx, PendingKey, msg)
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Message, error) {
	res, err := q.client.BRPop(ctx, q.pollTimeout, PendingKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop notification: %w", err)
	}

	// BRPOP replies with [key, value]
	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return &msg, nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, msg *Message) error {
	return q.push(ctx, DeadKey, msg)
}

func (q *RedisQueue) RequeueDeadLetters(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, DeadKey, PendingKey, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to requeue dead letters: %w", err)
		}
		moved++
	}
}

// Client exposes the underlying connection pool for sharing.
func (q *RedisQueue) Client() *redis.Client {
	return q.client
}

// Close releases the Redis connection pool
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) push(ctx context.Context, key string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := q.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	return nil
}

// MemoryQueue is the in-process queue used when Redis is not configured.
// Messages do not survive a restart.
type MemoryQueue struct {
	pending     chan *Message
	pollTimeout time.Duration

	mu   sync.Mutex
	dead []*Message
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		pending:     make(chan *Message, capacity),
		pollTimeout: 5 * time.Second,
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg *Message) error {
	select {
	case q.pending <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Message, error) {
	timer := time.NewTimer(q.pollTimeout)
	defer timer.Stop()

	select {
	case msg := <-q.pending:
		return msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) DeadLetter(_ context.Context, msg *Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, msg)
	return nil
}

func (q *MemoryQueue) RequeueDeadLetters(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	moved := 0
	for len(q.dead) > 0 {
		if err := q.Enqueue(ctx, q.dead[0]); err != nil {
			return moved, err
		}
		q.dead = q.dead[1:]
		moved++
	}
	return moved, nil
}

// Len reports the number of pending messages.
func (q *MemoryQueue) Len() int {
	return len(q.pending)
}

// DeadLetters returns a snapshot of the dead-letter list.
func (q *MemoryQueue) DeadLetters() []*Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Message(nil), q.dead...)
}
