// Package notify holds transient user-visible notifications.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// DefaultCapacity bounds the number of pending notifications.
const DefaultCapacity = 50

// Notification is a single toast message.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Center queues notifications until they are drained. When full, the oldest
// notification is dropped.
type Center struct {
	mu       sync.Mutex
	pending  []Notification
	capacity int
	now      func() time.Time
}

// NewCenter creates a center holding at most capacity notifications.
// A non-positive capacity selects DefaultCapacity.
func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Center{capacity: capacity, now: time.Now}
}

func (c *Center) Success(msg string) Notification { return c.push(LevelSuccess, msg) }

func (c *Center) Error(msg string) Notification { return c.push(LevelError, msg) }

func (c *Center) Info(msg string) Notification { return c.push(LevelInfo, msg) }

// Drain returns pending notifications oldest first and clears the queue.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.pending
	c.pending = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Pending returns a copy of the queue without clearing it.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.pending...)
}

func (c *Center) push(level Level, msg string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) >= c.capacity {
		c.pending = append(c.pending[:0:0], c.pending[len(c.pending)-c.capacity+1:]...)
	}
	c.pending = append(c.pending, n)
	return n
}
