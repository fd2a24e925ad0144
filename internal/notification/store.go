package notification

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxPerRecipient caps how many notifications are retained per recipient.
	MaxPerRecipient = 100
	// DefaultListLimit applies when a listing does not specify a limit.
	DefaultListLimit = 50
)

// Store holds notifications in memory, ordered newest-first and bounded per
// recipient. It is owned by the composition root; state is injected, never
// package-global. Insert-and-evict runs under a per-recipient critical
// section so concurrent inserts cannot exceed the cap or corrupt ordering.
type Store struct {
	mu        sync.RWMutex
	mailboxes map[string]*mailbox
	broker    *broker
	now       func() time.Time
}

type mailbox struct {
	mu      sync.Mutex
	records []Record // newest first
}

// NewStore constructs a store using the wall clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock constructs a store with a custom clock source.
func NewStoreWithClock(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		mailboxes: make(map[string]*mailbox),
		broker:    newBroker(),
		now:       now,
	}
}

// NormalizeRecipient lower-cases and trims a recipient key so the same
// identity always addresses the same mailbox.
func NormalizeRecipient(recipient string) string {
	return strings.ToLower(strings.TrimSpace(recipient))
}

func (s *Store) mailbox(recipient string) *mailbox {
	s.mu.RLock()
	box, ok := s.mailboxes[recipient]
	s.mu.RUnlock()
	if ok {
		return box
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if box, ok = s.mailboxes[recipient]; !ok {
		box = &mailbox{}
		s.mailboxes[recipient] = box
	}
	return box
}

// Insert stores a new unread notification for the recipient, evicting the
// recipient's oldest record when the cap is exceeded. The created record is
// returned and broadcast to any live subscribers.
func (s *Store) Insert(recipient string, msg Message) Record {
	key := NormalizeRecipient(recipient)

	record := Record{
		ID:        uuid.NewString(),
		Recipient: key,
		Title:     msg.Title,
		Body:      msg.Body,
		Kind:      msg.Kind,
		Link:      msg.Link,
		Metadata:  msg.Metadata,
		CreatedAt: s.now().UTC(),
	}

	box := s.mailbox(key)
	box.mu.Lock()
	box.records = append([]Record{record}, box.records...)
	if len(box.records) > MaxPerRecipient {
		box.records = box.records[:MaxPerRecipient]
	}
	box.mu.Unlock()

	s.broker.broadcast(key, record)

	return record
}

// List returns the recipient's notifications newest-first, optionally
// filtered to unread and truncated to opts.Limit (default 50).
func (s *Store) List(recipient string, opts ListOptions) []Record {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	out := make([]Record, 0, limit)
	for _, record := range box.records {
		if opts.UnreadOnly && record.Read {
			continue
		}
		out = append(out, record)
		if len(out) == limit {
			break
		}
	}
	return out
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *Store) UnreadCount(recipient string) int {
	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	count := 0
	for _, record := range box.records {
		if !record.Read {
			count++
		}
	}
	return count
}

// MarkRead flips the read flag on a single notification. It is a no-op when
// the id does not exist in the recipient's own mailbox; a caller can never
// touch another recipient's records.
func (s *Store) MarkRead(recipient, id string) (Record, bool) {
	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	for i := range box.records {
		if box.records[i].ID == id {
			box.records[i].Read = true
			return box.records[i], true
		}
	}
	return Record{}, false
}

// MarkAllRead marks every notification for the recipient as read and
// returns how many were flipped.
func (s *Store) MarkAllRead(recipient string) int {
	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	flipped := 0
	for i := range box.records {
		if !box.records[i].Read {
			box.records[i].Read = true
			flipped++
		}
	}
	return flipped
}

// MarkManyRead marks the given ids as read, skipping unknown ids, and
// returns how many were flipped.
func (s *Store) MarkManyRead(recipient string, ids []string) int {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	flipped := 0
	for i := range box.records {
		if _, ok := wanted[box.records[i].ID]; ok && !box.records[i].Read {
			box.records[i].Read = true
			flipped++
		}
	}
	return flipped
}

// Delete removes a single notification and reports whether anything matched
// the recipient+id pair.
func (s *Store) Delete(recipient, id string) bool {
	box := s.mailbox(NormalizeRecipient(recipient))
	box.mu.Lock()
	defer box.mu.Unlock()

	for i := range box.records {
		if box.records[i].ID == id {
			box.records = append(box.records[:i], box.records[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe registers a live feed of the recipient's new notifications.
// The returned cleanup must be called when the subscriber goes away.
func (s *Store) Subscribe(recipient string) (<-chan Record, func()) {
	return s.broker.subscribe(NormalizeRecipient(recipient))
}
