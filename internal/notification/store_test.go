package notification

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClock() func() time.Time {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	step := 0
	return func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
}

func TestInsertOrdersNewestFirst(t *testing.T) {
	store := NewStoreWithClock(testClock())

	store.Insert("kid@x.com", Message{Title: "first", Kind: KindProgress})
	store.Insert("kid@x.com", Message{Title: "second", Kind: KindProgress})
	store.Insert("kid@x.com", Message{Title: "third", Kind: KindProgress})

	records := store.List("kid@x.com", ListOptions{})
	require.Len(t, records, 3)
	require.Equal(t, "third", records[0].Title)
	require.Equal(t, "first", records[2].Title)
	require.False(t, records[0].Read)
	require.NotEmpty(t, records[0].ID)
}

func TestInsertEvictsOldestPastCap(t *testing.T) {
	store := NewStoreWithClock(testClock())

	for i := 0; i < MaxPerRecipient+5; i++ {
		store.Insert("kid@x.com", Message{Title: fmt.Sprintf("n%03d", i), Kind: KindSystem})
	}

	records := store.List("kid@x.com", ListOptions{Limit: MaxPerRecipient + 10})
	require.Len(t, records, MaxPerRecipient)
	// The five oldest inserts are gone; n005 is now the oldest survivor.
	require.Equal(t, "n104", records[0].Title)
	require.Equal(t, "n005", records[len(records)-1].Title)

	for i := 1; i < len(records); i++ {
		require.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt))
	}
}

func TestEvictionIsPerRecipient(t *testing.T) {
	store := NewStoreWithClock(testClock())

	store.Insert("other@x.com", Message{Title: "keep", Kind: KindSystem})
	for i := 0; i < MaxPerRecipient+1; i++ {
		store.Insert("busy@x.com", Message{Title: "noise", Kind: KindSystem})
	}

	require.Len(t, store.List("other@x.com", ListOptions{}), 1)
}

func TestRecipientNormalization(t *testing.T) {
	store := NewStoreWithClock(testClock())

	store.Insert("Kid@X.com ", Message{Title: "hello", Kind: KindWelcome})
	records := store.List("kid@x.com", ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, "kid@x.com", records[0].Recipient)
}

func TestMarkReadOwnershipIsolation(t *testing.T) {
	store := NewStoreWithClock(testClock())

	mine := store.Insert("a@x.com", Message{Title: "mine", Kind: KindSystem})
	theirs := store.Insert("b@x.com", Message{Title: "theirs", Kind: KindSystem})

	_, ok := store.MarkRead("a@x.com", theirs.ID)
	require.False(t, ok)
	require.Equal(t, 1, store.UnreadCount("b@x.com"))

	updated, ok := store.MarkRead("a@x.com", mine.ID)
	require.True(t, ok)
	require.True(t, updated.Read)
	require.Equal(t, 0, store.UnreadCount("a@x.com"))

	require.False(t, store.Delete("a@x.com", theirs.ID))
	require.True(t, store.Delete("b@x.com", theirs.ID))
}

func TestListUnreadOnlyAndLimit(t *testing.T) {
	store := NewStoreWithClock(testClock())

	first := store.Insert("kid@x.com", Message{Title: "one", Kind: KindSystem})
	store.Insert("kid@x.com", Message{Title: "two", Kind: KindSystem})
	store.Insert("kid@x.com", Message{Title: "three", Kind: KindSystem})

	store.MarkRead("kid@x.com", first.ID)

	unread := store.List("kid@x.com", ListOptions{UnreadOnly: true})
	require.Len(t, unread, 2)
	for _, record := range unread {
		require.False(t, record.Read)
	}

	limited := store.List("kid@x.com", ListOptions{Limit: 1})
	require.Len(t, limited, 1)
	require.Equal(t, "three", limited[0].Title)
}

func TestMarkManyAndAllRead(t *testing.T) {
	store := NewStoreWithClock(testClock())

	a := store.Insert("kid@x.com", Message{Title: "a", Kind: KindSystem})
	b := store.Insert("kid@x.com", Message{Title: "b", Kind: KindSystem})
	store.Insert("kid@x.com", Message{Title: "c", Kind: KindSystem})

	flipped := store.MarkManyRead("kid@x.com", []string{a.ID, b.ID, "missing"})
	require.Equal(t, 2, flipped)
	require.Equal(t, 1, store.UnreadCount("kid@x.com"))

	require.Equal(t, 1, store.MarkAllRead("kid@x.com"))
	require.Equal(t, 0, store.UnreadCount("kid@x.com"))
}

func TestConcurrentInsertsHoldCap(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				store.Insert("kid@x.com", Message{Title: "burst", Kind: KindSystem})
			}
		}()
	}
	wg.Wait()

	records := store.List("kid@x.com", ListOptions{Limit: MaxPerRecipient * 2})
	require.Len(t, records, MaxPerRecipient)
}

func TestSubscribeReceivesInserts(t *testing.T) {
	store := NewStoreWithClock(testClock())

	feed, cleanup := store.Subscribe("kid@x.com")
	defer cleanup()

	inserted := store.Insert("kid@x.com", Message{Title: "live", Kind: KindAchievement})

	select {
	case received := <-feed:
		require.Equal(t, inserted.ID, received.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast notification")
	}
}

func TestMetadataAndLinkPassThrough(t *testing.T) {
	store := NewStoreWithClock(testClock())

	record := store.Insert("kid@x.com", Message{
		Title:    "level up",
		Kind:     KindAchievement,
		Link:     "/students/1/progress",
		Metadata: map[string]interface{}{"level": 2},
	})

	require.Equal(t, "/students/1/progress", record.Link)
	require.Equal(t, 2, record.Metadata["level"])
}
