package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/engage-api/internal/presence"
)

func newPresenceFixture(t *testing.T) (*miniredis.Miniredis, PresenceRepository) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, NewPresenceRepository(client)
}

func TestPresenceTouchAndLastSeen(t *testing.T) {
	_, repo := newPresenceFixture(t)
	ctx := context.Background()

	seenAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, repo.Touch(ctx, 7, seenAt))

	got, err := repo.LastSeen(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Equal(seenAt))
}

func TestPresenceLastSeenMissIsNotAnError(t *testing.T) {
	_, repo := newPresenceFixture(t)

	got, err := repo.LastSeen(context.Background(), 404)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPresenceKeysExpireWithWindow(t *testing.T) {
	server, repo := newPresenceFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, 9, time.Now().UTC()))
	require.True(t, server.Exists("engage:presence:9"))

	server.FastForward(presence.Window + time.Second)

	got, err := repo.LastSeen(ctx, 9)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPresenceCorruptTimestampSurfaces(t *testing.T) {
	server, repo := newPresenceFixture(t)

	server.Set("engage:presence:3", "not-a-timestamp")

	_, err := repo.LastSeen(context.Background(), 3)
	require.Error(t, err)
}
