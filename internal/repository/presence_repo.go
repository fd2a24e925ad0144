package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edupulse/engage-api/internal/presence"
)

const presenceKeyPrefix = "engage:presence:"

// PresenceRepository stores heartbeat timestamps keyed by student. Keys
// expire with the presence window, so redis only ever holds subjects that
// could still count as online.
type PresenceRepository interface {
	Touch(ctx context.Context, studentID uint, seenAt time.Time) error
	LastSeen(ctx context.Context, studentID uint) (*time.Time, error)
}

type presenceRepository struct {
	client *redis.Client
}

// NewPresenceRepository constructs a redis-backed presence repository.
func NewPresenceRepository(client *redis.Client) PresenceRepository {
	return &presenceRepository{client: client}
}

func presenceKey(studentID uint) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, studentID)
}

func (r *presenceRepository) Touch(ctx context.Context, studentID uint, seenAt time.Time) error {
	value := seenAt.UTC().Format(time.RFC3339Nano)
	return r.client.Set(ctx, presenceKey(studentID), value, presence.Window).Err()
}

func (r *presenceRepository) LastSeen(ctx context.Context, studentID uint) (*time.Time, error) {
	value, err := r.client.Get(ctx, presenceKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	seenAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("corrupt presence timestamp for student %d: %w", studentID, err)
	}
	return &seenAt, nil
}
