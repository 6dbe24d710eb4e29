package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fantasy/internal/notification"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

// Redis layout per user:
//
//	notifications:<user>        hash  id -> notification JSON
//	notifications:<user>:index  zset  id scored by creation time (unix ms)
//	notifications:<user>:live   pub/sub channel receiving each new notification
type Redis struct {
	client redis.UniversalClient
	limit  int
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, limit: notification.InboxLimit}
}

func hashKey(userID id.UserID) string  { return "notifications:" + userID.String() }
func indexKey(userID id.UserID) string { return hashKey(userID) + ":index" }

// LiveChannel is the pub/sub channel for a user's new notifications.
func LiveChannel(userID id.UserID) string { return hashKey(userID) + ":live" }

// saveScript stores the notification, evicts the oldest entries beyond the
// limit and publishes, all in one round trip.
var saveScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
local excess = redis.call('ZCARD', KEYS[2]) - tonumber(ARGV[4])
if excess > 0 then
  local old = redis.call('ZRANGE', KEYS[2], 0, excess - 1)
  redis.call('ZREMRANGEBYRANK', KEYS[2], 0, excess - 1)
  redis.call('HDEL', KEYS[1], unpack(old))
end
redis.call('PUBLISH', KEYS[3], ARGV[2])
return excess
`)

func (s *Redis) Save(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	keys := []string{hashKey(n.UserID), indexKey(n.UserID), LiveChannel(n.UserID)}
	err = saveScript.Run(ctx, s.client, keys, n.ID.String(), payload, n.CreatedAt.UnixMilli(), s.limit).Err()
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (s *Redis) List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]notification.Notification, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notification index: %w", err)
	}
	if len(ids) == 0 {
		return []notification.Notification{}, nil
	}

	values, err := s.client.HMGet(ctx, hashKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	out := make([]notification.Notification, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var n notification.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkRead flips the read flag under WATCH so a concurrent eviction of the
// entry is never undone.
func (s *Redis) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	key := hashKey(userID)
	field := notificationID.String()

	update := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, field).Result()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read notification: %w", err)
		}

		var n notification.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		if n.Read {
			return nil
		}
		n.Read = true
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, payload)
			return nil
		})
		return err
	}

	for range 3 {
		err := s.client.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update notification: %w", sentinel.ErrConflict)
}
