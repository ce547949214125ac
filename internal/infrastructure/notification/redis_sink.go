package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// Channel layout. Realtime gateways subscribe to the channels; clients that
// were offline read the capped inbox lists.
const (
	AdminChannel   = "notifications:admins"
	userChannelFmt = "notifications:user:%s"
	inboxSuffix    = ":inbox"
	readSuffix     = ":read"

	DefaultInboxSize = 100
)

var (
	_ port.NotificationSink  = (*RedisSink)(nil)
	_ port.NotificationInbox = (*RedisSink)(nil)
)

// RedisSink implements port.NotificationSink on Redis pub/sub plus a capped
// per-audience inbox list, and port.NotificationInbox over the same list with
// a hash of notification id to read time.
type RedisSink struct {
	rdb       goredis.UniversalClient
	inboxSize int64
}

// NewRedisSink creates a sink. A non-positive inboxSize uses DefaultInboxSize.
func NewRedisSink(rdb goredis.UniversalClient, inboxSize int) *RedisSink {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	return &RedisSink{rdb: rdb, inboxSize: int64(inboxSize)}
}

// UserChannel is the pub/sub channel for one user.
func UserChannel(userID string) string {
	return fmt.Sprintf(userChannelFmt, userID)
}

// InboxKey is the list holding recent notifications for channel.
func InboxKey(channel string) string {
	return channel + inboxSuffix
}

// ReadKey is the hash recording when inbox entries on channel were read.
func ReadKey(channel string) string {
	return channel + readSuffix
}

// NotifyUser delivers n to one user.
func (s *RedisSink) NotifyUser(ctx context.Context, userID string, n model.Notification) error {
	if userID == "" {
		return fmt.Errorf("notify user: empty user id")
	}
	return s.deliver(ctx, UserChannel(userID), n)
}

// NotifyAdmins delivers n to the admin audience.
func (s *RedisSink) NotifyAdmins(ctx context.Context, n model.Notification) error {
	return s.deliver(ctx, AdminChannel, n)
}

func (s *RedisSink) deliver(ctx context.Context, channel string, n model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.Type, err)
	}

	inbox := InboxKey(channel)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, inbox, payload)
	pipe.LTrim(ctx, inbox, 0, s.inboxSize-1)
	pipe.Publish(ctx, channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deliver notification to %s: %w", channel, err)
	}
	return nil
}

// Inbox returns the user's inbox, newest first, with read state attached.
func (s *RedisSink) Inbox(ctx context.Context, userID string) ([]model.InboxEntry, error) {
	channel := UserChannel(userID)
	items, err := s.inbox(ctx, channel)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	ids := make([]string, len(items))
	for i, n := range items {
		ids[i] = n.ID
	}
	readAt, err := s.rdb.HMGet(ctx, ReadKey(channel), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load read state for %s: %w", channel, err)
	}

	out := make([]model.InboxEntry, len(items))
	for i, n := range items {
		out[i] = model.InboxEntry{Notification: n}
		if raw, ok := readAt[i].(string); ok {
			if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				out[i].ReadAt = &at
			}
		}
	}
	return out, nil
}

// MarkRead records ids as read at the given time. Ids no longer in the inbox
// are ignored and read marks for trimmed entries are dropped.
func (s *RedisSink) MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int, error) {
	channel := UserChannel(userID)
	items, err := s.inbox(ctx, channel)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(items))
	for _, n := range items {
		present[n.ID] = true
	}

	stamp := at.UTC().Format(time.RFC3339Nano)
	marks := make(map[string]any, len(ids))
	for _, id := range ids {
		if present[id] {
			marks[id] = stamp
		}
	}
	if len(marks) == 0 {
		return 0, nil
	}

	key := ReadKey(channel)
	known, err := s.rdb.HKeys(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("load read state for %s: %w", channel, err)
	}
	var stale []string
	for _, id := range known {
		if !present[id] {
			stale = append(stale, id)
		}
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, marks)
	if len(stale) > 0 {
		pipe.HDel(ctx, key, stale...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("mark notifications read on %s: %w", channel, err)
	}
	return len(marks), nil
}

func (s *RedisSink) inbox(ctx context.Context, channel string) ([]model.Notification, error) {
	raw, err := s.rdb.LRange(ctx, InboxKey(channel), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load inbox for %s: %w", channel, err)
	}
	out := make([]model.Notification, 0, len(raw))
	for _, r := range raw {
		var n model.Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			return nil, fmt.Errorf("decode inbox entry on %s: %w", channel, err)
		}
		out = append(out, n)
	}
	return out, nil
}
