package notification_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/notification"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func sample(title string) model.Notification {
	return model.Notification{
		ID:        "n-" + title,
		Type:      model.NotificationOfferCreated,
		Title:     title,
		Message:   "You have received a loan offer",
		CreatedAt: testutil.FixedNow,
	}
}

func TestRedisSink_NotifyUserPublishes(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	channel := notification.UserChannel(testutil.TestUserID)

	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sink := notification.NewRedisSink(rdb, 0)
	require.NoError(t, sink.NotifyUser(ctx, testutil.TestUserID, sample("offer")))

	select {
	case msg := <-sub.Channel():
		var got model.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, model.NotificationOfferCreated, got.Type)
		assert.Equal(t, "offer", got.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}

	inbox, err := rdb.LRange(ctx, notification.InboxKey(channel), 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestRedisSink_InboxIsCapped(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	sink := notification.NewRedisSink(rdb, 2)

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, sink.NotifyAdmins(ctx, sample(title)))
	}

	inbox, err := rdb.LRange(ctx, notification.InboxKey(notification.AdminChannel), 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Contains(t, inbox[0], `"title":"three"`)
	assert.Contains(t, inbox[1], `"title":"two"`)
}

func TestRedisSink_Errors(t *testing.T) {
	mr, rdb := newRedis(t)
	sink := notification.NewRedisSink(rdb, 0)

	assert.Error(t, sink.NotifyUser(context.Background(), "", sample("x")))

	mr.Close()
	err := sink.NotifyAdmins(context.Background(), sample("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), notification.AdminChannel)
}

func TestRedisSink_InboxReadState(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	sink := notification.NewRedisSink(rdb, 0)

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, sink.NotifyUser(ctx, testutil.TestUserID, sample(title)))
	}
	require.NoError(t, sink.NotifyUser(ctx, testutil.TestOtherUserID, sample("theirs")))

	marked, err := sink.MarkRead(ctx, testutil.TestUserID, []string{"n-one", "n-three", "n-one", "n-theirs", "n-missing"}, testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	entries, err := sink.Inbox(ctx, testutil.TestUserID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "three", entries[0].Title)
	assert.True(t, entries[0].Read())
	assert.True(t, entries[0].ReadAt.Equal(testutil.FixedNow))
	assert.False(t, entries[1].Read())
	assert.True(t, entries[2].Read())

	theirs, err := sink.Inbox(ctx, testutil.TestOtherUserID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].Read())
}

func TestRedisSink_ReadMarksFollowTheInboxCap(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	sink := notification.NewRedisSink(rdb, 2)
	readKey := notification.ReadKey(notification.UserChannel(testutil.TestUserID))

	require.NoError(t, sink.NotifyUser(ctx, testutil.TestUserID, sample("one")))
	_, err := sink.MarkRead(ctx, testutil.TestUserID, []string{"n-one"}, testutil.FixedNow)
	require.NoError(t, err)

	for _, title := range []string{"two", "three"} {
		require.NoError(t, sink.NotifyUser(ctx, testutil.TestUserID, sample(title)))
	}
	marked, err := sink.MarkRead(ctx, testutil.TestUserID, []string{"n-one", "n-two"}, testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	keys, err := rdb.HKeys(ctx, readKey).Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n-two"}, keys)
}

func TestRedisSink_EmptyInbox(t *testing.T) {
	_, rdb := newRedis(t)
	sink := notification.NewRedisSink(rdb, 0)

	entries, err := sink.Inbox(context.Background(), testutil.TestUserID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	marked, err := sink.MarkRead(context.Background(), testutil.TestUserID, []string{"n-x"}, testutil.FixedNow)
	require.NoError(t, err)
	assert.Zero(t, marked)
}
