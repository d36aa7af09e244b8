package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	ctx := context.Background()

	sess, err := sm.Create(ctx, Session{UserID: 7, Email: "a@b.test", Role: "STAFF"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, time.Hour, mr.TTL("session:"+sess.Token))

	loaded, err := sm.Load(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, int64(7), loaded.UserID)
	require.Equal(t, sess.Token, loaded.Token)

	require.NoError(t, sm.Destroy(ctx, sess.Token))
	_, err = sm.Load(ctx, sess.Token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	sess, err := sm.Create(context.Background(), Session{UserID: 1})
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = sm.Load(context.Background(), sess.Token)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = sm.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionContext(t *testing.T) {
	require.Nil(t, SessionFromContext(context.Background()))
	ctx := ContextWithSession(context.Background(), &Session{UserID: 3})
	require.Equal(t, int64(3), SessionFromContext(ctx).UserID)
}
