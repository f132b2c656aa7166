package bot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreGetMissingReturnsNil(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	mock.ExpectGet(sessionKey("971501234567")).RedisNil()

	session, err := store.Get(context.Background(), "971501234567")
	require.NoError(t, err)
	require.Nil(t, session)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSaveSetsTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	session := NewSession("971501234567")
	session.Step = StepBrowsing

	data, err := json.Marshal(session)
	require.NoError(t, err)
	mock.ExpectSet(sessionKey(session.Phone), data, SessionTTL).SetVal("OK")

	require.NoError(t, store.Save(context.Background(), session))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	session := NewSession("971501234567")
	session.Step = StepConfirming
	session.SelectedClassID = "c1"
	session.NumberOfGuests = 2

	data, err := json.Marshal(session)
	require.NoError(t, err)
	mock.ExpectGet(sessionKey(session.Phone)).SetVal(string(data))

	got, err := store.Get(context.Background(), session.Phone)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, StepConfirming, got.Step)
	require.Equal(t, "c1", got.SelectedClassID)
	require.Equal(t, 2, got.NumberOfGuests)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	mock.ExpectGet(sessionKey("971501234567")).SetVal("{not json")

	_, err := store.Get(context.Background(), "971501234567")
	require.Error(t, err)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := NewSession("971501234567")
	session.Step = StepCollectingInfo
	session.AwaitingField = FieldEmail
	require.NoError(t, store.Save(ctx, session))

	// Mutating the caller's copy must not leak into the store.
	session.Step = StepIdle

	got, err := store.Get(ctx, "971501234567")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, StepCollectingInfo, got.Step)
	require.Equal(t, FieldEmail, got.AwaitingField)
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := NewSession("971501234567")
	session.LastActivity = time.Now().Add(-SessionTTL - time.Minute)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "971501234567")
	require.NoError(t, err)
	require.Nil(t, got)

	// The expired entry was discarded on read.
	store.mu.RLock()
	_, stillThere := store.sessions["971501234567"]
	store.mu.RUnlock()
	require.False(t, stillThere)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, NewSession("971501234567")))
	require.NoError(t, store.Delete(ctx, "971501234567"))

	got, err := store.Get(ctx, "971501234567")
	require.NoError(t, err)
	require.Nil(t, got)
}
