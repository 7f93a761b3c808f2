package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

var (
	testAthleteID = uuid.MustParse("7d1b8c1e-3f0a-4e57-9a51-2b0f3f8c1a11")
	testUserID    = uuid.MustParse("0f7c2d4a-9b6e-4c1d-8e2f-5a3b7c9d1e22")
	testCreatedAt = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	testSession   = `{"athlete_id":"7d1b8c1e-3f0a-4e57-9a51-2b0f3f8c1a11","user_id":"0f7c2d4a-9b6e-4c1d-8e2f-5a3b7c9d1e22","created_at":"2025-03-12T10:00:00Z"}`
)

func newTestStore(t *testing.T) (*SessionStore, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewSessionStore(time.Hour, rdb)
	store.now = func() time.Time { return testCreatedAt }
	store.RandStringFunc = func(int) (string, error) { return "test_token", nil }
	return store, mock
}

func TestNewSessionStore_DefaultTTL(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()

	store := NewSessionStore(0, rdb)
	assert.Equal(t, DefaultTTL, store.ttl)
}

func TestSessionStore_Create(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectSet(sessionKeyPrefix+"test_token", testSession, time.Hour).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "test_token").SetVal(1)

	token, err := store.Create(context.Background(), testAthleteID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "test_token", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_Create_TokenError(t *testing.T) {
	store, _ := newTestStore(t)
	store.RandStringFunc = func(int) (string, error) { return "", errors.New("no entropy") }

	token, err := store.Create(context.Background(), testAthleteID, testUserID)
	require.Error(t, err)
	assert.Empty(t, token)
}

func TestSessionStore_Resolve(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectGet(sessionKeyPrefix + "test_token").SetVal(testSession)
	session, err := store.Resolve(context.Background(), "test_token")
	require.NoError(t, err)
	assert.Equal(t, testAthleteID, session.AthleteID)
	assert.Equal(t, testUserID, session.UserID)
	assert.Equal(t, testCreatedAt, session.CreatedAt)

	mock.ExpectGet(sessionKeyPrefix + "expired").RedisNil()
	_, err = store.Resolve(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet(sessionKeyPrefix + "broken").SetVal("{not json")
	_, err = store.Resolve(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet(sessionKeyPrefix + "down").SetErr(errors.New("i/o timeout"))
	_, err = store.Resolve(context.Background(), "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "i/o timeout")

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_Revoke(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectDel(sessionKeyPrefix + "test_token").SetVal(1)
	mock.ExpectSRem(tokensSetKey, "test_token").SetVal(1)
	existed, err := store.Revoke(context.Background(), "test_token")
	require.NoError(t, err)
	assert.True(t, existed)

	mock.ExpectDel(sessionKeyPrefix + "gone").SetVal(0)
	mock.ExpectSRem(tokensSetKey, "gone").SetVal(0)
	existed, err = store.Revoke(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, existed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_ScanAndClean(t *testing.T) {
	store, mock := newTestStore(t)

	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectExists(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectExists(sessionKeyPrefix + t2).SetVal(0)
	// only the expired t2 is dropped from the index
	mock.ExpectSRem(tokensSetKey, t2).SetVal(1)

	store.ScanAndClean(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
