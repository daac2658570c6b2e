package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, AllKeys()...))

	_, err := s.Load(ctx, KeyWalletBalance)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, KeyWalletBalance, []byte(`10000`)))
	require.NoError(t, s.Save(ctx, KeyOrders, []byte(`[]`)))

	v, err := s.Load(ctx, KeyWalletBalance)
	require.NoError(t, err)
	assert.JSONEq(t, `10000`, string(v))

	require.NoError(t, s.Save(ctx, KeyWalletBalance, []byte(`42`)))
	v, err = s.Load(ctx, KeyWalletBalance)
	require.NoError(t, err)
	assert.JSONEq(t, `42`, string(v))

	require.NoError(t, s.Delete(ctx, KeyWalletBalance, KeyOrders, KeyAddresses))
	_, err = s.Load(ctx, KeyOrders)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx))
}

func TestMemoryRepository(t *testing.T) {
	testStoreContract(t, NewMemoryRepository())
}

func TestMemoryRepository_CopiesValues(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	value := []byte(`1`)
	require.NoError(t, r.Save(ctx, KeyWalletBalance, value))
	value[0] = '9'

	got, err := r.Load(ctx, KeyWalletBalance)
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	r, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	defer r.Close()

	testStoreContract(t, r)
}

func TestRedisRepository(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS is not set")
	}

	r, err := NewRedisRepository(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer r.Close()

	testStoreContract(t, r)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	r := &PostgresRepository{delays: []time.Duration{time.Millisecond, time.Millisecond}}
	ctx := context.Background()

	calls := 0
	err := r.withRetry(ctx, func() error {
		calls++
		return &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = r.withRetry(ctx, func() error {
		calls++
		if calls < 2 {
			return errors.New("read: connection reset by peer")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = r.withRetry(ctx, func() error {
		calls++
		return errors.New("syntax error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
