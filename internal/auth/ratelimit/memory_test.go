package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(3, 15*time.Minute)
	m.now = func() time.Time { return now }

	st, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, st.Blocked)

	for i := 0; i < 2; i++ {
		st, err = m.Fail(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, st.Blocked, "attempt %d", i+1)
	}

	// третья неудача переводит ключ в блок
	st, err = m.Fail(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, st.Blocked)
	assert.Equal(t, 15*time.Minute, st.Retry)

	// четвёртая попытка отбивается ещё на Check с остатком блокировки
	now = now.Add(5 * time.Minute)
	st, err = m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, st.Blocked)
	assert.Equal(t, 10*time.Minute, st.Retry)
}

func TestMemoryBlockExpiresAndCounterResets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(3, 15*time.Minute)
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := m.Fail(ctx, "10.0.0.1")
		require.NoError(t, err)
	}

	now = now.Add(16 * time.Minute)
	st, err := m.Check(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, st.Blocked)

	// после истечения окна счётчик начинается заново
	st, err = m.Fail(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, st.Blocked)
}

func TestMemoryResetClearsKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(3, 15*time.Minute)
	_, err := m.Fail(ctx, "a")
	require.NoError(t, err)
	_, err = m.Fail(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, "a"))

	// после сброса снова три попытки до блока
	st, err := m.Fail(ctx, "a")
	require.NoError(t, err)
	assert.False(t, st.Blocked)
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(3, 15*time.Minute)
	for i := 0; i < 3; i++ {
		_, err := m.Fail(ctx, "blocked-ip")
		require.NoError(t, err)
	}

	st, err := m.Check(ctx, "other-ip")
	require.NoError(t, err)
	assert.False(t, st.Blocked)
}
