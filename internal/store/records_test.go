package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingKey(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		v, found, err := s.Load(context.Background(), "nope::session")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})
}

func TestSave_ThenLoad(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, "exp::session", `{"meta":{}}`))

		v, found, err := s.Load(ctx, "exp::session")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"meta":{}}`, v)
	})
}

func TestSave_Upserts(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, "exp::session", "first"))
		require.NoError(t, s.Save(ctx, "exp::session", "second"))

		v, _, err := s.Load(ctx, "exp::session")
		require.NoError(t, err)
		assert.Equal(t, "second", v)

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"exp::session"}, keys)
	})
}

func TestSave_ValueIsOpaque(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		raw := "not json at all,   \"quoted\"\n"
		require.NoError(t, s.Save(ctx, "k", raw))

		v, found, err := s.Load(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, raw, v)
	})
}

func TestClear(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, "a::session", "a"))
		require.NoError(t, s.Save(ctx, "b::session", "b"))

		require.NoError(t, s.Clear(ctx, "a::session"))

		_, found, err := s.Load(ctx, "a::session")
		require.NoError(t, err)
		assert.False(t, found)

		v, found, err := s.Load(ctx, "b::session")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "b", v)
	})
}

func TestClear_MissingKeyIsNotError(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		assert.NoError(t, s.Clear(context.Background(), "never-saved"))
	})
}

func TestKeys_Sorted(t *testing.T) {
	eachStore(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		for _, k := range []string{"b", "A", "a"} {
			require.NoError(t, s.Save(ctx, k, "v"))
		}
		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "a", "b"}, keys)
	})
}

func TestSave_SurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/reopen.db"
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, "exp::session", "persisted"))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, found, err := s2.Load(ctx, "exp::session")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", v)
}

func TestLoad_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Load(ctx, "k")
	assert.Error(t, err)
}
