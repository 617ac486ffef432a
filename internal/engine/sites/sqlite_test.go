package sites

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "sites.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func provider(key string, active bool) engine.Provider {
	return engine.Provider{Key: key, Name: "Site " + key, API: "https://" + key + ".example/api.php/provide/vod/", Active: active}
}

func TestSQLiteStore_Empty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, ok, err := s.Get(ctx, "ffzy")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_ReplaceKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, []engine.Provider{
		provider("zeta", true), provider("alpha", false), provider("mid", true),
	}))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys(all))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "mid"}, keys(active))

	p, ok, err := s.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, provider("alpha", false), p)
}

func TestSQLiteStore_ReplaceSwapsEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, []engine.Provider{provider("a", true), provider("b", true)}))
	require.NoError(t, s.Replace(ctx, []engine.Provider{provider("c", true)}))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys(all))

	require.NoError(t, s.Replace(ctx, nil))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStore_InvalidReplaceLeavesData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, []engine.Provider{provider("a", true)}))

	err := s.Replace(ctx, []engine.Provider{provider("b", true), provider("b", true)})
	require.Error(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys(all))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), []engine.Provider{provider("a", true)}))
	s.Close()

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStore_ServesAggregator(t *testing.T) {
	s := openTestStore(t)
	var reg engine.Registry = s
	require.NoError(t, s.Replace(context.Background(), []engine.Provider{provider("a", true)}))

	agg := engine.New(engine.DefaultConfig(), reg, nil)
	assert.Empty(t, agg.Detail(context.Background(), "missing", "1"))
}

func keys(ps []engine.Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Key)
	}
	return out
}
