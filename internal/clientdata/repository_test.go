package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSeries struct {
	Prices []float64 `msgpack:"prices"`
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestRepository_StoreAndGetFresh(t *testing.T) {
	repo := newTestRepo(t)

	in := cachedSeries{Prices: []float64{42000, 43100, 41800}}
	require.NoError(t, repo.Store("market_chart", "bitcoin:365", in, time.Minute))

	var out cachedSeries
	hit, err := repo.GetIfFresh("market_chart", "bitcoin:365", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in.Prices, out.Prices)
}

func TestRepository_ExpiredIsMiss(t *testing.T) {
	repo := newTestRepo(t)

	in := cachedSeries{Prices: []float64{1}}
	require.NoError(t, repo.Store("current_prices", "bitcoin", in, -time.Second))

	var out cachedSeries
	hit, err := repo.GetIfFresh("current_prices", "bitcoin", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRepository_MissingKeyIsMiss(t *testing.T) {
	repo := newTestRepo(t)

	var out cachedSeries
	hit, err := repo.GetIfFresh("market_chart", "nope:30", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRepository_RejectsUnknownTable(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Store("secrets", "k", cachedSeries{}, time.Minute)
	require.Error(t, err)

	var out cachedSeries
	_, err = repo.GetIfFresh("secrets", "k", &out)
	require.Error(t, err)
}

func TestRepository_DeleteExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("market_chart", "old", cachedSeries{}, -time.Hour))
	require.NoError(t, repo.Store("market_chart", "new", cachedSeries{}, time.Hour))

	dropped, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), dropped)

	var out cachedSeries
	hit, err := repo.GetIfFresh("market_chart", "new", &out)
	require.NoError(t, err)
	assert.True(t, hit)
}
