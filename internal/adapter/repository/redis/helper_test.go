package redis

import (
	"slices"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-process Redis and a client bound to it.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

// requireKeys fails unless the server holds exactly the given keys.
func requireKeys(t *testing.T, mr *miniredis.Miniredis, want ...string) {
	t.Helper()

	got := mr.Keys()
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
}
