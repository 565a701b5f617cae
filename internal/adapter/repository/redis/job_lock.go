package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still held by owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// JobLock keeps scheduled period jobs from running on more than one
// replica at a time.
type JobLock struct {
	client *redis.Client
	prefix string
	owner  string
}

// NewJobLock creates a JobLock identifying itself as owner.
func NewJobLock(client *redis.Client, owner string) *JobLock {
	return &JobLock{
		client: client,
		prefix: "gobudget:job:",
		owner:  owner,
	}
}

// Acquire takes the lock for job. It returns false if another owner holds it.
func (l *JobLock) Acquire(ctx context.Context, job string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+job, l.owner, ttl).Result()
}

// Release drops the lock if this owner still holds it.
func (l *JobLock) Release(ctx context.Context, job string) error {
	return releaseScript.Run(ctx, l.client, []string{l.prefix + job}, l.owner).Err()
}
