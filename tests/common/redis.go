package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	redisOnce      sync.Once
	redisContainer *RedisContainer
	redisError     error
)

// RedisContainer is the shared Redis instance.
type RedisContainer struct {
	*Container
}

// StartRedis starts one Redis container per test process.
func StartRedis(t *testing.T) *RedisContainer {
	t.Helper()
	RequireDocker(t)

	redisOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			).WithDeadline(60 * time.Second),
		}
		c, err := startContainer(context.Background(), "Redis", req, "6379/tcp")
		if err != nil {
			redisError = err
			return
		}
		redisContainer = &RedisContainer{Container: c}
	})

	if redisError != nil {
		t.Fatalf("Redis container failed: %v", redisError)
	}
	return redisContainer
}

// Address returns host:port for go-redis.
func (c *RedisContainer) Address() string {
	return c.HostPort()
}
