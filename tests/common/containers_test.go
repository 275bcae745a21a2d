package common

import (
	"context"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// startContainer takes a nat.Port so callers can pass port variables, not just constants.
var _ func(context.Context, string, testcontainers.ContainerRequest, nat.Port) (*Container, error) = startContainer

func TestContainer_Addresses(t *testing.T) {
	c := &Container{host: "localhost", port: "32768"}
	if got := c.HostPort(); got != "localhost:32768" {
		t.Errorf("HostPort() = %q", got)
	}
	if got := (&SurrealDBContainer{Container: c}).Address(); got != "ws://localhost:32768/rpc" {
		t.Errorf("SurrealDB Address() = %q", got)
	}
	if got := (&RedisContainer{Container: c}).Address(); got != "localhost:32768" {
		t.Errorf("Redis Address() = %q", got)
	}
}

func TestContainer_CleanupNil(t *testing.T) {
	var c *Container
	c.Cleanup()
	(&Container{}).Cleanup()
}
