// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips the test unless container tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("FOLIO_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set FOLIO_TEST_DOCKER=true to enable)")
	}
}

// Container is a started test container and its mapped address.
type Container struct {
	container testcontainers.Container
	host      string
	port      string
}

// startContainer runs req and resolves the host port mapped to port.
func startContainer(ctx context.Context, name string, req testcontainers.ContainerRequest, port nat.Port) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", name, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s host: %w", name, err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s port: %w", name, err)
	}

	return &Container{container: container, host: host, port: mapped.Port()}, nil
}

// HostPort returns host:port of the mapped service port.
func (c *Container) HostPort() string {
	return c.host + ":" + c.port
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *Container) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
