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
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer is the shared SurrealDB instance.
type SurrealDBContainer struct {
	*Container
}

// StartSurrealDB starts one SurrealDB container per test process.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	RequireDocker(t)

	surrealOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		}
		c, err := startContainer(context.Background(), "SurrealDB", req, "8000/tcp")
		if err != nil {
			surrealError = err
			return
		}
		surrealContainer = &SurrealDBContainer{Container: c}
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealContainer
}

// Address returns the WebSocket RPC address.
func (c *SurrealDBContainer) Address() string {
	return "ws://" + c.HostPort() + "/rpc"
}
