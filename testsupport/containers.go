//go:build integration

// Package testsupport starts throwaway backing services for integration tests.
package testsupport

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartMongo runs a mongo:7 container for the lifetime of tb and returns its URI.
func StartMongo(ctx context.Context, tb testing.TB) string {
	tb.Helper()
	return start(ctx, tb, "mongo:7", "27017/tcp", "mongodb://%s:%s")
}

// StartRedis runs a redis:7 container for the lifetime of tb and returns host:port.
func StartRedis(ctx context.Context, tb testing.TB) string {
	tb.Helper()
	return start(ctx, tb, "redis:7-alpine", "6379/tcp", "%s:%s")
}

func start(ctx context.Context, tb testing.TB, image string, port nat.Port, format string) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForListeningPort(port),
		},
		Started: true,
	})
	if err != nil {
		tb.Fatalf("%s container: %v", image, err)
	}
	tb.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			tb.Logf("failed to terminate %s container: %v", image, err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		tb.Fatalf("%s host: %v", image, err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		tb.Fatalf("%s port: %v", image, err)
	}
	return fmt.Sprintf(format, host, mapped.Port())
}
