package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natsImage = "nats:2.10-alpine"

// SetupNatsContainer starts NATS with JetStream enabled and returns the
// container and its client URL. The caller terminates the container.
func SetupNatsContainer(ctx context.Context) (*nats.NATSContainer, string, error) {
	natsContainer, err := nats.Run(ctx,
		natsImage,
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Server is ready"),
				wait.ForListeningPort("4222/tcp"),
			).WithDeadline(45*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start NATS container: %w", err)
	}

	natsURL, err := natsContainer.ConnectionString(ctx)
	if err != nil {
		_ = natsContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get NATS connection string: %w", err)
	}
	return natsContainer, natsURL, nil
}
