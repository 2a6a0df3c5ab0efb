package testutil

import (
	"context"

	rabbitmqTC "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

// TestBroker holds test RabbitMQ resources
type TestBroker struct {
	URL       string
	container *rabbitmqTC.RabbitMQContainer
}

// SetupTestBroker creates a new test RabbitMQ container
func SetupTestBroker(ctx context.Context) (*TestBroker, error) {
	container, err := rabbitmqTC.Run(ctx, "rabbitmq:3.12-alpine")
	if err != nil {
		return nil, err
	}

	url, err := container.AmqpURL(ctx)
	if err != nil {
		if terr := container.Terminate(ctx); terr != nil {
			err = terr
		}
		return nil, err
	}

	return &TestBroker{URL: url, container: container}, nil
}

// Teardown terminates the container
func (t *TestBroker) Teardown(ctx context.Context) {
	if t.container != nil {
		if err := t.container.Terminate(ctx); err != nil {
			return
		}
	}
}
