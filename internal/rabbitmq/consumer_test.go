package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ouedraogodev/pronos226/internal/models"
)

func setupRabbitMQ(t *testing.T, ctx context.Context) string {
	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(nat.Port("5672/tcp")),
			wait.ForLog("Server startup complete"),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("5672/tcp"))
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestPublishAndConsumeClaimDecision(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	amqpURI := setupRabbitMQ(t, ctx)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, GetNotificationQueues())
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	var got models.ClaimDecisionEvent

	handler := func(body []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if err := json.Unmarshal(body, &got); err != nil {
			return err
		}
		wg.Done()
		return nil
	}

	err = ConsumerMessage(ctx, ch, "notifications.claimdecision", handler)
	require.NoError(t, err)

	publisher := NewNotificationPublisher(ch)
	event := models.ClaimDecisionEvent{
		ClaimID:    "11111111-1111-1111-1111-111111111111",
		Email:      "user@example.com",
		FullName:   "Test User",
		TargetTier: "vip",
		Period:     "monthly",
		Status:     "approved",
		DecidedAt:  time.Now().UTC(),
	}
	err = publisher.Publish(RoutingKeyClaimDecision, event)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for message to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, event.ClaimID, got.ClaimID)
	assert.Equal(t, event.Email, got.Email)
	assert.Equal(t, event.Status, got.Status)
}

func TestConsumerMessage_HandlerErrorTriggersNack(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	amqpURI := setupRabbitMQ(t, ctx)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	queueName := "nack-test"
	_, err = ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	// Обработчик всегда возвращает ошибку, сообщение должно вернуться в очередь
	handler := func(_ []byte) error {
		return fmt.Errorf("fail")
	}

	err = ConsumerMessage(ctx, ch, queueName, handler)
	require.NoError(t, err)

	err = ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte("bad"),
	})
	require.NoError(t, err)

	// Проверяем повторную доставку
	deliveries, err := ch.Consume(queueName, "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, "bad", string(d.Body))
	case <-time.After(10 * time.Second):
		t.Fatal("Did not receive requeued message after Nack")
	}
}
