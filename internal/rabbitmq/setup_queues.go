package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена маршрутов exchange "notifications".
const (
	// RoutingKeyClaimDecision события решений по платежным заявкам.
	RoutingKeyClaimDecision = "claimdecision"
)

// GetNotificationQueues возвращает очереди, которые должен объявить
// каждый процесс, работающий с уведомлениями.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.claimdecision", RoutingKey: RoutingKeyClaimDecision},
	}
}
