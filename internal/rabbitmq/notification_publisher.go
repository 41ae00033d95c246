package rabbitmq

import "github.com/streadway/amqp"

// NotificationExchange имя exchange для событий уведомлений.
const NotificationExchange = "notifications"

// NotificationPublisher публикует события в exchange уведомлений.
// Оборачивает канал AMQP, чтобы сервисы зависели от узкого интерфейса,
// а не от библиотеки напрямую.
type NotificationPublisher struct {
	ch *amqp.Channel
}

// NewNotificationPublisher создает издателя поверх открытого канала.
func NewNotificationPublisher(ch *amqp.Channel) *NotificationPublisher {
	return &NotificationPublisher{ch: ch}
}

// Publish сериализует сообщение в JSON и публикует его по ключу маршрутизации.
func (p *NotificationPublisher) Publish(routingKey string, message any) error {
	return PublishMessage(p.ch, NotificationExchange, routingKey, message)
}
