package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "settlement.events"
	ExchangeKind = "topic"
)

// Routing keys публикуемых событий
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingConfirmed = "booking.confirmed"
	KeyBookingRejected  = "booking.rejected"
	KeyBookingCancelled = "booking.cancelled"
	KeyRefundIssued     = "refund.issued"
	KeyPenaltyDetected  = "penalty.detected"
	KeyPenaltyCharged   = "penalty.charged"
	KeyPenaltyWaived    = "penalty.waived"
	KeyPenaltyResolved  = "penalty.resolved"
	KeyExtensionCreated = "extension.created"
	KeyExtensionDecided = "extension.decided"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Event событие для downstream потребителей (уведомления, аналитика)
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// Notifier публикует доменные события в RabbitMQ
// Публикация best-effort: сбой логируется и никогда не прерывает операцию
type Notifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     Logger
}

// New подключается к RabbitMQ и объявляет exchange
func New(url string, log Logger) (*Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &Notifier{conn: conn, channel: ch, log: log}, nil
}

// Publish отправляет событие с указанным routing key
// Ошибка публикации логируется и не возвращается
func (n *Notifier) Publish(routingKey string, payload map[string]interface{}) {
	event := Event{
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.log.Error("notifier: marshal event %s: %v", routingKey, err)
		return
	}

	err = n.channel.Publish(
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.log.Error("notifier: publish %s: %v", routingKey, err)
		return
	}

	n.log.Info("notifier: published %s/%s", ExchangeName, routingKey)
}

// Close закрывает канал и соединение
func (n *Notifier) Close() {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}

// Noop заглушка, когда уведомления выключены в конфиге
type Noop struct{}

func (Noop) Publish(string, map[string]interface{}) {}
func (Noop) Close()                                 {}
