package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// TransactionEvent сообщение об исходе денежной операции
type TransactionEvent struct {
	UserID    int64     `json:"user_id"`
	Reference string    `json:"reference"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer Kafka producer для отправки уведомлений об операциях.
// Уведомления — best-effort побочный эффект: их сбой логируется
// и никогда не откатывает финансовую мутацию.
type Producer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewProducer создает новый Kafka producer
func NewProducer(brokers []string, topic string, logger *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Асинхронная отправка для производительности
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
	}

	logger.Infof("Kafka producer initialized for topic: %s", topic)

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// SendTransactionEvent отправляет уведомление об исходе операции
func (p *Producer) SendTransactionEvent(ctx context.Context, event TransactionEvent) error {
	event.Timestamp = time.Now()

	// Сериализуем сообщение в JSON
	messageBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorf("Failed to marshal Kafka message: %v", err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Отправляем сообщение в Kafka
	kafkaMessage := kafka.Message{
		Key:   []byte(fmt.Sprintf("user_%d", event.UserID)),
		Value: messageBytes,
		Time:  time.Now(),
	}

	err = p.writer.WriteMessages(ctx, kafkaMessage)
	if err != nil {
		p.logger.Errorf("Failed to send message to Kafka: %v", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Debugf("Sent transaction event to Kafka: UserID=%d, Ref=%s, Status=%s",
		event.UserID, event.Reference, event.Status)

	return nil
}

// Close закрывает Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		p.logger.Info("Closing Kafka producer")
		return p.writer.Close()
	}
	return nil
}
