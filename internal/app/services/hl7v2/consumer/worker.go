// Package consumer drains the inbound message queue through the same
// pipelines the HTTP endpoints use. A delivery that cannot be processed is
// parked on the dead-letter queue so a poison message never loops.
package consumer

import (
	"context"
	"time"

	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Envelope is the payload carried on the inbound queue: the message kind
// discriminator plus the parsed message itself.
type Envelope struct {
	MessageType string          `json:"message_type"`
	Message     json.RawMessage `json:"message"`
}

// channel is the slice of *amqp.Channel the worker consumes and publishes
// through.
type channel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Worker struct {
	ch             channel
	log            *zap.Logger
	hl7v2Usecase   contracts.HL7v2Usecase
	internalConfig *config.InternalConfig
}

// NewWorker opens a channel and declares the inbound and dead-letter queues
// as durable so messages survive a broker restart.
func NewWorker(conn *amqp.Connection, logger *zap.Logger, hl7v2Usecase contracts.HL7v2Usecase, internalConfig *config.InternalConfig) (*Worker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	for _, queueName := range []string{internalConfig.HL7v2.InboundQueueName, internalConfig.HL7v2.DeadLetterQueueName} {
		_, err = ch.QueueDeclare(
			queueName,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return nil, err
	}

	return &Worker{
		ch:             ch,
		log:            logger,
		hl7v2Usecase:   hl7v2Usecase,
		internalConfig: internalConfig,
	}, nil
}

// Start consumes until the context is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	queueName := w.internalConfig.HL7v2.InboundQueueName
	deliveries, err := w.ch.Consume(
		queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	w.log.Info("consumer.Worker started", zap.String(constvars.LoggingQueueNameKey, queueName))

	for {
		select {
		case <-ctx.Done():
			return w.ch.Close()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(delivery)
		}
	}
}

func (w *Worker) handle(delivery amqp.Delivery) {
	requestID := uuid.NewString()
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, requestID)
	timeout := time.Duration(w.internalConfig.HL7v2.PipelineTimeoutInSecond) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var envelope Envelope
	if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
		w.log.Error("consumer.Worker invalid envelope",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		w.park(ctx, delivery)
		return
	}

	message := new(hl7v2dto.Message)
	if err := json.Unmarshal(envelope.Message, &message); err != nil {
		w.log.Error("consumer.Worker invalid message payload",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageTypeKey, envelope.MessageType),
			zap.Error(err),
		)
		w.park(ctx, delivery)
		return
	}

	var err error
	switch envelope.MessageType {
	case constvars.MessageTypeORUR01:
		_, err = w.hl7v2Usecase.ProcessORUR01(ctx, message)
	case constvars.MessageTypeVXUV04:
		_, err = w.hl7v2Usecase.ProcessVXUV04(ctx, message)
	default:
		w.log.Error("consumer.Worker unsupported message type",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageTypeKey, envelope.MessageType),
		)
		w.park(ctx, delivery)
		return
	}

	if err != nil {
		w.log.Error("consumer.Worker pipeline failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageTypeKey, envelope.MessageType),
			zap.String(constvars.LoggingControlIDKey, message.ControlID),
			zap.Error(err),
		)
		w.park(ctx, delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		w.log.Error("consumer.Worker ack failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}

// park moves a failed delivery to the dead-letter queue and acknowledges the
// original so the inbound queue keeps moving.
func (w *Worker) park(ctx context.Context, delivery amqp.Delivery) {
	dlqName := w.internalConfig.HL7v2.DeadLetterQueueName
	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         delivery.Body,
		DeliveryMode: amqp.Persistent,
	}
	if err := w.ch.PublishWithContext(ctx, "", dlqName, false, false, msg); err != nil {
		w.log.Error("consumer.Worker failed to park delivery",
			zap.String(constvars.LoggingQueueNameKey, dlqName),
			zap.Error(err),
		)
		// Leave the delivery unacked so the broker redelivers it.
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}
