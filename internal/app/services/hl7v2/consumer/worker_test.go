package consumer

import (
	"context"
	"errors"
	"testing"

	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/models"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/dto/responses"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

type published struct {
	key  string
	body []byte
}

type fakeChannel struct {
	deliveries chan amqp.Delivery
	publishErr error
	publishes  []published
	closed     bool
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.publishes = append(f.publishes, published{key: key, body: msg.Body})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type stubPipeline struct {
	err   error
	calls []string
}

func (s *stubPipeline) ProcessORUR01(ctx context.Context, message *hl7v2dto.Message) (*responses.ProcessMessage, error) {
	s.calls = append(s.calls, "ORU_R01")
	if s.err != nil {
		return nil, s.err
	}
	return &responses.ProcessMessage{PatientID: "p-1", PatientURL: "Patient"}, nil
}

func (s *stubPipeline) ProcessVXUV04(ctx context.Context, message *hl7v2dto.Message) (*responses.ProcessMessage, error) {
	s.calls = append(s.calls, "VXU_V04")
	if s.err != nil {
		return nil, s.err
	}
	return &responses.ProcessMessage{PatientID: "p-1", PatientURL: "Patient"}, nil
}

func (s *stubPipeline) FindAttachmentURL(ctx context.Context, patientID, observationID string) (*responses.AttachmentURL, error) {
	return nil, nil
}

func (s *stubPipeline) FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error) {
	return nil, nil
}

const testDLQName = "hl7v2-inbound-dlq"

func newTestWorker(ch *fakeChannel, pipeline *stubPipeline) *Worker {
	return &Worker{
		ch:           ch,
		log:          zap.NewNop(),
		hl7v2Usecase: pipeline,
		internalConfig: &config.InternalConfig{
			HL7v2: config.HL7v2{
				InboundQueueName:        "hl7v2-inbound",
				DeadLetterQueueName:     testDLQName,
				PipelineTimeoutInSecond: 5,
			},
		},
	}
}

func newDelivery(body string) (amqp.Delivery, *fakeAcknowledger) {
	acknowledger := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: acknowledger, Body: []byte(body)}, acknowledger
}

const validEnvelopeBody = `{"message_type":"ORU_R01","message":{"control_id":"MSG-001","patient_group":{"patient":{"name":[{"family":"Kowalska","given":["Anna"]}]}}}}`

func TestWorkerHandleAcksOnSuccess(t *testing.T) {
	ch := &fakeChannel{}
	pipeline := &stubPipeline{}
	worker := newTestWorker(ch, pipeline)

	delivery, acknowledger := newDelivery(validEnvelopeBody)
	worker.handle(delivery)

	assert.Equal(t, []string{"ORU_R01"}, pipeline.calls)
	assert.True(t, acknowledger.acked)
	assert.False(t, acknowledger.nacked)
	assert.Empty(t, ch.publishes)
}

func TestWorkerHandleDispatchesVXUV04(t *testing.T) {
	ch := &fakeChannel{}
	pipeline := &stubPipeline{}
	worker := newTestWorker(ch, pipeline)

	delivery, acknowledger := newDelivery(`{"message_type":"VXU_V04","message":{"patient_group":{"patient":{}}}}`)
	worker.handle(delivery)

	assert.Equal(t, []string{"VXU_V04"}, pipeline.calls)
	assert.True(t, acknowledger.acked)
}

func TestWorkerHandleParksOnPipelineFailure(t *testing.T) {
	ch := &fakeChannel{}
	pipeline := &stubPipeline{err: errors.New("store unavailable")}
	worker := newTestWorker(ch, pipeline)

	delivery, acknowledger := newDelivery(validEnvelopeBody)
	worker.handle(delivery)

	require.Len(t, ch.publishes, 1)
	assert.Equal(t, testDLQName, ch.publishes[0].key)
	assert.Equal(t, []byte(validEnvelopeBody), ch.publishes[0].body)
	assert.True(t, acknowledger.acked)
	assert.False(t, acknowledger.nacked)
}

func TestWorkerHandleParksInvalidPayloads(t *testing.T) {
	t.Run("malformed envelope", func(t *testing.T) {
		ch := &fakeChannel{}
		pipeline := &stubPipeline{}
		worker := newTestWorker(ch, pipeline)

		delivery, acknowledger := newDelivery(`{not json`)
		worker.handle(delivery)

		assert.Empty(t, pipeline.calls)
		require.Len(t, ch.publishes, 1)
		assert.True(t, acknowledger.acked)
	})

	t.Run("unsupported message type", func(t *testing.T) {
		ch := &fakeChannel{}
		pipeline := &stubPipeline{}
		worker := newTestWorker(ch, pipeline)

		delivery, acknowledger := newDelivery(`{"message_type":"ADT_A01","message":{}}`)
		worker.handle(delivery)

		assert.Empty(t, pipeline.calls)
		require.Len(t, ch.publishes, 1)
		assert.True(t, acknowledger.acked)
	})
}

func TestWorkerHandleRequeuesWhenParkingFails(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("broker gone")}
	pipeline := &stubPipeline{err: errors.New("store unavailable")}
	worker := newTestWorker(ch, pipeline)

	delivery, acknowledger := newDelivery(validEnvelopeBody)
	worker.handle(delivery)

	assert.False(t, acknowledger.acked)
	assert.True(t, acknowledger.nacked)
	assert.True(t, acknowledger.requeued)
}

func TestWorkerStartStopsWithContext(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery)}
	worker := newTestWorker(ch, &stubPipeline{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	cancel()
	require.NoError(t, <-done)
	assert.True(t, ch.closed)
}

func TestWorkerStartDrainsDeliveries(t *testing.T) {
	deliveries := make(chan amqp.Delivery, 1)
	ch := &fakeChannel{deliveries: deliveries}
	pipeline := &stubPipeline{}
	worker := newTestWorker(ch, pipeline)

	delivery, acknowledger := newDelivery(validEnvelopeBody)
	deliveries <- delivery
	close(deliveries)

	require.NoError(t, worker.Start(context.Background()))
	assert.Equal(t, []string{"ORU_R01"}, pipeline.calls)
	assert.True(t, acknowledger.acked)
}
