package events

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"marketapi/internal/config"
)

// Producer is the broker write path. *kafka.Writer satisfies it.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Result reports the outcome of a single publish. Callers are free to discard it.
type Result struct {
	Topic   string
	Payload string
	Err     error
}

// OK reports whether the broker accepted the message.
func (r Result) OK() bool { return r.Err == nil }

// Publisher is what the façades depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) Result
}

// Emitter publishes events through a Producer and swallows every failure after
// logging and counting it.
type Emitter struct {
	producer  Producer
	log       zerolog.Logger
	published *prometheus.CounterVec
}

// NewEmitter registers events_published_total on reg and returns an Emitter.
func NewEmitter(p Producer, log zerolog.Logger, reg prometheus.Registerer) (*Emitter, error) {
	e := &Emitter{
		producer: p,
		log:      log.With().Str("component", "events").Logger(),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Total number of event publish attempts by outcome.",
			},
			[]string{"topic", "result"},
		),
	}
	if err := reg.Register(e.published); err != nil {
		return nil, err
	}
	return e, nil
}

var _ Publisher = (*Emitter)(nil)

// Publish writes one message keyed by the event's entity id. It never returns
// an error and never panics; the outcome is in the Result.
func (e *Emitter) Publish(ctx context.Context, topic string, ev Event) (res Result) {
	res = Result{Topic: topic, Payload: ev.Encode()}

	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.New("producer panicked")
			e.log.Error().Interface("panic", r).Str("topic", topic).Str("payload", res.Payload).Msg("event publish panicked")
		}
		outcome := "ok"
		if res.Err != nil {
			outcome = "error"
		}
		e.published.WithLabelValues(topic, outcome).Inc()
	}()

	if err := ev.Validate(); err != nil {
		res.Err = err
		e.log.Error().Err(err).Str("topic", topic).Str("payload", res.Payload).Msg("event not published")
		return res
	}

	// The business operation has already committed; a cancelled request must not drop the event.
	err := e.producer.WriteMessages(context.WithoutCancel(ctx), kafka.Message{
		Topic: topic,
		Key:   []byte(ev.Key()),
		Value: []byte(res.Payload),
		Time:  time.Now().UTC(),
	})
	if err != nil {
		res.Err = err
		e.log.Error().Err(err).Str("topic", topic).Str("payload", res.Payload).Msg("event publish failed")
		return res
	}

	e.log.Debug().Str("topic", topic).Str("payload", res.Payload).Msg("event published")
	return res
}

// Close releases the underlying producer.
func (e *Emitter) Close() error {
	return e.producer.Close()
}

// batchTimeout caps how long a synchronous publish waits for its batch to fill.
// Each publish carries one message, so the writer's 1s default would stall every
// write request by that long.
const batchTimeout = 5 * time.Millisecond

// NewKafkaWriter builds a writer that routes by per-message topic. The write
// timeout is the only bound on a publish.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		MaxAttempts:            1,
	}
}

// NopProducer accepts and drops every message.
type NopProducer struct{}

func (NopProducer) WriteMessages(context.Context, ...kafka.Message) error { return nil }
func (NopProducer) Close() error                                          { return nil }
