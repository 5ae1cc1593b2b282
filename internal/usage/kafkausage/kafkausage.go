// Package kafkausage mirrors usage records onto a Kafka topic for downstream
// consumers. Publishing is fire-and-forget; the request path never waits on
// the broker.
package kafkausage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/memecard-ai/memecard/internal/core/observability"
	"github.com/memecard-ai/memecard/internal/usage"
)

type event struct {
	IP     string    `json:"ip"`
	Ref    string    `json:"ref"`
	Query  string    `json:"query"`
	Output string    `json:"output"`
	TS     time.Time `json:"ts"`
}

type Publisher struct {
	logger  *slog.Logger
	topic   string
	events  chan event
	prod    sarama.AsyncProducer
	stopped chan struct{}
}

func NewPublisher(logger *slog.Logger, brokers []string, topic string, queueSize int) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafkausage: create async producer: %w", err)
	}
	return newWithProducer(logger, prod, topic, queueSize), nil
}

// newWithProducer wires an existing producer; split out for tests.
func newWithProducer(logger *slog.Logger, prod sarama.AsyncProducer, topic string, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}

	p := &Publisher{
		logger:  logger,
		topic:   topic,
		events:  make(chan event, queueSize),
		prod:    prod,
		stopped: make(chan struct{}),
	}

	go p.run()
	go p.drainErrors()
	return p
}

var _ usage.Recorder = (*Publisher)(nil)

// Record enqueues an entry for publishing. A full queue drops the entry
// rather than blocking the request path.
func (p *Publisher) Record(ip string, e usage.Entry) {
	ev := event{
		IP:     ip,
		Ref:    e.Ref,
		Query:  e.Query,
		Output: e.Output,
		TS:     time.Now().UTC(),
	}
	select {
	case p.events <- ev:
	default:
		observability.IncUsageDropped()
	}
}

// Close stops accepting entries, drains the queue and shuts the producer
// down.
func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped

	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("kafkausage: close producer: %w", err)
	}
	return nil
}

func (p *Publisher) run() {
	defer close(p.stopped)
	for ev := range p.events {
		b, err := json.Marshal(ev)
		if err != nil {
			p.logger.Warn("usage event marshal failed", "err", err)
			continue
		}
		p.prod.Input() <- &sarama.ProducerMessage{
			Topic: p.topic,
			Value: sarama.ByteEncoder(b),
		}
	}
}

func (p *Publisher) drainErrors() {
	for err := range p.prod.Errors() {
		if err != nil {
			p.logger.Warn("kafka producer error", "err", err)
		}
	}
}
