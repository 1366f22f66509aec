package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/metrics"
)

// KafkaConfig holds the Kafka telemetry settings.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	Version  string
}

// KafkaSink publishes records as JSON to a Kafka topic, keyed by query hash.
// Sends never block: when the producer input is full the record is dropped.
type KafkaSink struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewKafkaSink connects an async producer to the brokers.
func NewKafkaSink(cfg KafkaConfig, logger *zap.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic cannot be empty")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "regsearch"
	}
	if cfg.Version == "" {
		cfg.Version = "2.8.0"
	}
	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("parse kafka version: %w", err)
	}

	kc := sarama.NewConfig()
	kc.Version = version
	kc.ClientID = cfg.ClientID
	kc.Producer.RequiredAcks = sarama.WaitForLocal
	kc.Producer.Return.Successes = false
	kc.Producer.Return.Errors = true
	kc.Producer.Retry.Max = 3
	kc.Producer.Flush.Frequency = 100 * time.Millisecond
	kc.ChannelBufferSize = 1024
	kc.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, kc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, cfg.Topic, logger), nil
}

// NewKafkaSinkWithProducer wraps an existing producer. The producer must
// return errors and must not return successes.
func NewKafkaSinkWithProducer(p sarama.AsyncProducer, topic string, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &KafkaSink{producer: p, topic: topic, logger: logger}
	s.wg.Add(1)
	go s.drainErrors()
	return s
}

func (s *KafkaSink) drainErrors() {
	defer s.wg.Done()
	for perr := range s.producer.Errors() {
		metrics.TelemetryDroppedTotal.WithLabelValues("kafka").Inc()
		s.logger.Warn("Telemetry publish failed", zap.String("topic", s.topic), zap.Error(perr.Err))
	}
}

// Emit implements Sink.
func (s *KafkaSink) Emit(_ context.Context, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("Telemetry encode failed", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(rec.QueryHash),
		Value: sarama.ByteEncoder(data),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.producer.Input() <- msg:
	default:
		metrics.TelemetryDroppedTotal.WithLabelValues("kafka").Inc()
		s.logger.Debug("Telemetry buffer full, record dropped", zap.String("request_id", rec.RequestID))
	}
}

// Close flushes buffered records and stops the producer. Idempotent.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.producer.Close()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
