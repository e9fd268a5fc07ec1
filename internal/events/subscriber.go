package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, envelope Envelope) error

// Subscriber reads a Redis Stream through a consumer group. Messages whose
// handler returns an error are left unacked so the stream redelivers them;
// the dedup layer downstream keeps reprocessing safe.
type Subscriber struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	handler       Handler
	logger        *slog.Logger
	batchSize     int64
	blockDuration time.Duration
}

type SubscriberConfig struct {
	Stream        string
	Group         string
	Consumer      string
	Handler       Handler
	Logger        *slog.Logger
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client *redis.Client, cfg SubscriberConfig) *Subscriber {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Subscriber{
		client:        client,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumer:      cfg.Consumer,
		handler:       cfg.Handler,
		logger:        cfg.Logger,
		batchSize:     cfg.BatchSize,
		blockDuration: cfg.BlockDuration,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("Start: create consumer group: %w", err)
	}

	s.logger.Info("event subscriber started",
		"stream", s.stream,
		"group", s.group,
		"consumer", s.consumer,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("event subscriber stopped", "stream", s.stream)
			return ctx.Err()
		default:
			if err := s.readBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("failed to read from stream", "stream", s.stream, "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readBatch(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("readBatch: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.dispatch(ctx, message); err != nil {
				// No ack: the stream will redeliver this message.
				s.logger.Error("event handling failed",
					"stream", s.stream,
					"message_id", message.ID,
					"error", err,
				)
				continue
			}

			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.logger.Error("failed to ack message",
					"stream", s.stream,
					"message_id", message.ID,
					"error", err,
				)
			}
		}
	}

	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, message redis.XMessage) error {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("dispatch: message %s has no event field", message.ID)
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return fmt.Errorf("dispatch: unmarshal envelope: %w", err)
	}

	return s.handler(ctx, envelope)
}

func isBusyGroup(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
