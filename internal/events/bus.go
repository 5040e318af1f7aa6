package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// ErrNotRecorded is returned by Bus.SubmitAttempt when the in-process
// recorder gave up on an attempt.
var ErrNotRecorded = errors.New("attempt not recorded")

// Transport selects the pub/sub implementation.
type Transport string

const (
	// TransportGoChannel records attempts in-process.
	TransportGoChannel Transport = "gochannel"

	// TransportKafka publishes to Kafka; a separate worker records them.
	TransportKafka Transport = "kafka"
)

// Config selects and configures the transport.
type Config struct {
	Transport     Transport
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// Bus is an open publisher plus, for the in-process transport, the router
// that records what it publishes.
type Bus struct {
	*Publisher

	pub    message.Publisher
	router *message.Router
	log    logrus.FieldLogger

	// failed maps dead-lettered message IDs to the handler error.
	failed sync.Map
}

// Open starts a bus for cfg. With the gochannel transport, attempts are
// recorded in store before SubmitAttempt returns, or SubmitAttempt
// returns ErrNotRecorded once the recorder has given up.
func Open(ctx context.Context, cfg Config, store AttemptStore, log logrus.FieldLogger) (*Bus, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "events")

	switch cfg.Transport {
	case TransportKafka:
		pub, err := NewKafkaPublisher(cfg.Brokers, log)
		if err != nil {
			return nil, err
		}
		return &Bus{Publisher: NewPublisher(pub, cfg.Topic, log), pub: pub, log: log}, nil

	case TransportGoChannel, "":
		gc := NewGoChannel(log)
		poisoned, err := gc.Subscribe(ctx, PoisonTopic(cfg.Topic))
		if err != nil {
			gc.Close()
			return nil, fmt.Errorf("subscribe to poison topic: %w", err)
		}
		router, err := NewRouter(gc, cfg.Topic, NewRecorder(store, log), gc, log)
		if err != nil {
			gc.Close()
			return nil, err
		}
		b := &Bus{Publisher: NewPublisher(gc, cfg.Topic, log), pub: gc, router: router, log: log}
		go b.collectPoisoned(poisoned)
		if err := startRouter(ctx, router, log); err != nil {
			gc.Close()
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
}

func startRouter(ctx context.Context, router *message.Router, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := router.Run(ctx); err != nil {
			log.WithError(err).Error("event router stopped")
			errCh <- err
		}
	}()
	select {
	case <-router.Running():
		return nil
	case err := <-errCh:
		return fmt.Errorf("start event router: %w", err)
	}
}

// SubmitAttempt publishes a. With the gochannel transport an attempt the
// store could not record is reported as ErrNotRecorded.
func (b *Bus) SubmitAttempt(ctx context.Context, a quiz.Attempt) error {
	id, err := b.publish(ctx, a)
	if err != nil {
		return err
	}
	if reason, ok := b.failed.LoadAndDelete(id); ok {
		return fmt.Errorf("%w: %s", ErrNotRecorded, reason)
	}
	return nil
}

func (b *Bus) collectPoisoned(msgs <-chan *message.Message) {
	for msg := range msgs {
		reason := msg.Metadata.Get(middleware.ReasonForPoisonedKey)
		b.log.WithFields(logrus.Fields{
			"message_uuid": msg.UUID,
			"reason":       reason,
		}).Warn("attempt moved to poison topic")
		b.failed.Store(msg.UUID, reason)
		msg.Ack()
	}
}

// Close stops the router and the publisher.
func (b *Bus) Close() error {
	var errs []error
	if b.router != nil {
		if err := b.router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if err := b.pub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	return errors.Join(errs...)
}

// RunWorker consumes attempts from Kafka into store until ctx is done.
func RunWorker(ctx context.Context, cfg Config, store AttemptStore, log logrus.FieldLogger) error {
	if cfg.Transport != TransportKafka {
		return fmt.Errorf("the attempt worker needs the kafka transport, got %q", cfg.Transport)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "worker")

	sub, err := NewKafkaSubscriber(cfg.Brokers, cfg.ConsumerGroup, log)
	if err != nil {
		return err
	}
	defer sub.Close()

	poison, err := NewKafkaPublisher(cfg.Brokers, log)
	if err != nil {
		return err
	}
	defer poison.Close()

	router, err := NewRouter(sub, cfg.Topic, NewRecorder(store, log), poison, log)
	if err != nil {
		return err
	}
	log.WithField("topic", cfg.Topic).Info("attempt worker started")
	return router.Run(ctx)
}
