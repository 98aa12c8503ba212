package kafka

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Handler returns nil only when the message was processed and its offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type ConsumerConfig struct {
	Brokers []string
	Group   string
	Topic   string
	Workers int
	// FromLatest starts a group without committed offsets at the end of the
	// topic instead of the beginning.
	FromLatest bool
}

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *log.Entry
}

func NewConsumer(cfg ConsumerConfig, logger *log.Entry) *Consumer {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	start := kafka.FirstOffset
	if cfg.FromLatest {
		start = kafka.LastOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.Group,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    start,
		CommitInterval: 0, // manual commit
	})
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: logger.WithFields(log.Fields{"component": "consumer", "topic": cfg.Topic, "group": cfg.Group})}
}

// Start fetches until ctx is cancelled. Messages are spread over the workers
// by key, so messages sharing a key are handled in order. A message whose
// handler fails is logged and left uncommitted.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range lanes {
		lane := make(chan kafka.Message, 64)
		lanes[i] = lane
		g.Go(func() error {
			for m := range lane {
				c.handle(gctx, h, m)
			}
			return nil
		})
	}

	err := c.fetch(ctx, lanes)
	for _, lane := range lanes {
		close(lane)
	}
	_ = g.Wait()
	return err
}

func (c *Consumer) fetch(ctx context.Context, lanes []chan kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		lane := lanes[laneFor(m.Key, len(lanes))]
		select {
		case lane <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) {
	entry := c.log.WithFields(log.Fields{"partition": m.Partition, "offset": m.Offset})
	if err := h(ctx, m); err != nil {
		entry.WithError(err).Warn("handler failed")
		return
	}
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		entry.WithError(err).Warn("commit failed")
	}
}

func laneFor(key []byte, n int) int {
	return int(xxhash.Sum64(key) % uint64(n))
}
