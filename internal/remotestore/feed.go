package remotestore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	kafkax "github.com/ariefcatur/go-timestore/internal/kafka"
)

// Publisher is implemented by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// Feed announces document changes and dispatches received ones to the
// listeners registered per collection.
type Feed struct {
	pub      Publisher
	producer string
	log      *log.Entry

	mu     sync.Mutex
	subs   map[string]map[int]func()
	nextID int
}

func NewFeed(pub Publisher, producer string, logger *log.Entry) *Feed {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Feed{
		pub:      pub,
		producer: producer,
		log:      logger.WithField("component", "feed"),
		subs:     map[string]map[int]func(){},
	}
}

func (f *Feed) Announce(collection, id string, op Op) {
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventDocumentChanged,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     f.producer,
		Payload:      kafkax.MustMarshal(DocumentChangedPayload{Collection: collection, DocumentID: id, Op: op}),
	}
	f.pub.Publish(PartitionKey(collection), kafkax.MustMarshal(env),
		kafka.Header{Key: "x-event-type", Value: []byte(EventDocumentChanged)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Listen registers fn for changes of collection.
func (f *Feed) Listen(collection string, fn func()) (stop func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	if f.subs[collection] == nil {
		f.subs[collection] = map[int]func(){}
	}
	f.subs[collection][id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subs[collection], id)
		f.mu.Unlock()
	}
}

// Handle is the consumer handler. Malformed messages are logged and
// committed so they do not block the partition.
func (f *Feed) Handle(ctx context.Context, m kafka.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		f.log.WithError(err).Warn("skip undecodable envelope")
		return nil
	}
	if env.EventType != EventDocumentChanged {
		return nil
	}
	p, err := kafkax.UnwrapPayload[DocumentChangedPayload](env.Payload)
	if err != nil {
		f.log.WithError(err).WithField("event_id", env.EventID).Warn("skip bad payload")
		return nil
	}
	f.dispatch(p.Collection)
	return nil
}

func (f *Feed) dispatch(collection string) {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.subs[collection]))
	for _, fn := range f.subs[collection] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	f.log.WithFields(log.Fields{"collection": collection, "listeners": len(fns)}).Debug("change received")
	for _, fn := range fns {
		fn()
	}
}
