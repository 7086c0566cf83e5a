package streamstore

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// RecordState distinguishes locally synthesized entries from ledger-confirmed
// ones. A pending record is never mutated into a confirmed one in place; it
// is replaced wholesale once the authoritative read or event arrives.
type RecordState string

const (
	StatePending   RecordState = "pending"
	StateConfirmed RecordState = "confirmed"
)

// Record is one stream held in the local store.
type Record struct {
	State RecordState
	// ClientRef identifies a pending record before the ledger has assigned
	// a stream id. Empty once confirmed.
	ClientRef string
	// Cancelled is client-side bookkeeping: the ledger cannot distinguish a
	// cancelled stream from one completed early by full withdrawal, so the
	// store records cancellations it performed itself.
	Cancelled bool
	Stream    types.Stream
}

// Status resolves the record's client-visible status given the engine's
// time-derived one: a stream this client cancelled reports Cancelled instead
// of Completed.
func (r *Record) Status(derived types.StreamStatus) types.StreamStatus {
	if r.Cancelled && derived == types.StreamStatusCompleted {
		return types.StreamStatusCancelled
	}
	return derived
}

// Store is the caller-owned local view of streams: confirmed records keyed by
// ledger-assigned id, pending records keyed by client-generated reference.
// It is a cache over the ledger, never a source of truth, and records persist
// as history after termination.
type Store struct {
	mu        sync.RWMutex
	confirmed map[string]*Record
	pending   map[string]*Record
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		confirmed: make(map[string]*Record),
		pending:   make(map[string]*Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

// AddPending records a locally synthesized stream ahead of ledger
// confirmation and returns its client reference.
func (s *Store) AddPending(stream types.Stream) string {
	ref := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[ref] = &Record{
		State:     StatePending,
		ClientRef: ref,
		Stream:    *stream.Clone(),
	}
	return ref
}

// ConfirmPending replaces the pending record with the authoritative stream.
// A confirmation for an unknown reference still upserts the stream, since the
// pending entry may have been dropped by a competing update.
func (s *Store) ConfirmPending(clientRef string, stream *types.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, clientRef)
	s.upsertLocked(stream)
}

// DropPending discards a pending record, e.g. after a failed creation.
func (s *Store) DropPending(clientRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, clientRef)
}

// ApplyUpdate merges an authoritative stream snapshot (from a re-read or a
// relay event) into the confirmed set. Pending records are untouched:
// reconciliation happens only through ConfirmPending.
func (s *Store) ApplyUpdate(stream *types.Stream) {
	if stream == nil || stream.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(stream)
}

func (s *Store) upsertLocked(stream *types.Stream) {
	if stream == nil || stream.ID == "" {
		return
	}
	cancelled := false
	if existing, ok := s.confirmed[stream.ID]; ok {
		cancelled = existing.Cancelled
	}
	s.confirmed[stream.ID] = &Record{
		State:     StateConfirmed,
		Cancelled: cancelled,
		Stream:    *stream.Clone(),
	}
	s.logger.Debug("stream record updated", zap.String("stream_id", stream.ID))
}

// MarkCancelled flags a confirmed stream as cancelled by this client.
func (s *Store) MarkCancelled(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.confirmed[streamID]; ok {
		rec.Cancelled = true
	}
}

// Get returns a copy of the confirmed record for a stream id.
func (s *Store) Get(streamID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.confirmed[streamID]
	if !ok {
		return Record{}, false
	}
	return copyRecord(rec), true
}

// GetPending returns a copy of the pending record for a client reference.
func (s *Store) GetPending(clientRef string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.pending[clientRef]
	if !ok {
		return Record{}, false
	}
	return copyRecord(rec), true
}

// All returns copies of every record, pending first, each group ordered by
// key for stable iteration.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.pending)+len(s.confirmed))
	for _, ref := range sortedKeys(s.pending) {
		out = append(out, copyRecord(s.pending[ref]))
	}
	for _, id := range sortedKeys(s.confirmed) {
		out = append(out, copyRecord(s.confirmed[id]))
	}
	return out
}

func copyRecord(r *Record) Record {
	out := *r
	out.Stream = *r.Stream.Clone()
	return out
}

func sortedKeys(m map[string]*Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
