package streamstore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore(WithLogger(zap.NewNop()))
}

func testStream(id string, remaining int64) *types.Stream {
	return &types.Stream{
		ID:               id,
		Deposit:          big.NewInt(7200),
		RemainingBalance: big.NewInt(remaining),
		RatePerSecond:    big.NewInt(2),
		StartTime:        1000,
		StopTime:         4600,
		IsActive:         remaining > 0,
	}
}

func TestPendingLifecycle(t *testing.T) {
	t.Run("pending records reconcile into confirmed ones", func(t *testing.T) {
		s := newTestStore()

		ref := s.AddPending(*testStream("", 7200))
		require.NotEmpty(t, ref)

		rec, ok := s.GetPending(ref)
		require.True(t, ok)
		assert.Equal(t, StatePending, rec.State)
		assert.Equal(t, ref, rec.ClientRef)

		s.ConfirmPending(ref, testStream("42", 7200))

		_, ok = s.GetPending(ref)
		assert.False(t, ok, "confirmation removes the pending entry")

		confirmed, ok := s.Get("42")
		require.True(t, ok)
		assert.Equal(t, StateConfirmed, confirmed.State)
		assert.Empty(t, confirmed.ClientRef)
	})

	t.Run("distinct references per pending stream", func(t *testing.T) {
		s := newTestStore()
		assert.NotEqual(t, s.AddPending(*testStream("", 1)), s.AddPending(*testStream("", 1)))
	})

	t.Run("drop discards a failed creation", func(t *testing.T) {
		s := newTestStore()
		ref := s.AddPending(*testStream("", 7200))

		s.DropPending(ref)
		_, ok := s.GetPending(ref)
		assert.False(t, ok)
		assert.Empty(t, s.All())
	})

	t.Run("confirmation for an unknown reference still upserts", func(t *testing.T) {
		s := newTestStore()
		s.ConfirmPending("never-seen", testStream("42", 7200))

		_, ok := s.Get("42")
		assert.True(t, ok)
	})
}

func TestApplyUpdate(t *testing.T) {
	t.Run("upserts and overwrites", func(t *testing.T) {
		s := newTestStore()

		s.ApplyUpdate(testStream("42", 7200))
		s.ApplyUpdate(testStream("42", 3600))

		rec, ok := s.Get("42")
		require.True(t, ok)
		assert.Equal(t, int64(3600), rec.Stream.RemainingBalance.Int64())
	})

	t.Run("preserves the local cancellation flag", func(t *testing.T) {
		s := newTestStore()

		s.ApplyUpdate(testStream("42", 7200))
		s.MarkCancelled("42")

		// a later relay snapshot knows nothing about who cancelled
		s.ApplyUpdate(testStream("42", 0))

		rec, ok := s.Get("42")
		require.True(t, ok)
		assert.True(t, rec.Cancelled)
	})

	t.Run("ignores nil and unidentified streams", func(t *testing.T) {
		s := newTestStore()
		s.ApplyUpdate(nil)
		s.ApplyUpdate(testStream("", 7200))
		assert.Empty(t, s.All())
	})
}

func TestRecordStatus(t *testing.T) {
	t.Run("cancelled overrides completed only", func(t *testing.T) {
		rec := &Record{Cancelled: true}
		assert.Equal(t, types.StreamStatusCancelled, rec.Status(types.StreamStatusCompleted))
		assert.Equal(t, types.StreamStatusActive, rec.Status(types.StreamStatusActive))
	})

	t.Run("uncancelled records pass the derived status through", func(t *testing.T) {
		rec := &Record{}
		assert.Equal(t, types.StreamStatusCompleted, rec.Status(types.StreamStatusCompleted))
	})
}

func TestCopySemantics(t *testing.T) {
	t.Run("returned records do not alias store state", func(t *testing.T) {
		s := newTestStore()
		s.ApplyUpdate(testStream("42", 7200))

		rec, ok := s.Get("42")
		require.True(t, ok)
		rec.Stream.RemainingBalance.SetInt64(0)
		rec.Cancelled = true

		fresh, ok := s.Get("42")
		require.True(t, ok)
		assert.Equal(t, int64(7200), fresh.Stream.RemainingBalance.Int64())
		assert.False(t, fresh.Cancelled)
	})

	t.Run("the store does not alias caller streams", func(t *testing.T) {
		s := newTestStore()
		stream := testStream("42", 7200)
		s.ApplyUpdate(stream)

		stream.RemainingBalance.SetInt64(0)

		rec, ok := s.Get("42")
		require.True(t, ok)
		assert.Equal(t, int64(7200), rec.Stream.RemainingBalance.Int64())
	})
}

func TestAll(t *testing.T) {
	s := newTestStore()
	s.ApplyUpdate(testStream("b", 1))
	s.ApplyUpdate(testStream("a", 1))
	s.AddPending(*testStream("", 1))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, StatePending, all[0].State, "pending records come first")
	assert.Equal(t, "a", all[1].Stream.ID)
	assert.Equal(t, "b", all[2].Stream.ID)
}
