package events

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var venueAddr = common.HexToAddress("0x0000000000000000000000000000000000000011")

func TestRecorderRollbackTruncates(t *testing.T) {
	r, err := NewRecorder(0)
	require.NoError(t, err)

	r.Emit(SwapExecuted{Venue: venueAddr, AmountIn: big.NewInt(1), AmountOut: big.NewInt(2)})
	mark := r.Snapshot()

	r.Emit(SwapExecuted{Venue: venueAddr, AmountIn: big.NewInt(3), AmountOut: big.NewInt(4)})
	r.Emit(ArbitrageExecuted{Profit: big.NewInt(1), Timestamp: time.Now()})
	require.Len(t, r.Events(), 3)

	r.Restore(mark)
	require.Len(t, r.Events(), 1)

	ev, ok := r.Events()[0].(SwapExecuted)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), ev.AmountIn)
}

func TestExecutionHistoryCommit(t *testing.T) {
	r, err := NewRecorder(4)
	require.NoError(t, err)

	rec := r.RecordExecution(ExecutionRecord{
		Asset:     venueAddr,
		Borrowed:  big.NewInt(1000),
		Premium:   big.NewInt(9),
		Profit:    big.NewInt(100),
		Timestamp: time.Now(),
	})
	assert.NotZero(t, rec.ID)

	// Staged records are invisible until commit.
	assert.Empty(t, r.RecentExecutions())

	r.Commit()
	recs := r.RecentExecutions()
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
}

func TestExecutionHistoryRollback(t *testing.T) {
	r, err := NewRecorder(4)
	require.NoError(t, err)

	mark := r.Snapshot()
	r.RecordExecution(ExecutionRecord{Borrowed: big.NewInt(1), Timestamp: time.Now()})
	r.Restore(mark)

	r.Commit()
	assert.Empty(t, r.RecentExecutions())
}

func TestExecutionHistoryBounded(t *testing.T) {
	r, err := NewRecorder(2)
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		r.RecordExecution(ExecutionRecord{
			Borrowed:  big.NewInt(i),
			Timestamp: time.Unix(i, 0),
		})
	}
	r.Commit()

	recs := r.RecentExecutions()
	require.Len(t, recs, 2)
	// Oldest entry was evicted.
	assert.Equal(t, big.NewInt(2), recs[0].Borrowed)
	assert.Equal(t, big.NewInt(3), recs[1].Borrowed)
}

func TestExecutionIDsDiffer(t *testing.T) {
	a := executionID(ExecutionRecord{Borrowed: big.NewInt(1), Timestamp: time.Unix(1, 0)})
	b := executionID(ExecutionRecord{Borrowed: big.NewInt(1), Timestamp: time.Unix(2, 0)})
	assert.NotEqual(t, a, b)
}
