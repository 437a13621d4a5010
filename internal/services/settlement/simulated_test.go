package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated(t *testing.T) {
	at := time.Date(2024, 2, 29, 8, 5, 9, 0, time.UTC)
	gw := NewSimulatedWithClock(func() time.Time { return at })

	res, err := gw.Collect(context.Background(), CollectRequest{Amount: decimal.NewFromInt(500), Method: "mpesa"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "PY20240229080509", res.TransactionID)
	assert.Equal(t, at, res.SettledAt)

	res, err = gw.Disburse(context.Background(), DisburseRequest{Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)
	assert.Equal(t, "MP20240229080509", res.TransactionID)
}

func TestSimulated_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulated().Disburse(ctx, DisburseRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
