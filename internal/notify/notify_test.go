package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 0, want: "$0.00"},
		{cents: 5, want: "$0.05"},
		{cents: 1499, want: "$14.99"},
		{cents: 221000, want: "$2210.00"},
		{cents: -250, want: "-$2.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCents(tt.cents))
	}
}

func TestNotification_Message(t *testing.T) {
	n := Notification{Kind: KindRenewed, Amount: 1499}
	assert.Equal(t, "Your Prime membership renewed for $14.99.", n.Message())
	assert.False(t, n.Failure())

	n = Notification{Kind: KindPaymentFailed, Amount: 3334}
	assert.True(t, n.Failure())

	n = Notification{Kind: KindOrderShipped, Ref: "o-1"}
	assert.Contains(t, n.Message(), "o-1")
}

func TestFeed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	feed := NewFeed(zap.New(core), 3)
	day := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		feed.Notify(Notification{Kind: KindPaymentMade, Amount: int64(i), SimDate: day})
	}
	feed.Notify(Notification{Kind: KindRenewalFailed, SimDate: day})

	recent := feed.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, int64(3), recent[0].Amount)
	assert.Equal(t, KindRenewalFailed, recent[2].Kind)

	assert.Equal(t, 6, logs.Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	feed.Reset()
	assert.Empty(t, feed.Recent())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	Discard.Notify(Notification{Kind: KindOrderPlaced})
	r.Notify(Notification{Kind: KindOrderPlaced})
	r.Notify(Notification{Kind: KindOrderShipped})
	r.Notify(Notification{Kind: KindOrderPlaced})

	assert.Equal(t, 2, r.Count(KindOrderPlaced))
	assert.Equal(t, 0, r.Count(KindPlanPaidOff))
}
