package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
)

var day0 = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func newManager(balance int64) (*Manager, *ledger.Ledger, *notify.Recorder) {
	l := ledger.New(balance)
	rec := &notify.Recorder{}
	return New(l, DefaultFee, rec), l, rec
}

func TestSubscribe_InsufficientFunds(t *testing.T) {
	m, l, _ := newManager(1000)

	err := m.Subscribe(day0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))
	assert.Equal(t, int64(1000), l.Balance())
	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Nil(t, m.Snapshot().RenewalDate)
}

func TestSubscribe_Success(t *testing.T) {
	m, l, rec := newManager(10000)

	require.NoError(t, m.Subscribe(day0))
	assert.Equal(t, int64(10000-DefaultFee), l.Balance())
	assert.Equal(t, model.SubscriptionActive, m.Status())

	snap := m.Snapshot()
	require.NotNil(t, snap.RenewalDate)
	assert.Equal(t, day0.AddDate(0, 1, 0), *snap.RenewalDate)
	assert.Equal(t, 1, rec.Count(notify.KindSubscribed))

	assert.ErrorIs(t, m.Subscribe(day0), ErrAlreadySubscribed)
	assert.Equal(t, int64(10000-DefaultFee), l.Balance())
}

func TestEvaluate_BeforeRenewalIsNoop(t *testing.T) {
	m, l, _ := newManager(10000)
	require.NoError(t, m.Subscribe(day0))

	assert.False(t, m.Evaluate(day0.AddDate(0, 0, 20)))
	assert.Equal(t, model.SubscriptionActive, m.Status())
	assert.Equal(t, int64(10000-DefaultFee), l.Balance())
}

func TestEvaluate_Renews(t *testing.T) {
	m, l, rec := newManager(10000)
	require.NoError(t, m.Subscribe(day0))

	renewalAt := day0.AddDate(0, 1, 0)
	assert.True(t, m.Evaluate(renewalAt))
	assert.Equal(t, model.SubscriptionActive, m.Status())
	assert.Equal(t, int64(10000-2*DefaultFee), l.Balance())
	assert.Equal(t, renewalAt.AddDate(0, 1, 0), *m.Snapshot().RenewalDate)
	assert.Equal(t, 1, rec.Count(notify.KindRenewed))
}

func TestEvaluate_RenewalFailsOnceUnderInsufficientFunds(t *testing.T) {
	m, l, rec := newManager(DefaultFee + 100)
	require.NoError(t, m.Subscribe(day0))

	now := day0.AddDate(0, 1, 0)
	assert.True(t, m.Evaluate(now))
	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Nil(t, m.Snapshot().RenewalDate)

	for i := 1; i <= 10; i++ {
		assert.False(t, m.Evaluate(now.AddDate(0, 0, i)))
	}
	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Equal(t, 1, rec.Count(notify.KindRenewalFailed))
	assert.Equal(t, int64(100), l.Balance())
}

func TestEvaluate_CancellationWinsOverRenewal(t *testing.T) {
	m, l, rec := newManager(10000)
	require.NoError(t, m.Subscribe(day0))

	assert.True(t, m.RequestCancellation(day0))
	assert.False(t, m.RequestCancellation(day0), "second request must be idempotent")
	assert.Equal(t, model.SubscriptionPendingCancel, m.Status())
	assert.True(t, m.IsMember())
	assert.Equal(t, day0.AddDate(0, 1, 0), *m.Snapshot().RenewalDate)

	balance := l.Balance()
	assert.False(t, m.Evaluate(day0.AddDate(0, 0, 29)))
	assert.True(t, m.Evaluate(day0.AddDate(0, 1, 0)))

	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Equal(t, balance, l.Balance())
	assert.Equal(t, 1, rec.Count(notify.KindSubscriptionExpired))
	assert.Equal(t, 0, rec.Count(notify.KindRenewed))
}

func TestRequestCancellation_FromInactive(t *testing.T) {
	m, _, rec := newManager(0)
	assert.False(t, m.RequestCancellation(day0))
	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Empty(t, rec.Items)
}

func TestForceCancelNow(t *testing.T) {
	m, _, rec := newManager(10000)
	require.NoError(t, m.Subscribe(day0))
	m.RequestCancellation(day0)

	assert.True(t, m.ForceCancelNow(day0))
	assert.Equal(t, model.SubscriptionInactive, m.Status())
	assert.Nil(t, m.Snapshot().RenewalDate)
	assert.False(t, m.ForceCancelNow(day0))
	assert.Equal(t, 1, rec.Count(notify.KindForceCancelled))
}

func TestRestore(t *testing.T) {
	m, _, _ := newManager(0)
	renewal := day0.AddDate(0, 0, 3)

	m.Restore(model.Subscription{Status: model.SubscriptionPendingCancel, RenewalDate: &renewal})
	assert.Equal(t, model.SubscriptionPendingCancel, m.Status())
	assert.Equal(t, renewal, *m.Snapshot().RenewalDate)

	m.Restore(model.Subscription{Status: model.SubscriptionActive})
	assert.Equal(t, model.SubscriptionInactive, m.Status())
}
