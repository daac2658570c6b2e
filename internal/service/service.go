// Package service связывает автоматы состояний симулятора в одну сессию покупателя.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/simushop/internal/addressbook"
	"github.com/mmeshcher/simushop/internal/cart"
	"github.com/mmeshcher/simushop/internal/checkout"
	"github.com/mmeshcher/simushop/internal/fulfillment"
	"github.com/mmeshcher/simushop/internal/installment"
	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
	"github.com/mmeshcher/simushop/internal/payment"
	"github.com/mmeshcher/simushop/internal/repository"
	"github.com/mmeshcher/simushop/internal/simclock"
	"github.com/mmeshcher/simushop/internal/subscription"
)

var (
	// ErrResetNeedsConfirmation возвращается, если сброс даты отменит действующую подписку Prime.
	ErrResetNeedsConfirmation = errors.New("resetting the date cancels the active Prime membership")
	// ErrNameRequired возвращается при регистрации без имени.
	ErrNameRequired = errors.New("name is required")
)

// Settings содержит параметры симуляции.
type Settings struct {
	InitialBalance int64
	PrimeFee       int64
	Pricing        checkout.Pricing
	Durations      fulfillment.Durations
	TickInterval   time.Duration
	// TickSaveTimeout ограничивает запись состояния на каждом шаге календаря.
	TickSaveTimeout time.Duration
	// Wall возвращает реальное текущее время. По умолчанию time.Now в UTC.
	Wall func() time.Time
}

const defaultTickSaveTimeout = 500 * time.Millisecond

// DefaultSettings возвращает параметры симуляции по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		InitialBalance:  10000,
		PrimeFee:        subscription.DefaultFee,
		Pricing:         checkout.Pricing{SalesTaxRate: checkout.DefaultSalesTaxRate},
		Durations:       fulfillment.DefaultDurations(),
		TickInterval:    simclock.DefaultTickInterval,
		TickSaveTimeout: defaultTickSaveTimeout,
	}
}

// Service содержит одну сессию покупателя. Все операции сериализуются мьютексом.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	payments payment.Authorizer
	logger   *zap.Logger
	settings Settings
	validate *validator.Validate
	feed     *notify.Feed

	ledger      *ledger.Ledger
	clock       *simclock.Clock
	prime       *subscription.Manager
	tracker     *fulfillment.Tracker
	scheduler   *installment.Scheduler
	coordinator *checkout.Coordinator
	cart        *cart.Cart
	addresses   *addressbook.Book

	signedUp bool
	shopper  string
}

// NewService создаёт сессию в начальном состоянии. Сохранённое состояние подгружается методом Load.
func NewService(store repository.Store, payments payment.Authorizer, logger *zap.Logger, settings Settings) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if payments == nil {
		payments = payment.Simulator{}
	}
	if settings.Wall == nil {
		settings.Wall = func() time.Time { return time.Now().UTC() }
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = simclock.DefaultTickInterval
	}
	if settings.TickSaveTimeout <= 0 {
		settings.TickSaveTimeout = defaultTickSaveTimeout
	}

	feed := notify.NewFeed(logger, 50)
	l := ledger.New(settings.InitialBalance)
	clock := simclock.New(settings.Wall)
	prime := subscription.New(l, settings.PrimeFee, feed)
	tracker := fulfillment.New(settings.Durations, feed)
	scheduler := installment.New(l, feed)

	return &Service{
		store:     store,
		payments:  payments,
		logger:    logger,
		settings:  settings,
		validate:  validator.New(),
		feed:      feed,
		ledger:    l,
		clock:     clock,
		prime:     prime,
		tracker:   tracker,
		scheduler: scheduler,
		coordinator: checkout.New(checkout.Deps{
			Ledger:     l,
			Clock:      clock,
			Membership: prime,
			Tracker:    tracker,
			Scheduler:  scheduler,
			Pricing:    settings.Pricing,
			Notifier:   feed,
		}),
		cart:      cart.New(),
		addresses: addressbook.New(),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Profile возвращает имя покупателя и признак регистрации.
func (s *Service) Profile() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopper, s.signedUp
}

// Signup регистрирует покупателя по имени.
func (s *Service) Signup(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.signedUp = true
	s.shopper = name
	s.saveProfile(ctx)
	s.saveClock(ctx)
	return nil
}

// Now возвращает текущую симулированную дату.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Now()
}

// Tick продвигает календарь на день и по очереди применяет правила подписки, доставки и рассрочки.
// Порядок фиксирован: продление Prime получает приоритет на баланс раньше платежей по рассрочке.
func (s *Service) Tick(ctx context.Context) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Недоступное хранилище не должно удерживать сессию дольше одного шага.
	ctx, cancel := context.WithTimeout(ctx, s.settings.TickSaveTimeout)
	defer cancel()

	now := s.clock.Tick()
	s.saveClock(ctx)

	balance := s.ledger.Balance()

	if s.prime.Evaluate(now) {
		s.savePrime(ctx)
	}
	if s.tracker.Evaluate(now) {
		s.saveOrders(ctx)
	}
	if s.scheduler.Evaluate(now) {
		s.savePlans(ctx)
	}

	if s.ledger.Balance() != balance {
		s.saveLedger(ctx)
	}
	return now
}

// StartClock запускает фоновый процесс продвижения календаря.
func (s *Service) StartClock(ctx context.Context) {
	ticker := time.NewTicker(s.settings.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// ResetClock возвращает календарь к реальному времени. Если подписка Prime действует,
// без подтверждения возвращается ErrResetNeedsConfirmation, а с подтверждением подписка отменяется.
func (s *Service) ResetClock(ctx context.Context, confirm bool) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prime.Status() != model.SubscriptionInactive {
		if !confirm {
			return s.clock.Now(), ErrResetNeedsConfirmation
		}
		s.prime.ForceCancelNow(s.clock.Now())
		s.savePrime(ctx)
	}

	now := s.clock.ResetToNow()
	s.saveClock(ctx)
	return now, nil
}

// Balance возвращает баланс кошелька в центах.
func (s *Service) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}

// AddFunds пополняет кошелёк и возвращает новый баланс.
func (s *Service) AddFunds(ctx context.Context, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.AddFunds(amount); err != nil {
		return s.ledger.Balance(), err
	}
	s.saveLedger(ctx)
	return s.ledger.Balance(), nil
}

// Subscription возвращает состояние подписки Prime.
func (s *Service) Subscription() model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prime.Snapshot()
}

// Subscribe оформляет подписку Prime.
func (s *Service) Subscribe(ctx context.Context) (model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prime.Subscribe(s.clock.Now()); err != nil {
		return s.prime.Snapshot(), err
	}
	s.saveLedger(ctx)
	s.savePrime(ctx)
	return s.prime.Snapshot(), nil
}

// CancelSubscription запрашивает отмену подписки в дату продления.
func (s *Service) CancelSubscription(ctx context.Context) model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prime.RequestCancellation(s.clock.Now()) {
		s.savePrime(ctx)
	}
	return s.prime.Snapshot()
}

// Orders возвращает историю заказов.
func (s *Service) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Orders()
}

// Plans возвращает планы рассрочки.
func (s *Service) Plans() []model.FinancePlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Plans()
}

// Notifications возвращает последние уведомления.
func (s *Service) Notifications() []notify.Notification {
	return s.feed.Recent()
}

// DeleteAccount удаляет все сохранённые данные и возвращает сессию в начальное состояние.
// Календарь продолжает идти с текущей даты.
func (s *Service) DeleteAccount(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, repository.AllKeys()...); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	_ = s.ledger.SetBalance(s.settings.InitialBalance)
	s.prime.Restore(model.Subscription{Status: model.SubscriptionInactive})
	s.tracker.Reset()
	s.scheduler.Reset()
	s.addresses.Reset()
	s.cart.Clear()
	s.feed.Reset()
	s.signedUp = false
	s.shopper = ""

	s.logger.Info("account deleted", zap.Time("simDate", s.clock.Now()))
	return nil
}

// PrimeFee возвращает стоимость месяца подписки Prime в центах.
func (s *Service) PrimeFee() int64 {
	return s.prime.Fee()
}
