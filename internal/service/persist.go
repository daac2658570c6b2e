package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/repository"
)

// ErrInvalidPersistedState возвращается для среза, который не удалось разобрать или проверить.
var ErrInvalidPersistedState = errors.New("invalid persisted state")

// Load восстанавливает сессию из хранилища. Каждый срез читается независимо:
// отсутствующий или повреждённый срез заменяется значением по умолчанию и не мешает остальным.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var signedUp bool
	if s.loadSlice(ctx, repository.KeySignedUp, &signedUp, nil) {
		s.signedUp = signedUp
	}

	var name string
	if s.loadSlice(ctx, repository.KeyShopperName, &name, nil) {
		s.shopper = name
	}

	var balance int64
	if s.loadSlice(ctx, repository.KeyWalletBalance, &balance, func() error {
		return s.validate.Var(balance, "gte=0")
	}) {
		_ = s.ledger.SetBalance(balance)
	}

	var date time.Time
	if s.loadSlice(ctx, repository.KeySimulatedDate, &date, func() error {
		if date.IsZero() {
			return errors.New("zero date")
		}
		return nil
	}) {
		s.clock.Restore(date)
	}

	var sub model.Subscription
	if s.loadSlice(ctx, repository.KeyPrimeStatus, &sub, func() error {
		return s.validate.Struct(sub)
	}) {
		s.prime.Restore(sub)
	}

	var orders []model.Order
	if s.loadSlice(ctx, repository.KeyOrders, &orders, func() error {
		return s.validate.Var(orders, "dive")
	}) {
		s.tracker.Restore(orders)
	}

	var plans []model.FinancePlan
	if s.loadSlice(ctx, repository.KeyFinancePlans, &plans, func() error {
		if err := s.validate.Var(plans, "dive"); err != nil {
			return err
		}
		return checkPlans(plans)
	}) {
		s.scheduler.Restore(plans)
	}

	var addresses []model.Address
	if s.loadSlice(ctx, repository.KeyAddresses, &addresses, func() error {
		return s.validate.Var(addresses, "dive")
	}) {
		s.addresses.Restore(addresses)
	}

	s.logger.Info("session loaded",
		zap.Bool("signedUp", s.signedUp),
		zap.Int64("balance", s.ledger.Balance()),
		zap.Time("simDate", s.clock.Now()),
		zap.String("prime", string(s.prime.Status())),
		zap.Int("orders", len(s.tracker.Orders())),
		zap.Int("plans", len(s.scheduler.Plans())),
	)
}

// checkPlans отклоняет погашенный план с непогашенным остатком.
func checkPlans(plans []model.FinancePlan) error {
	for _, p := range plans {
		if p.Status == model.PlanStatusPaidOff && p.AmountPaid != p.TotalAmount {
			return fmt.Errorf("plan %s is paid off with %d of %d paid", p.ID, p.AmountPaid, p.TotalAmount)
		}
	}
	return nil
}

// loadSlice читает и проверяет один срез. Возвращает false, если срез нужно заменить значением по умолчанию.
func (s *Service) loadSlice(ctx context.Context, key string, dst any, check func() error) bool {
	data, err := s.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("failed to load state slice", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	err = json.Unmarshal(data, dst)
	if err == nil && check != nil {
		err = check()
	}
	if err != nil {
		s.logger.Warn("state slice reset to default",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrInvalidPersistedState, err)),
		)
		return false
	}
	return true
}

// saveSlice сохраняет срез. Ошибка записи журналируется и не прерывает операцию.
func (s *Service) saveSlice(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode state slice", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		s.logger.Error("failed to save state slice", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) saveLedger(ctx context.Context) {
	s.saveSlice(ctx, repository.KeyWalletBalance, s.ledger.Balance())
}

// saveClock сохраняет дату только для зарегистрированного покупателя.
func (s *Service) saveClock(ctx context.Context) {
	if !s.signedUp {
		return
	}
	s.saveSlice(ctx, repository.KeySimulatedDate, s.clock.Now())
}

func (s *Service) savePrime(ctx context.Context) {
	s.saveSlice(ctx, repository.KeyPrimeStatus, s.prime.Snapshot())
}

func (s *Service) saveOrders(ctx context.Context) {
	s.saveSlice(ctx, repository.KeyOrders, s.tracker.Orders())
}

func (s *Service) savePlans(ctx context.Context) {
	s.saveSlice(ctx, repository.KeyFinancePlans, s.scheduler.Plans())
}

func (s *Service) saveAddresses(ctx context.Context) {
	s.saveSlice(ctx, repository.KeyAddresses, s.addresses.List())
}

func (s *Service) saveProfile(ctx context.Context) {
	s.saveSlice(ctx, repository.KeySignedUp, s.signedUp)
	s.saveSlice(ctx, repository.KeyShopperName, s.shopper)
}
