// Package repository содержит хранилища срезов состояния симулятора.
package repository

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Ключи срезов состояния.
const (
	KeyWalletBalance = "simushop_wallet_balance"
	KeySimulatedDate = "simushop_simulated_date"
	KeyPrimeStatus   = "simushop_prime_status"
	KeyOrders        = "simushop_orders"
	KeyFinancePlans  = "simushop_finance_plans"
	KeyAddresses     = "simushop_addresses"
	KeySignedUp      = "simushop_has_signed_up"
	KeyShopperName   = "simushop_user_name"
)

// AllKeys возвращает ключи всех срезов состояния.
func AllKeys() []string {
	return []string{
		KeyWalletBalance,
		KeySimulatedDate,
		KeyPrimeStatus,
		KeyOrders,
		KeyFinancePlans,
		KeyAddresses,
		KeySignedUp,
		KeyShopperName,
	}
}

// Store описывает долговременное хранилище ключ-значение. Значения хранятся как JSON-документы.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
