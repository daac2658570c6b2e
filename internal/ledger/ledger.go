// Package ledger реализует виртуальный кошелёк покупателя.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds возвращается, когда на балансе недостаточно средств для списания.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNegativeAmount возвращается при попытке провести операцию с отрицательной суммой.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Ledger хранит единственный неотрицательный баланс в центах.
//
// Ledger не потокобезопасен: вызывающая сторона сериализует доступ к нему.
type Ledger struct {
	balance int64
}

// New создаёт кошелёк с указанным начальным балансом.
func New(initial int64) *Ledger {
	if initial < 0 {
		initial = 0
	}
	return &Ledger{balance: initial}
}

// Balance возвращает текущий баланс.
func (l *Ledger) Balance() int64 {
	return l.balance
}

// Deduct списывает amount целиком или не списывает ничего.
func (l *Ledger) Deduct(amount int64) bool {
	if amount < 0 || l.balance < amount {
		return false
	}
	l.balance -= amount
	return true
}

// Charge работает как Deduct, но возвращает ErrInsufficientFunds вместо false.
func (l *Ledger) Charge(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if !l.Deduct(amount) {
		return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientFunds, l.balance, amount)
	}
	return nil
}

// AddFunds безусловно пополняет баланс.
func (l *Ledger) AddFunds(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	l.balance += amount
	return nil
}

// SetBalance административно устанавливает баланс. Используется только при сбросе аккаунта.
func (l *Ledger) SetBalance(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	l.balance = amount
	return nil
}
