// Package addressbook хранит адреса доставки покупателя.
package addressbook

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mmeshcher/simushop/internal/model"
)

// ErrAddressNotFound возвращается, если адрес с указанным идентификатором отсутствует.
var ErrAddressNotFound = errors.New("address not found")

// Book хранит адреса в порядке добавления.
type Book struct {
	addresses []model.Address
}

// New создаёт пустую адресную книгу.
func New() *Book {
	return &Book{}
}

// Add добавляет адрес и присваивает ему идентификатор.
func (b *Book) Add(a model.Address) model.Address {
	a.ID = uuid.NewString()
	if a.IsDefault {
		b.clearDefault()
	}
	b.addresses = append(b.addresses, a)
	return a
}

// Update заменяет адрес с тем же идентификатором.
func (b *Book) Update(a model.Address) error {
	for i := range b.addresses {
		if b.addresses[i].ID == a.ID {
			if a.IsDefault {
				b.clearDefault()
			}
			b.addresses[i] = a
			return nil
		}
	}
	return ErrAddressNotFound
}

// Delete удаляет адрес.
func (b *Book) Delete(id string) error {
	for i := range b.addresses {
		if b.addresses[i].ID == id {
			b.addresses = append(b.addresses[:i], b.addresses[i+1:]...)
			return nil
		}
	}
	return ErrAddressNotFound
}

// Get возвращает адрес по идентификатору.
func (b *Book) Get(id string) (model.Address, bool) {
	for _, a := range b.addresses {
		if a.ID == id {
			return a, true
		}
	}
	return model.Address{}, false
}

// Default возвращает адрес по умолчанию, а при его отсутствии первый адрес.
func (b *Book) Default() (model.Address, bool) {
	for _, a := range b.addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(b.addresses) > 0 {
		return b.addresses[0], true
	}
	return model.Address{}, false
}

// List возвращает копию адресов.
func (b *Book) List() []model.Address {
	res := make([]model.Address, len(b.addresses))
	copy(res, b.addresses)
	return res
}

// Restore заменяет адреса сохранёнными.
func (b *Book) Restore(addresses []model.Address) {
	b.addresses = make([]model.Address, len(addresses))
	copy(b.addresses, addresses)
}

// Reset очищает адресную книгу.
func (b *Book) Reset() {
	b.addresses = nil
}

func (b *Book) clearDefault() {
	for i := range b.addresses {
		b.addresses[i].IsDefault = false
	}
}
