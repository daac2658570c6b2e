// Package cart содержит корзину покупателя. Корзина не сохраняется между перезапусками.
package cart

import "github.com/mmeshcher/simushop/internal/model"

// Cart хранит позиции в порядке добавления.
type Cart struct {
	items []model.LineItem
}

// New создаёт пустую корзину.
func New() *Cart {
	return &Cart{}
}

// Add добавляет товар. Количество одинаковых товаров суммируется.
func (c *Cart) Add(item model.LineItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// UpdateQuantity задаёт количество товара. Неположительное количество удаляет позицию.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Remove удаляет позицию.
func (c *Cart) Remove(productID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Clear очищает корзину.
func (c *Cart) Clear() {
	c.items = nil
}

// Items возвращает копию позиций.
func (c *Cart) Items() []model.LineItem {
	res := make([]model.LineItem, len(c.items))
	copy(res, c.items)
	return res
}

// Subtotal возвращает сумму позиций в центах без налога.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Count возвращает общее количество единиц товара.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}
