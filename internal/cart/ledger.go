// Пакет cart реализует леджер корзины: упорядоченную коллекцию позиций
// с дедупликацией конфигураций и best-effort персистентностью.
package cart

import (
	"encoding/json"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// DefaultStorageKey — ключ снимка корзины в хранилище по умолчанию.
const DefaultStorageKey = "cart"

// Ledger — единственный владелец коллекции позиций корзины.
// Все мутации проходят через его методы; in-memory состояние является
// источником истины для текущей сессии, хранилище — best-effort снимок.
type Ledger struct {
	mu     sync.Mutex
	items  []domain.CartLineItem
	store  domain.CartStore
	key    string
	logger *log.Entry
}

// NewLedger создаёт леджер и регидрирует его из хранилища.
// Отсутствующий или повреждённый снимок трактуется как пустая корзина.
func NewLedger(store domain.CartStore, key string, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "cart-ledger")
	}
	if key == "" {
		key = DefaultStorageKey
	}

	l := &Ledger{
		store:  store,
		key:    key,
		logger: logger,
	}
	l.rehydrate()
	return l
}

// rehydrate загружает снимок корзины из хранилища.
// Любая ошибка логируется и проглатывается: корзина стартует пустой.
func (l *Ledger) rehydrate() {
	if l.store == nil {
		return
	}

	raw, err := l.store.Get(l.key)
	if err != nil {
		if err != domain.ErrCartSnapshotNotFound {
			l.logger.WithError(err).Warn("failed to load cart snapshot")
		}
		return
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.logger.WithError(err).Warn("corrupt cart snapshot, starting with empty cart")
		return
	}

	l.items = items
}

// persistLocked сохраняет снимок корзины. Вызывается под мьютексом после
// каждой мутации; ошибка записи никогда не блокирует саму мутацию.
func (l *Ledger) persistLocked() {
	if l.store == nil {
		return
	}

	raw, err := json.Marshal(l.items)
	if err != nil {
		l.logger.WithError(err).Warn("failed to marshal cart snapshot")
		return
	}
	if err := l.store.Set(l.key, string(raw)); err != nil {
		l.logger.WithError(err).Warn("failed to persist cart snapshot")
	}
}

// Add нормализует кандидата в каноничную позицию и добавляет её в корзину.
// Дубликат конфигурации сливается с существующей записью: количество
// суммируется, итог пересчитывается от цены единицы первой записи.
func (l *Ledger) Add(candidate domain.CartCandidate) domain.CartLineItem {
	item := normalize(candidate)

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if !l.items[i].SameConfiguration(item) {
			continue
		}
		// Цена единицы наследуется от первой добавленной записи.
		l.items[i].Quantity += item.Quantity
		l.items[i].TotalPrice = pricing.TotalPrice(l.items[i].UnitPrice, l.items[i].Quantity)
		l.persistLocked()
		return l.items[i]
	}

	l.items = append(l.items, item)
	l.persistLocked()
	return item
}

// normalize строит каноничный CartLineItem из одного из двух путей добавления.
func normalize(candidate domain.CartCandidate) domain.CartLineItem {
	switch c := candidate.(type) {
	case domain.QuickAdd:
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		unit := pricing.UnitPrice(c.Item.BasePrice, c.Size, 0)
		return domain.CartLineItem{
			CatalogItemID:    c.Item.ID,
			Name:             c.Item.Name,
			ImageRef:         c.Item.ImageRef,
			BasePrice:        c.Item.BasePrice,
			SelectedSize:     c.Size,
			IncludedToppings: c.Item.IncludedToppings,
			Quantity:         qty,
			UnitPrice:        unit,
			TotalPrice:       pricing.TotalPrice(unit, qty),
		}
	case domain.Customized:
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		size := c.Size
		extras := c.ExtraToppings
		if extras == nil {
			extras = pricing.ExtraToppings(c.SelectedToppings, c.Item.IncludedToppings)
		}
		unit := c.UnitPrice
		total := c.TotalPrice
		if unit <= 0 {
			// Поток кастомизации обычно приносит готовые цены; fallback на калькулятор.
			unit = pricing.UnitPrice(c.Item.BasePrice, &size, len(extras))
			total = pricing.TotalPrice(unit, qty)
		}
		if total <= 0 {
			total = pricing.TotalPrice(unit, qty)
		}
		return domain.CartLineItem{
			CatalogItemID:    c.Item.ID,
			Name:             c.Item.Name,
			ImageRef:         c.Item.ImageRef,
			BasePrice:        c.Item.BasePrice,
			SelectedSize:     &size,
			SelectedToppings: c.SelectedToppings,
			IncludedToppings: c.Item.IncludedToppings,
			ExtraToppings:    extras,
			Quantity:         qty,
			UnitPrice:        unit,
			TotalPrice:       total,
		}
	default:
		return domain.CartLineItem{}
	}
}

// RemoveAt удаляет позицию по индексу. Индекс вне диапазона — тихий no-op:
// повторное удаление уже удалённой позиции не является ошибкой.
func (l *Ledger) RemoveAt(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(index)
}

func (l *Ledger) removeLocked(index int) {
	if index < 0 || index >= len(l.items) {
		return
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	l.persistLocked()
}

// UpdateQuantity устанавливает количество позиции.
// Количество меньше 1 эквивалентно удалению позиции.
func (l *Ledger) UpdateQuantity(index, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if quantity < 1 {
		l.removeLocked(index)
		return
	}
	if index < 0 || index >= len(l.items) {
		return
	}

	l.items[index].Quantity = quantity
	l.items[index].TotalPrice = pricing.TotalPrice(l.items[index].UnitPrice, quantity)
	l.persistLocked()
}

// IncrementQuantity увеличивает количество позиции на единицу.
func (l *Ledger) IncrementQuantity(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.items) {
		return
	}
	qty := l.items[index].Quantity + 1
	l.items[index].Quantity = qty
	l.items[index].TotalPrice = pricing.TotalPrice(l.items[index].UnitPrice, qty)
	l.persistLocked()
}

// DecrementQuantity уменьшает количество позиции на единицу;
// достижение нуля удаляет позицию.
func (l *Ledger) DecrementQuantity(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.items) {
		return
	}
	qty := l.items[index].Quantity - 1
	if qty < 1 {
		l.removeLocked(index)
		return
	}
	l.items[index].Quantity = qty
	l.items[index].TotalPrice = pricing.TotalPrice(l.items[index].UnitPrice, qty)
	l.persistLocked()
}

// Clear опустошает корзину. Используется после подтверждённого оформления
// заказа либо по явному действию клиента.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
	if l.store == nil {
		return
	}
	if err := l.store.Remove(l.key); err != nil {
		l.logger.WithError(err).Warn("failed to remove cart snapshot")
	}
}

// Items возвращает копию позиций корзины в порядке добавления.
func (l *Ledger) Items() []domain.CartLineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]domain.CartLineItem, len(l.items))
	copy(result, l.items)
	return result
}

// Len возвращает число записей корзины.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// GrandTotal возвращает сумму итогов всех позиций.
// Каждое значение приводится к числу-или-нулю: пустая или повреждённая
// корзина даёт 0, никогда NaN.
func (l *Ledger) GrandTotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, item := range l.items {
		v := item.TotalPrice
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		total += v
	}
	if math.IsNaN(total) {
		return 0
	}
	return total
}

// TotalItems возвращает суммарное количество единиц во всех позициях.
func (l *Ledger) TotalItems() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int
	for _, item := range l.items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

// Snapshot строит черновик заказа из текущего содержимого корзины.
// Ценовые поля в черновик не попадают: авторитетную цену считает сервер.
func (l *Ledger) Snapshot(deliveryLocation string, method domain.PaymentMethod) domain.OrderDraft {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]domain.OrderDraftLine, 0, len(l.items))
	for _, item := range l.items {
		lines = append(lines, domain.OrderDraftLine{
			CatalogItemID: item.CatalogItemID,
			Size:          item.SelectedSize,
			Toppings:      item.SelectedToppings,
			Quantity:      item.Quantity,
		})
	}

	return domain.OrderDraft{
		Items:            lines,
		DeliveryLocation: deliveryLocation,
		PaymentMethod:    method,
	}
}
