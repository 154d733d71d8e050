package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// StaticProvider отдаёт позиции каталога из памяти. Используется, пока
// внешний сервис меню не подключён, и в тестах.
type StaticProvider struct {
	mu    sync.RWMutex
	items []domain.CatalogItem
}

// NewStaticProvider создаёт провайдер с переданными позициями.
func NewStaticProvider(items []domain.CatalogItem) *StaticProvider {
	copied := make([]domain.CatalogItem, len(items))
	copy(copied, items)
	return &StaticProvider{items: copied}
}

// NewDefaultProvider создаёт провайдер с демонстрационным меню.
func NewDefaultProvider() *StaticProvider {
	sizes := []domain.Size{
		{Name: "Regular", Multiplier: 1},
		{Name: "Medium", Multiplier: 1.2},
		{Name: "Large", Multiplier: 1.5},
	}

	return NewStaticProvider([]domain.CatalogItem{
		{
			ID:               "item-margherita",
			Name:             "Margherita",
			Category:         "pizza",
			BasePrice:        200,
			Sizes:            sizes,
			IncludedToppings: []domain.Topping{{Name: "Onion", Price: domain.ExtraToppingSurcharge}},
			Available:        true,
		},
		{
			ID:               "item-farmhouse",
			Name:             "Farmhouse",
			Category:         "pizza",
			BasePrice:        260,
			Sizes:            sizes,
			IncludedToppings: []domain.Topping{{Name: "Onion", Price: domain.ExtraToppingSurcharge}, {Name: "Capsicum", Price: domain.ExtraToppingSurcharge}},
			Available:        true,
		},
		{
			ID:        "item-garlic-bread",
			Name:      "Garlic Bread",
			Category:  "sides",
			BasePrice: 120,
			Available: true,
		},
		{
			ID:        "item-cold-coffee",
			Name:      "Cold Coffee",
			Category:  "beverages",
			BasePrice: 90,
			Available: true,
		},
	})
}

// ListItems возвращает доступные позиции, опционально по категории.
func (p *StaticProvider) ListItems(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	category = strings.ToLower(strings.TrimSpace(category))
	result := make([]domain.CatalogItem, 0, len(p.items))
	for _, item := range p.items {
		if !item.Available {
			continue
		}
		if category != "" && strings.ToLower(item.Category) != category {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// Replace атомарно заменяет набор позиций.
func (p *StaticProvider) Replace(items []domain.CatalogItem) {
	copied := make([]domain.CatalogItem, len(items))
	copy(copied, items)

	p.mu.Lock()
	p.items = copied
	p.mu.Unlock()
}

var _ domain.CatalogProvider = (*StaticProvider)(nil)
