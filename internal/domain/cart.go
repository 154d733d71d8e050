package domain

import (
	"sort"
	"strings"
)

// CartLineItem — одна позиция корзины: снимок данных каталога на момент
// добавления плюс выбранная конфигурация и количество.
// Владеет позициями исключительно Cart Ledger; никто другой их не мутирует.
type CartLineItem struct {
	CatalogItemID string  `json:"catalog_item_id"`
	Name          string  `json:"name"`
	ImageRef      string  `json:"image_ref,omitempty"`
	BasePrice     float64 `json:"base_price"`
	// SelectedSize — выбранный размер; nil для некастомизируемых позиций.
	SelectedSize *Size `json:"selected_size,omitempty"`
	// SelectedToppings — все топпинги, которые клиент хочет на позиции
	// (надмножество включённых при кастомизации; пусто при quick-add).
	SelectedToppings []Topping `json:"selected_toppings,omitempty"`
	// IncludedToppings — топпинги, входившие в позицию бесплатно на момент добавления.
	IncludedToppings []Topping `json:"included_toppings,omitempty"`
	// ExtraToppings — SelectedToppings минус IncludedToppings; каждый оплачивается отдельно.
	ExtraToppings []Topping `json:"extra_toppings,omitempty"`
	Quantity      int       `json:"quantity"`
	// UnitPrice и TotalPrice — производные, но хранятся явно.
	// Инвариант: TotalPrice == UnitPrice * Quantity после каждой мутации.
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// ConfigKey возвращает ключ дедупликации позиции: id каталога, имя размера
// (пустое при отсутствии) и отсортированный набор имён выбранных топпингов.
// Две позиции с одинаковым ключом обязаны сливаться в одну запись.
func (li CartLineItem) ConfigKey() string {
	sizeName := ""
	if li.SelectedSize != nil {
		sizeName = li.SelectedSize.Name
	}

	names := make([]string, 0, len(li.SelectedToppings))
	for _, t := range li.SelectedToppings {
		names = append(names, t.Name)
	}
	sort.Strings(names)

	return li.CatalogItemID + "|" + sizeName + "|" + strings.Join(names, ",")
}

// SameConfiguration сообщает, являются ли две позиции дубликатами по смыслу §корзины:
// совпадают позиция каталога, размер и набор выбранных топпингов (без учёта порядка).
func (li CartLineItem) SameConfiguration(other CartLineItem) bool {
	return li.ConfigKey() == other.ConfigKey()
}

// QuickAdd — кандидат на добавление без кастомизации: цена вычисляется
// леджером из снимка каталога.
type QuickAdd struct {
	Item     CatalogItem
	Size     *Size
	Quantity int
}

// Customized — кандидат из потока кастомизации: размер и топпинги выбраны,
// цены уже посчитаны на стороне вызывающего.
type Customized struct {
	Item             CatalogItem
	Size             Size
	SelectedToppings []Topping
	ExtraToppings    []Topping
	Quantity         int
	UnitPrice        float64
	TotalPrice       float64
}

// CartCandidate — помеченное объединение двух путей построения позиции корзины.
// Леджер нормализует кандидата в каноничный CartLineItem.
type CartCandidate interface {
	isCartCandidate()
}

func (QuickAdd) isCartCandidate()   {}
func (Customized) isCartCandidate() {}
