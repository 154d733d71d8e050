package domain

// Size описывает вариант размера/основы позиции каталога.
type Size struct {
	// Name — название размера («Regular», «Medium», «Large»).
	Name string
	// Multiplier — множитель к базовой цене, всегда >= 1.
	Multiplier float64
}

// Topping описывает топпинг с фиксированной ценой.
type Topping struct {
	Name  string
	Price float64
}

// CatalogItem — позиция каталога, доступная только для чтения со стороны ядра.
// Снимок её полей копируется в позицию корзины в момент добавления.
type CatalogItem struct {
	ID       string
	Name     string
	Category string
	ImageRef string
	// BasePrice — базовая цена без учёта размера и топпингов, неотрицательная.
	BasePrice float64
	// Sizes — доступные размеры; пустой список означает некастомизируемую позицию.
	Sizes []Size
	// IncludedToppings — топпинги, входящие в позицию бесплатно.
	IncludedToppings []Topping
	Available        bool
}

// ExtraToppingSurcharge — фиксированная доплата за каждый топпинг,
// не входящий в состав позиции.
const ExtraToppingSurcharge = 5.0

// MasterToppings возвращает глобальный список доступных топпингов.
// Список не привязан к конкретной позиции каталога.
func MasterToppings() []Topping {
	return []Topping{
		{Name: "Paneer", Price: ExtraToppingSurcharge},
		{Name: "Mushroom", Price: ExtraToppingSurcharge},
		{Name: "Corn", Price: ExtraToppingSurcharge},
		{Name: "Capsicum", Price: ExtraToppingSurcharge},
		{Name: "Onion", Price: ExtraToppingSurcharge},
		{Name: "Tomato", Price: ExtraToppingSurcharge},
	}
}

// FindTopping ищет топпинг по имени в глобальном списке.
func FindTopping(name string) (Topping, bool) {
	for _, t := range MasterToppings() {
		if t.Name == name {
			return t, true
		}
	}
	return Topping{}, false
}
