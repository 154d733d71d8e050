// Пакет pricing содержит чистый калькулятор цен позиций корзины.
// Никакого I/O и побочных эффектов: одни и те же входы дают одну и ту же цену.
package pricing

import (
	"math"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// UnitPrice вычисляет цену единицы позиции:
// базовая цена * множитель размера + доплата за каждый extra-топпинг.
// Множитель равен 1, если размер не выбран. Включённые топпинги бесплатны
// независимо от состояния выбора. Результат округлён до сотых и никогда
// не бывает NaN или отрицательным.
func UnitPrice(basePrice float64, size *domain.Size, extraToppings int) float64 {
	base := sanitize(basePrice)
	if base < 0 {
		base = 0
	}

	multiplier := 1.0
	if size != nil {
		multiplier = sanitize(size.Multiplier)
		if multiplier < 1 {
			multiplier = 1
		}
	}

	if extraToppings < 0 {
		extraToppings = 0
	}

	price := base*multiplier + float64(extraToppings)*domain.ExtraToppingSurcharge
	return round2(sanitize(price))
}

// TotalPrice вычисляет полную цену позиции для заданного количества.
func TotalPrice(unitPrice float64, quantity int) float64 {
	if quantity < 0 {
		quantity = 0
	}
	return round2(sanitize(unitPrice) * float64(quantity))
}

// ExtraToppings возвращает выбранные топпинги, не входящие в состав позиции.
// Именно они оплачиваются по фиксированной доплате.
func ExtraToppings(selected, included []domain.Topping) []domain.Topping {
	includedNames := make(map[string]struct{}, len(included))
	for _, t := range included {
		includedNames[t.Name] = struct{}{}
	}

	extra := make([]domain.Topping, 0, len(selected))
	for _, t := range selected {
		if _, ok := includedNames[t.Name]; ok {
			continue
		}
		extra = append(extra, t)
	}
	return extra
}

// sanitize приводит значение к конечному числу: NaN и Inf схлопываются в 0,
// чтобы некорректный вход никогда не отравлял итоговую цену.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
