package domain

import "time"

// PaymentMethod определяет способ оплаты заказа.
type PaymentMethod string

const (
	// PaymentMethodCOD — оплата наличными при доставке, минуя онлайн-шлюз.
	PaymentMethodCOD PaymentMethod = "COD"
	// PaymentMethodOnline — оплата через внешний платёжный шлюз.
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// Valid проверяет, что способ оплаты поддерживается.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата ещё не подтверждена.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid — оплата подтверждена после верификации.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed — шлюз сообщил об ошибке оплаты.
	PaymentStatusFailed PaymentStatus = "failed"
)

// OrderStatus описывает жизненный цикл заказа на стороне сервера.
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderDraftLine — одна позиция исходящего запроса на создание заказа.
// Ценовые поля сознательно отсутствуют: авторитетная цена считается сервером.
type OrderDraftLine struct {
	CatalogItemID string    `json:"menuItemId"`
	Size          *Size     `json:"selectedSize,omitempty"`
	Toppings      []Topping `json:"selectedToppings,omitempty"`
	Quantity      int       `json:"quantity"`
}

// OrderDraft — провалидированный снимок корзины плюс параметры доставки и оплаты.
type OrderDraft struct {
	Items            []OrderDraftLine `json:"items"`
	DeliveryLocation string           `json:"deliveryLocation"`
	PaymentMethod    PaymentMethod    `json:"paymentMethod"`
}

// ValidateInvariants проверяет базовые инварианты черновика заказа.
func (d *OrderDraft) ValidateInvariants() []error {
	var errs []error

	if len(d.Items) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if d.DeliveryLocation == "" {
		errs = append(errs, ErrDeliveryLocationRequired)
	}
	if !d.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	for _, line := range d.Items {
		if line.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
			break
		}
	}

	return errs
}

// Order — заказ, созданный внешним Order Service. Ядро только читает его поля.
type Order struct {
	ID               string
	Items            []OrderDraftLine
	DeliveryLocation string
	PaymentMethod    PaymentMethod
	// Amount — истинная сумма заказа, посчитанная сервером.
	Amount        float64
	Currency      string
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	CreatedAt     time.Time
}

// PaymentSession — выданный сервером, привязанный к сумме хэндл,
// авторизующий одну попытку онлайн-оплаты конкретного заказа.
type PaymentSession struct {
	SessionID  string
	OrderID    string
	Amount     float64
	Currency   string
	GatewayKey string
}

// PaymentConfirmation — подписанный ответ шлюза, отправляемый на серверную верификацию.
type PaymentConfirmation struct {
	SessionID string `json:"razorpayOrderId"`
	PaymentID string `json:"razorpayPaymentId"`
	Signature string `json:"razorpaySignature"`
	OrderID   string `json:"orderId"`
}
