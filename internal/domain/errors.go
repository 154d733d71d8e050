package domain

import "errors"

var (
	// Ошибка оформления при пустой корзине.
	ErrCartEmpty = errors.New("cart is empty")
	// Ошибка пустого (после trim) адреса доставки.
	ErrDeliveryLocationRequired = errors.New("delivery location is required")
	// Ошибка неподдерживаемого способа оплаты.
	ErrPaymentMethodInvalid = errors.New("payment method must be COD or ONLINE")
	// Ошибка отсутствующего токена идентичности.
	ErrUnauthorized = errors.New("identity token is missing")
	// Ошибка при некорректном количестве позиции (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// ErrCheckoutInFlight возвращается при попытке повторного входа,
	// пока предыдущая попытка оформления ещё выполняется.
	ErrCheckoutInFlight = errors.New("checkout attempt already in flight")
	// ErrGatewayScriptLoad — скрипт платёжного шлюза не загрузился.
	ErrGatewayScriptLoad = errors.New("payment gateway script failed to load")
	// ErrPaymentVerification — серверная верификация подписи не прошла.
	ErrPaymentVerification = errors.New("payment verification failed")
	// ErrPaymentCancelled фиксирует закрытие виджета клиентом; не ошибка в строгом смысле.
	ErrPaymentCancelled = errors.New("payment cancelled by user")
	// ErrCartSnapshotNotFound возвращается, если снимок корзины отсутствует в хранилище.
	ErrCartSnapshotNotFound = errors.New("cart snapshot not found")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrCircuitOpen — внешний шлюз временно отключён предохранителем.
	ErrCircuitOpen = errors.New("gateway circuit breaker is open")
)

// TransportError — ошибка сетевого шага: переносит сообщение сервера,
// если оно есть, иначе вызывающий показывает generic fallback.
type TransportError struct {
	// Step — шаг автомата, на котором произошла ошибка.
	Step string
	// ServerMessage — сообщение из тела ответа сервера, дословно.
	ServerMessage string
	// StatusCode — HTTP-статус ответа, 0 при сетевой ошибке без ответа.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	if e.Err != nil {
		return e.Step + ": " + e.Err.Error()
	}
	return e.Step + ": transport error"
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport проверяет, является ли ошибка транспортной.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// UserMessage возвращает сообщение сервера или переданный fallback.
func UserMessage(err error, fallback string) string {
	var te *TransportError
	if errors.As(err, &te) && te.ServerMessage != "" {
		return te.ServerMessage
	}
	if err == nil {
		return fallback
	}
	if fallback == "" {
		return err.Error()
	}
	return fallback
}
