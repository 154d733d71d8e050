package domain

import "time"

// CheckoutState — состояние конечного автомата оформления заказа.
type CheckoutState string

const (
	// CheckoutStateIdle — автомат ожидает вызова PlaceOrder.
	CheckoutStateIdle CheckoutState = "idle"
	// CheckoutStateValidating — проверка корзины, адреса и токена идентичности.
	CheckoutStateValidating CheckoutState = "validating"
	// CheckoutStateCreatingOrder — отправка черновика заказа на сервер.
	CheckoutStateCreatingOrder CheckoutState = "creating_order"
	// CheckoutStateCODConfirmed — терминальный успех для оплаты при доставке.
	CheckoutStateCODConfirmed CheckoutState = "cod_confirmed"
	// CheckoutStateLoadingGateway — загрузка скрипта внешнего шлюза.
	CheckoutStateLoadingGateway CheckoutState = "loading_gateway"
	// CheckoutStateCreatingPaymentSession — запрос платёжной сессии по заказу.
	CheckoutStateCreatingPaymentSession CheckoutState = "creating_payment_session"
	// CheckoutStateAwaitingGateway — управление передано виджету шлюза,
	// ожидаем ровно одно из трёх callback-событий.
	CheckoutStateAwaitingGateway CheckoutState = "awaiting_gateway"
	// CheckoutStateVerifyingPayment — серверная верификация подписанного ответа шлюза.
	CheckoutStateVerifyingPayment CheckoutState = "verifying_payment"
	// CheckoutStateCompleted — терминальный успех онлайн-оплаты.
	CheckoutStateCompleted CheckoutState = "completed"

	// CheckoutStateUnauthorized — нет живого токена; вызывающему нужно переаутентифицироваться.
	CheckoutStateUnauthorized CheckoutState = "unauthorized"
	// CheckoutStateOrderCreationFailed — создание заказа не удалось; повтор безопасен.
	CheckoutStateOrderCreationFailed CheckoutState = "order_creation_failed"
	// CheckoutStateGatewayLoadFailed — скрипт шлюза не загрузился; заказ уже существует.
	CheckoutStateGatewayLoadFailed CheckoutState = "gateway_load_failed"
	// CheckoutStatePaymentSessionFailed — платёжная сессия не создана; заказ ждёт оплаты.
	CheckoutStatePaymentSessionFailed CheckoutState = "payment_session_failed"
	// CheckoutStatePaymentFailed — шлюз сообщил об ошибке оплаты.
	CheckoutStatePaymentFailed CheckoutState = "payment_failed"
	// CheckoutStatePaymentCancelled — клиент закрыл виджет, не завершив оплату.
	CheckoutStatePaymentCancelled CheckoutState = "payment_cancelled"
	// CheckoutStateVerificationFailed — подпись не прошла проверку; слепой повтор небезопасен.
	CheckoutStateVerificationFailed CheckoutState = "verification_failed"
)

// Terminal сообщает, является ли состояние конечным для текущей попытки оформления.
func (s CheckoutState) Terminal() bool {
	switch s {
	case CheckoutStateCODConfirmed,
		CheckoutStateCompleted,
		CheckoutStateUnauthorized,
		CheckoutStateOrderCreationFailed,
		CheckoutStateGatewayLoadFailed,
		CheckoutStatePaymentSessionFailed,
		CheckoutStatePaymentFailed,
		CheckoutStatePaymentCancelled,
		CheckoutStateVerificationFailed:
		return true
	default:
		return false
	}
}

// Success сообщает, завершилась ли попытка оформлением заказа.
func (s CheckoutState) Success() bool {
	return s == CheckoutStateCODConfirmed || s == CheckoutStateCompleted
}

// RetrySafe сообщает, можно ли безопасно повторить оформление из этого состояния
// без предварительной сверки статуса заказа на сервере.
func (s CheckoutState) RetrySafe() bool {
	switch s {
	case CheckoutStateOrderCreationFailed, CheckoutStateUnauthorized, CheckoutStatePaymentCancelled:
		return true
	default:
		// После callback шлюза повтор требует проверки статуса заказа.
		return false
	}
}

// CheckoutTransition — один переход автомата, элемент потока,
// возвращаемого PlaceOrder.
type CheckoutTransition struct {
	From    CheckoutState
	To      CheckoutState
	OrderID string
	// Message — человекочитаемое описание для UI (сообщение сервера или fallback).
	Message  string
	Err      error
	Occurred time.Time
}

// GatewayEventKind — разновидность callback-события виджета шлюза.
type GatewayEventKind string

const (
	// GatewayEventSuccess — шлюз сообщил об успешной оплате и вернул подпись.
	GatewayEventSuccess GatewayEventKind = "success"
	// GatewayEventFailure — шлюз сообщил об явной ошибке оплаты.
	GatewayEventFailure GatewayEventKind = "failure"
	// GatewayEventDismissed — клиент закрыл виджет, не завершив оплату.
	GatewayEventDismissed GatewayEventKind = "dismissed"
)

// GatewayEvent — единый входящий тип события от виджета шлюза.
// Адаптер виджета транслирует три его callback в три варианта этого события.
type GatewayEvent struct {
	Kind GatewayEventKind
	// SessionID/PaymentID/Signature заполнены только при Kind == success.
	SessionID string
	PaymentID string
	Signature string
	// Reason заполнен только при Kind == failure.
	Reason string
}
