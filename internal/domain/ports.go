package domain

import (
	"context"
	"time"
)

// User — данные аутентифицированного клиента, прокидываемые в prefill виджета.
type User struct {
	Name  string
	Email string
	Role  string
}

// CatalogProvider отдаёт позиции каталога; ядро его только читает.
type CatalogProvider interface {
	// ListItems возвращает позиции каталога, опционально отфильтрованные по категории.
	ListItems(ctx context.Context, category string) ([]CatalogItem, error)
}

// IdentityProvider предоставляет текущий токен и профиль клиента.
// Ядро ветвится только по наличию токена и никогда не разбирает его содержимое.
type IdentityProvider interface {
	// Token возвращает непрозрачный токен и признак его наличия.
	Token() (string, bool)
	// CurrentUser возвращает профиль текущего клиента.
	CurrentUser() User
}

// OrderService описывает взаимодействие с внешним сервисом заказов.
type OrderService interface {
	// CreateOrder создаёт заказ из черновика; цены считает сервер.
	CreateOrder(ctx context.Context, draft OrderDraft) (Order, error)
	// ListMyOrders возвращает заказы текущего клиента.
	ListMyOrders(ctx context.Context) ([]Order, error)
}

// PaymentGateway описывает взаимодействие с платёжным шлюзом.
type PaymentGateway interface {
	// CreatePaymentSession запрашивает платёжную сессию по идентификатору заказа.
	CreatePaymentSession(ctx context.Context, orderID string) (PaymentSession, error)
	// VerifyPayment отправляет подписанный ответ шлюза на серверную верификацию.
	VerifyPayment(ctx context.Context, confirmation PaymentConfirmation) error
	// ReportFailure передаёт на сервер причину неудачи оплаты; best-effort.
	ReportFailure(ctx context.Context, orderID, reason string) error
}

// ScriptLoader загружает скрипт внешнего шлюза.
// Load идемпотентен: повторный вызов после успеха завершается сразу.
type ScriptLoader interface {
	Load(ctx context.Context) error
}

// GatewayWidget — адаптер виджета внешнего шлюза. Open передаёт управление
// виджету и возвращает канал, в который придёт ровно одно событие:
// success, failure или dismissed.
type GatewayWidget interface {
	Open(ctx context.Context, session PaymentSession, prefill User) (<-chan GatewayEvent, error)
}

// CartStore — долговременное key-value хранилище снимков корзины.
type CartStore interface {
	// Get возвращает снимок по ключу или ErrCartSnapshotNotFound.
	Get(key string) (string, error)
	// Set сохраняет снимок и обновляет отметку активности.
	Set(key, value string) error
	// Remove удаляет снимок; отсутствие ключа не является ошибкой.
	Remove(key string) error
	// DeleteIdle удаляет до limit снимков, не менявшихся с before.
	DeleteIdle(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события оформления.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineEvent описывает один переход автомата оформления в журнале попытки.
type TimelineEvent struct {
	AttemptID string
	OrderID   string
	From      CheckoutState
	To        CheckoutState
	Reason    string
	Occurred  time.Time
}

// TimelineRepository хранит журнал переходов попыток оформления.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(attemptID string) ([]TimelineEvent, error)
}

// CheckoutStep задаёт константы шагов для метрик/логов.
type CheckoutStep string

const (
	CheckoutStepValidate      CheckoutStep = "validate"
	CheckoutStepCreateOrder   CheckoutStep = "create_order"
	CheckoutStepLoadGateway   CheckoutStep = "load_gateway"
	CheckoutStepCreateSession CheckoutStep = "create_session"
	CheckoutStepAwaitGateway  CheckoutStep = "await_gateway"
	CheckoutStepVerify        CheckoutStep = "verify"
	CheckoutStepReportFailure CheckoutStep = "report_failure"
)
