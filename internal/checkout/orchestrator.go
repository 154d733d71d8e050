package checkout

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// defaultStepTimeout ограничивает каждый сетевой шаг оформления.
// Ожидание виджета шлюза под лимит не попадает: оно управляется клиентом.
const defaultStepTimeout = 15 * time.Second

// Orchestrator описывает интерфейс управления оформлением заказа.
type Orchestrator interface {
	// PlaceOrder запускает одну попытку оформления и возвращает поток переходов
	// автомата. Канал закрывается после терминального состояния.
	// Пока попытка выполняется, повторный вызов возвращает ErrCheckoutInFlight.
	PlaceOrder(ctx context.Context, deliveryLocation string, method domain.PaymentMethod) (<-chan domain.CheckoutTransition, error)
	// State возвращает текущее состояние автомата.
	State() domain.CheckoutState
	// InFlight сообщает, выполняется ли попытка оформления прямо сейчас.
	InFlight() bool
	// LastError возвращает ошибку последней завершившейся попытки, если была.
	LastError() error
}

// orchestrator реализует конечный автомат оформления:
// Validating → CreatingOrder → { CODConfirmed | онлайн-ветка до Completed }.
type orchestrator struct {
	cart          *cart.Ledger
	identity      domain.IdentityProvider
	orders        domain.OrderService
	payments      domain.PaymentGateway
	script        domain.ScriptLoader
	widget        domain.GatewayWidget
	outbox        domain.OutboxRepository
	timeline      domain.TimelineRepository
	logger        *log.Entry
	metrics       *metrics.CheckoutMetrics
	kafkaProducer *kafka.Producer // опциональный Kafka producer для event-driven архитектуры
	stepTimeout   time.Duration

	mu        sync.Mutex
	busy      bool
	state     domain.CheckoutState
	attemptID string
	lastErr   error
}

// Deps перечисляет зависимости оркестратора оформления.
type Deps struct {
	Cart     *cart.Ledger
	Identity domain.IdentityProvider
	Orders   domain.OrderService
	Payments domain.PaymentGateway
	Script   domain.ScriptLoader
	Widget   domain.GatewayWidget
	Outbox   domain.OutboxRepository
	Timeline domain.TimelineRepository
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(deps Deps, logger *log.Entry) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &orchestrator{
		cart:        deps.Cart,
		identity:    deps.Identity,
		orders:      deps.Orders,
		payments:    deps.Payments,
		script:      deps.Script,
		widget:      deps.Widget,
		outbox:      deps.Outbox,
		timeline:    deps.Timeline,
		logger:      logger,
		metrics:     metrics.NewCheckoutMetrics(),
		stepTimeout: defaultStepTimeout,
		state:       domain.CheckoutStateIdle,
	}
}

// NewOrchestratorWithKafka создаёт оркестратор с Kafka producer для event-driven архитектуры.
func NewOrchestratorWithKafka(deps Deps, kafkaProducer *kafka.Producer, logger *log.Entry) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &orchestrator{
		cart:          deps.Cart,
		identity:      deps.Identity,
		orders:        deps.Orders,
		payments:      deps.Payments,
		script:        deps.Script,
		widget:        deps.Widget,
		outbox:        deps.Outbox,
		timeline:      deps.Timeline,
		logger:        logger,
		metrics:       metrics.NewCheckoutMetrics(),
		kafkaProducer: kafkaProducer,
		stepTimeout:   defaultStepTimeout,
		state:         domain.CheckoutStateIdle,
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(deps Deps, logger *log.Entry) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &orchestrator{
		cart:        deps.Cart,
		identity:    deps.Identity,
		orders:      deps.Orders,
		payments:    deps.Payments,
		script:      deps.Script,
		widget:      deps.Widget,
		outbox:      deps.Outbox,
		timeline:    deps.Timeline,
		logger:      logger,
		metrics:     nil, // Отключаем метрики для тестов
		stepTimeout: defaultStepTimeout,
		state:       domain.CheckoutStateIdle,
	}
}

// State возвращает текущее состояние автомата.
func (o *orchestrator) State() domain.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InFlight сообщает, выполняется ли попытка оформления.
func (o *orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// LastError возвращает ошибку последней завершившейся попытки.
func (o *orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// PlaceOrder валидирует вход, захватывает busy-флаг и запускает попытку.
// Ошибки валидации корзины и адреса возвращаются синхронно: автомат
// не стартует, сетевых вызовов не происходит.
func (o *orchestrator) PlaceOrder(ctx context.Context, deliveryLocation string, method domain.PaymentMethod) (<-chan domain.CheckoutTransition, error) {
	location := strings.TrimSpace(deliveryLocation)

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		if o.metrics != nil {
			o.metrics.RecordCheckoutRejected()
		}
		return nil, domain.ErrCheckoutInFlight
	}

	if o.cart.Len() == 0 {
		o.mu.Unlock()
		return nil, domain.ErrCartEmpty
	}
	if location == "" {
		o.mu.Unlock()
		return nil, domain.ErrDeliveryLocationRequired
	}
	if !method.Valid() {
		o.mu.Unlock()
		return nil, domain.ErrPaymentMethodInvalid
	}

	attemptID := uuid.NewString()
	o.busy = true
	o.state = domain.CheckoutStateIdle
	o.attemptID = attemptID
	o.lastErr = nil
	o.mu.Unlock()

	transitions := make(chan domain.CheckoutTransition, 16)
	go o.run(ctx, attemptID, location, method, transitions)
	return transitions, nil
}

// run ведёт автомат от Validating до терминального состояния.
func (o *orchestrator) run(ctx context.Context, attemptID, location string, method domain.PaymentMethod, out chan<- domain.CheckoutTransition) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordCheckoutStarted()
	}
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordCheckoutDuration(time.Since(start))
			o.metrics.RecordCheckoutFinished()
		}
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
		close(out)
	}()

	o.publishCheckoutEvent(kafka.EventTypeCheckoutStarted, attemptID, "", map[string]interface{}{
		"payment_method": string(method),
		"items_count":    o.cart.Len(),
	})

	o.transition(out, attemptID, domain.CheckoutStateValidating, "", "", nil)

	if _, ok := o.identity.Token(); !ok {
		o.logger.WithField("attempt_id", attemptID).Warn("identity token missing")
		o.fail(out, attemptID, domain.CheckoutStateUnauthorized, "", "please sign in again", domain.ErrUnauthorized)
		return
	}

	// CreatingOrder: цены в исходящем черновике сознательно отсутствуют,
	// авторитетную сумму считает сервер.
	o.transition(out, attemptID, domain.CheckoutStateCreatingOrder, "", "", nil)
	draft := o.cart.Snapshot(location, method)

	order, err := o.createOrder(ctx, draft)
	if err != nil {
		o.logger.WithError(err).WithField("attempt_id", attemptID).Warn("order creation failed")
		o.fail(out, attemptID, domain.CheckoutStateOrderCreationFailed, "",
			domain.UserMessage(err, "failed to place order, please try again"), err)
		return
	}

	o.logger.WithFields(log.Fields{
		"attempt_id": attemptID,
		"order_id":   order.ID,
		"amount":     order.Amount,
	}).Info("order created")
	o.publishCheckoutEvent(kafka.EventTypeOrderCreated, attemptID, order.ID, map[string]interface{}{
		"amount":         order.Amount,
		"payment_method": string(method),
	})

	if method == domain.PaymentMethodCOD {
		// COD: заказ оформлен, онлайн-шлюз не участвует.
		o.cart.Clear()
		o.transition(out, attemptID, domain.CheckoutStateCODConfirmed, order.ID, "order placed, pay on delivery", nil)
		o.complete(attemptID, order.ID, method)
		return
	}

	o.runOnline(ctx, attemptID, order, out)
}

// runOnline ведёт онлайн-ветку: скрипт шлюза → платёжная сессия → виджет → верификация.
func (o *orchestrator) runOnline(ctx context.Context, attemptID string, order domain.Order, out chan<- domain.CheckoutTransition) {
	o.transition(out, attemptID, domain.CheckoutStateLoadingGateway, order.ID, "", nil)
	if err := o.loadScript(ctx); err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("gateway script load failed")
		// Заказ уже существует; повтор оформления не должен создавать дубликат.
		o.fail(out, attemptID, domain.CheckoutStateGatewayLoadFailed, order.ID,
			"payment gateway is unavailable, your order is saved", domain.ErrGatewayScriptLoad)
		return
	}

	o.transition(out, attemptID, domain.CheckoutStateCreatingPaymentSession, order.ID, "", nil)
	session, err := o.createSession(ctx, order.ID)
	if err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("payment session creation failed")
		o.fail(out, attemptID, domain.CheckoutStatePaymentSessionFailed, order.ID,
			domain.UserMessage(err, "could not start payment, pay later from order history"), err)
		return
	}

	o.publishCheckoutEvent(kafka.EventTypeSessionCreated, attemptID, order.ID, map[string]interface{}{
		"session_id": session.SessionID,
		"amount":     session.Amount,
		"currency":   session.Currency,
	})

	o.transition(out, attemptID, domain.CheckoutStateAwaitingGateway, order.ID, "", nil)
	events, err := o.widget.Open(ctx, session, o.identity.CurrentUser())
	if err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("gateway widget open failed")
		o.fail(out, attemptID, domain.CheckoutStateGatewayLoadFailed, order.ID,
			"payment gateway is unavailable, your order is saved", err)
		return
	}

	// Ровно одно из трёх callback-событий; ожидание виджета длится столько,
	// сколько решает клиент, поэтому здесь нет step-таймаута.
	var event domain.GatewayEvent
	select {
	case <-ctx.Done():
		o.logger.WithField("order_id", order.ID).Warn("checkout context cancelled while awaiting gateway")
		o.fail(out, attemptID, domain.CheckoutStatePaymentCancelled, order.ID,
			"payment was not completed", domain.ErrPaymentCancelled)
		return
	case event = <-events:
	}

	if o.metrics != nil {
		o.metrics.RecordGatewayEvent(string(event.Kind))
	}

	switch event.Kind {
	case domain.GatewayEventSuccess:
		o.verify(ctx, attemptID, order, session, event, out)
	case domain.GatewayEventFailure:
		// Best-effort аудит: провал самого отчёта не меняет исход.
		o.reportFailure(ctx, order.ID, event.Reason)
		reason := event.Reason
		if reason == "" {
			reason = "payment failed"
		}
		o.fail(out, attemptID, domain.CheckoutStatePaymentFailed, order.ID, reason, domain.ErrPaymentVerification)
		o.publishCheckoutEvent(kafka.EventTypePaymentFailed, attemptID, order.ID, map[string]interface{}{
			"reason": event.Reason,
		})
	case domain.GatewayEventDismissed:
		// Закрытие виджета — не ошибка: без аудита, корзина сохраняется.
		o.fail(out, attemptID, domain.CheckoutStatePaymentCancelled, order.ID,
			"payment was not completed", domain.ErrPaymentCancelled)
	default:
		o.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"kind":     event.Kind,
		}).Error("unknown gateway event kind")
		o.fail(out, attemptID, domain.CheckoutStatePaymentFailed, order.ID, "payment failed", domain.ErrPaymentVerification)
	}
}

// verify отправляет подписанный ответ шлюза на серверную верификацию.
func (o *orchestrator) verify(ctx context.Context, attemptID string, order domain.Order, session domain.PaymentSession, event domain.GatewayEvent, out chan<- domain.CheckoutTransition) {
	o.transition(out, attemptID, domain.CheckoutStateVerifyingPayment, order.ID, "", nil)

	confirmation := domain.PaymentConfirmation{
		SessionID: event.SessionID,
		PaymentID: event.PaymentID,
		Signature: event.Signature,
		OrderID:   order.ID,
	}
	if confirmation.SessionID == "" {
		confirmation.SessionID = session.SessionID
	}

	if err := o.verifyPayment(ctx, confirmation); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"payment_id": event.PaymentID,
		}).Error("payment verification failed")
		// Слепой повтор чреват двойным списанием; направляем в поддержку.
		o.fail(out, attemptID, domain.CheckoutStateVerificationFailed, order.ID,
			"payment could not be verified, contact support before retrying", domain.ErrPaymentVerification)
		return
	}

	o.cart.Clear()
	o.transition(out, attemptID, domain.CheckoutStateCompleted, order.ID, "payment successful", nil)
	o.publishCheckoutEvent(kafka.EventTypePaymentVerified, attemptID, order.ID, map[string]interface{}{
		"payment_id": event.PaymentID,
	})
	o.complete(attemptID, order.ID, domain.PaymentMethodOnline)
}

func (o *orchestrator) complete(attemptID, orderID string, method domain.PaymentMethod) {
	if o.metrics != nil {
		o.metrics.RecordCheckoutCompleted()
	}
	o.logger.WithFields(log.Fields{
		"attempt_id": attemptID,
		"order_id":   orderID,
	}).Info("checkout completed")
	o.publishCheckoutEvent(kafka.EventTypeCheckoutCompleted, attemptID, orderID, map[string]interface{}{
		"payment_method": string(method),
	})
}

// fail фиксирует терминальное состояние неудачи и соответствующие метрики.
func (o *orchestrator) fail(out chan<- domain.CheckoutTransition, attemptID string, to domain.CheckoutState, orderID, message string, cause error) {
	if o.metrics != nil {
		if to == domain.CheckoutStatePaymentCancelled {
			o.metrics.RecordCheckoutCancelled()
		} else {
			o.metrics.RecordCheckoutFailed()
		}
	}

	o.mu.Lock()
	o.lastErr = cause
	o.mu.Unlock()

	o.transition(out, attemptID, to, orderID, message, cause)

	eventType := kafka.EventTypeCheckoutFailed
	if to == domain.CheckoutStatePaymentCancelled {
		eventType = kafka.EventTypeCheckoutCancelled
	}
	meta := map[string]interface{}{
		"state": string(to),
	}
	if cause != nil {
		meta["reason"] = cause.Error()
	}
	o.publishCheckoutEvent(eventType, attemptID, orderID, meta)
}

// transition переводит автомат в новое состояние, отправляет переход
// подписчику и журналирует его в timeline и outbox.
func (o *orchestrator) transition(out chan<- domain.CheckoutTransition, attemptID string, to domain.CheckoutState, orderID, message string, cause error) {
	o.mu.Lock()
	from := o.state
	o.state = to
	o.mu.Unlock()

	occurred := time.Now().UTC()
	tr := domain.CheckoutTransition{
		From:     from,
		To:       to,
		OrderID:  orderID,
		Message:  message,
		Err:      cause,
		Occurred: occurred,
	}

	select {
	case out <- tr:
	default:
		// Подписчик не читает; переход остаётся в timeline.
		o.logger.WithFields(log.Fields{
			"attempt_id": attemptID,
			"to":         to,
		}).Warn("transition channel full, dropping update")
	}

	o.appendTimeline(attemptID, tr)
	o.emitEvent(attemptID, tr)
}

func (o *orchestrator) appendTimeline(attemptID string, tr domain.CheckoutTransition) {
	if o.timeline == nil {
		return
	}
	reason := ""
	if tr.Err != nil {
		reason = tr.Err.Error()
	}
	event := domain.TimelineEvent{
		AttemptID: attemptID,
		OrderID:   tr.OrderID,
		From:      tr.From,
		To:        tr.To,
		Reason:    reason,
		Occurred:  tr.Occurred,
	}
	if err := o.timeline.Append(event); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"attempt_id": attemptID,
			"to":         tr.To,
		}).Warn("append timeline event failed")
	} else if o.metrics != nil {
		o.metrics.RecordTimelineEvent()
	}
}

func (o *orchestrator) emitEvent(attemptID string, tr domain.CheckoutTransition) {
	if o.outbox == nil {
		return
	}

	payload := map[string]interface{}{
		"attempt_id": attemptID,
		"from":       string(tr.From),
		"to":         string(tr.To),
		"ts":         tr.Occurred.Format(time.RFC3339Nano),
	}
	if tr.OrderID != "" {
		payload["order_id"] = tr.OrderID
	}
	if tr.Err != nil {
		payload["reason"] = tr.Err.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.WithError(err).WithField("attempt_id", attemptID).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "checkout_attempt",
		AggregateID:   attemptID,
		EventType:     "CheckoutStateChanged",
		Payload:       data,
	}
	if _, err := o.outbox.Enqueue(msg); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"attempt_id": attemptID,
			"to":         tr.To,
		}).Error("enqueue event failed")
	} else if o.metrics != nil {
		o.metrics.RecordOutboxEvent()
	}
}

// createOrder выполняет шаг CreatingOrder с ограничением по времени.
func (o *orchestrator) createOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	start := time.Now()
	defer o.observeStep(domain.CheckoutStepCreateOrder, start)

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()
	return o.orders.CreateOrder(stepCtx, draft)
}

func (o *orchestrator) loadScript(ctx context.Context) error {
	start := time.Now()
	defer o.observeStep(domain.CheckoutStepLoadGateway, start)

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()
	return o.script.Load(stepCtx)
}

func (o *orchestrator) createSession(ctx context.Context, orderID string) (domain.PaymentSession, error) {
	start := time.Now()
	defer o.observeStep(domain.CheckoutStepCreateSession, start)

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()
	return o.payments.CreatePaymentSession(stepCtx, orderID)
}

func (o *orchestrator) verifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	start := time.Now()
	defer o.observeStep(domain.CheckoutStepVerify, start)

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()
	return o.payments.VerifyPayment(stepCtx, confirmation)
}

func (o *orchestrator) reportFailure(ctx context.Context, orderID, reason string) {
	start := time.Now()
	defer o.observeStep(domain.CheckoutStepReportFailure, start)

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()
	if err := o.payments.ReportFailure(stepCtx, orderID, reason); err != nil {
		o.logger.WithError(err).WithField("order_id", orderID).Warn("failure report not delivered")
	}
}

func (o *orchestrator) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stepTimeout)
}

func (o *orchestrator) observeStep(step domain.CheckoutStep, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordStepDuration(string(step), time.Since(start))
	}
}

// publishCheckoutEvent публикует событие оформления в Kafka (если producer настроен)
func (o *orchestrator) publishCheckoutEvent(eventType kafka.EventType, attemptID, orderID string, metadata map[string]interface{}) {
	if o.kafkaProducer == nil {
		return // Kafka не настроен, пропускаем
	}

	event := kafka.NewCheckoutEvent(eventType, attemptID, orderID, metadata)
	if err := o.kafkaProducer.PublishEvent(kafka.TopicCheckoutEvents, attemptID, event); err != nil {
		// Логируем ошибку, но не прерываем оформление - Kafka опциональный
		o.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"attempt_id": attemptID,
		}).Warn("failed to publish checkout event to kafka")
	}
}

var _ Orchestrator = (*orchestrator)(nil)
