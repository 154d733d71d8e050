package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client реализует OrderService и PaymentGateway поверх REST API бэкенда.
// Все ответы приходят в конверте {success, message, data}; message сервера
// переносится в TransportError дословно.
type Client struct {
	baseURL  string
	httpc    *http.Client
	identity domain.IdentityProvider
	logger   *log.Entry
}

// NewClient создаёт HTTP-клиент бэкенда. httpc может быть nil.
func NewClient(baseURL string, identity domain.IdentityProvider, httpc *http.Client, logger *log.Entry) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultRequestTimeout}
	}
	if logger == nil {
		logger = log.New().WithField("component", "gateway-client")
	}
	return &Client{
		baseURL:  baseURL,
		httpc:    httpc,
		identity: identity,
		logger:   logger,
	}
}

// envelope — стандартный конверт ответа бэкенда.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// orderPayload — представление заказа в ответах бэкенда.
type orderPayload struct {
	ID               string                  `json:"_id"`
	Items            []domain.OrderDraftLine `json:"items"`
	DeliveryLocation string                  `json:"deliveryLocation"`
	PaymentMethod    domain.PaymentMethod    `json:"paymentMethod"`
	TotalAmount      float64                 `json:"totalAmount"`
	Currency         string                  `json:"currency"`
	PaymentStatus    domain.PaymentStatus    `json:"paymentStatus"`
	OrderStatus      domain.OrderStatus      `json:"orderStatus"`
	CreatedAt        time.Time               `json:"createdAt"`
}

func (p orderPayload) toDomain() domain.Order {
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}
	return domain.Order{
		ID:               p.ID,
		Items:            p.Items,
		DeliveryLocation: p.DeliveryLocation,
		PaymentMethod:    p.PaymentMethod,
		Amount:           p.TotalAmount,
		Currency:         currency,
		PaymentStatus:    p.PaymentStatus,
		OrderStatus:      p.OrderStatus,
		CreatedAt:        p.CreatedAt,
	}
}

// CreateOrder отправляет черновик заказа; цены считает сервер.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, string(domain.CheckoutStepCreateOrder), http.MethodPost, "/orders", draft, &payload); err != nil {
		return domain.Order{}, err
	}
	return payload.toDomain(), nil
}

// ListMyOrders возвращает заказы текущего клиента.
func (c *Client) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	var payloads []orderPayload
	if err := c.do(ctx, "list_orders", http.MethodGet, "/orders", nil, &payloads); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(payloads))
	for _, p := range payloads {
		orders = append(orders, p.toDomain())
	}
	return orders, nil
}

// sessionPayload — представление платёжной сессии в ответе бэкенда.
type sessionPayload struct {
	RazorpayOrderID string  `json:"razorpayOrderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"keyId"`
}

// CreatePaymentSession запрашивает платёжную сессию по идентификатору заказа.
func (c *Client) CreatePaymentSession(ctx context.Context, orderID string) (domain.PaymentSession, error) {
	if orderID == "" {
		return domain.PaymentSession{}, domain.ErrOrderIDRequired
	}

	body := map[string]string{"orderId": orderID}
	var payload sessionPayload
	if err := c.do(ctx, string(domain.CheckoutStepCreateSession), http.MethodPost, "/payments/create", body, &payload); err != nil {
		return domain.PaymentSession{}, err
	}

	return domain.PaymentSession{
		SessionID:  payload.RazorpayOrderID,
		OrderID:    orderID,
		Amount:     payload.Amount,
		Currency:   payload.Currency,
		GatewayKey: payload.KeyID,
	}, nil
}

// VerifyPayment отправляет подписанный ответ шлюза на серверную верификацию.
func (c *Client) VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	return c.do(ctx, string(domain.CheckoutStepVerify), http.MethodPost, "/payments/verify", confirmation, nil)
}

// ReportFailure передаёт на сервер причину неудачи оплаты.
func (c *Client) ReportFailure(ctx context.Context, orderID, reason string) error {
	body := map[string]interface{}{
		"orderId": orderID,
		"error":   map[string]string{"description": reason},
	}
	return c.do(ctx, string(domain.CheckoutStepReportFailure), http.MethodPost, "/payments/failure", body, nil)
}

// do выполняет запрос, подставляет bearer-токен и разворачивает конверт ответа.
func (c *Client) do(ctx context.Context, step, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", step, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", step, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.identity.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"step": step,
			"path": path,
		}).Warn("request failed")
		return &domain.TransportError{Step: step, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Step: step, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		// Тело вне конверта не фатально: сервер мог ответить без обёртки.
		if err := json.Unmarshal(raw, &env); err != nil {
			env = envelope{}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.WithFields(log.Fields{
			"step":   step,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("server rejected request")
		return &domain.TransportError{
			Step:          step,
			ServerMessage: env.Message,
			StatusCode:    resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}

	data := env.Data
	if data == nil {
		data = raw
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.TransportError{Step: step, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

var (
	_ domain.OrderService   = (*Client)(nil)
	_ domain.PaymentGateway = (*Client)(nil)
)
