// internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/firdavsdev07/bot/internal/schedule"
)

// Client — клиент платежного бэкенда. Расчетное состояние договоров
// принадлежит бэкенду; мы его только читаем и отправляем намерения.
// Автоматических повторов нет: неудачная отправка возвращается
// пользователю как ошибка с возможностью повторить вручную.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestError — ошибка обращения к бэкенду: сетевая или HTTP-статус.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("бэкенд: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("бэкенд: %s: статус %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ContractSnapshot — срез состояния договора: условия рассрочки и все
// записи платежей. Единственный источник правды для построения графика.
type ContractSnapshot struct {
	ContractID    string                   `json:"contractId"`
	CustomerID    string                   `json:"customerId"`
	ProductName   string                   `json:"productName"`
	Terms         schedule.ContractTerms   `json:"terms"`
	Payments      []schedule.PaymentRecord `json:"payments"`
	TotalDebt     float64                  `json:"totalDebt"`
	TotalPaid     float64                  `json:"totalPaid"`
	RemainingDebt float64                  `json:"remainingDebt"`
}

// Customer — строка списка клиентов.
type Customer struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	DelayDays   int    `json:"delayDays,omitempty"`
}

// CustomerDetails — карточка клиента с итогами по всем договорам.
type CustomerDetails struct {
	ID            string  `json:"id"`
	FullName      string  `json:"fullName"`
	PhoneNumber   string  `json:"phoneNumber"`
	Address       string  `json:"address"`
	TotalDebt     float64 `json:"totalDebt"`
	TotalPaid     float64 `json:"totalPaid"`
	RemainingDebt float64 `json:"remainingDebt"`
	DelayDays     int     `json:"delayDays,omitempty"`
}

// Manager — сотрудник, допущенный к мини-приложению.
type Manager struct {
	ID         string `json:"id"`
	TelegramID int64  `json:"telegramId"`
	FirstName  string `json:"firstname"`
	LastName   string `json:"lastname"`
}

// MonthlyPaymentRequest — намерение оплатить ежемесячный взнос.
// Amount — единая расчетная валюта (доллар), конвертация из сумов
// выполняется до отправки. IdempotencyKey защищает от двойной подачи.
type MonthlyPaymentRequest struct {
	ContractID     string  `json:"contractId"`
	TargetMonth    int     `json:"targetMonth"`
	Amount         float64 `json:"amount"`
	Notes          string  `json:"notes,omitempty"`
	IdempotencyKey string  `json:"-"`
}

// PayAllRequest — намерение закрыть весь остаток долга.
type PayAllRequest struct {
	ContractID     string  `json:"contractId"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"-"`
}

// PayRemainingRequest — гашение недоплаты по конкретной записи платежа.
// Адресуется по id записи, а не по позиции месяца.
type PayRemainingRequest struct {
	PaymentID      string  `json:"paymentId"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"-"`
}

func (c *Client) do(ctx context.Context, method, path, idemKey string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Бэкенд кладет человекочитаемое сообщение в поле message.
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = string(raw)
		}
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RequestError{Op: op, Err: err}
		}
	}
	return nil
}

// Contract возвращает текущее состояние договора.
func (c *Client) Contract(ctx context.Context, id string) (*ContractSnapshot, error) {
	var snap ContractSnapshot
	if err := c.do(ctx, http.MethodGet, "/contracts/"+id, "", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Customers возвращает всех клиентов менеджера.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var list []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Customer возвращает карточку клиента.
func (c *Client) Customer(ctx context.Context, id string) (*CustomerDetails, error) {
	var det CustomerDetails
	if err := c.do(ctx, http.MethodGet, "/customers/"+id, "", nil, &det); err != nil {
		return nil, err
	}
	return &det, nil
}

// CustomerContracts возвращает договоры клиента со всеми платежами.
func (c *Client) CustomerContracts(ctx context.Context, customerID string) ([]ContractSnapshot, error) {
	var list []ContractSnapshot
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID+"/contracts", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ActiveContracts возвращает незакрытые договоры со всеми платежами.
func (c *Client) ActiveContracts(ctx context.Context) ([]ContractSnapshot, error) {
	var list []ContractSnapshot
	if err := c.do(ctx, http.MethodGet, "/contracts/active", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Debtors возвращает договоры с просрочкой.
func (c *Client) Debtors(ctx context.Context) ([]ContractSnapshot, error) {
	var list []ContractSnapshot
	if err := c.do(ctx, http.MethodGet, "/contracts/debtors", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ManagerByTelegramID ищет сотрудника в реестре бэкенда.
func (c *Client) ManagerByTelegramID(ctx context.Context, telegramID int64) (*Manager, error) {
	var m Manager
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/managers/by-telegram/%d", telegramID), "", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PayMonthly создает PENDING-запись ежемесячного платежа.
func (c *Client) PayMonthly(ctx context.Context, req MonthlyPaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/monthly", req.IdempotencyKey, req, nil)
}

// PayAll создает PENDING-запись на весь остаток долга.
func (c *Client) PayAll(ctx context.Context, req PayAllRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/pay-all", req.IdempotencyKey, req, nil)
}

// PayRemaining гасит недоплату по конкретной записи.
func (c *Client) PayRemaining(ctx context.Context, req PayRemainingRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/pay-remaining", req.IdempotencyKey, req, nil)
}
