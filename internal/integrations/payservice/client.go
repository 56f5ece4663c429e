package payservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с платёжным процессором через PayService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PayService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreatePaymentIntent создает платёжное намерение на полную сумму с комиссией площадки
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	url := fmt.Sprintf("%s/internal/payments/intents", c.baseURL)

	var intent PaymentIntent
	if err := c.postJSON(ctx, url, req, &intent); err != nil {
		return nil, err
	}

	c.log.Info("Created payment intent ref=%s amount_cents=%d", intent.Ref, req.AmountCents)
	return &intent, nil
}

// RefundAndReverseTransfer выполняет возврат плательщику и реверс трансфера
// менеджеру одним вызовом процессора
func (c *Client) RefundAndReverseTransfer(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	url := fmt.Sprintf("%s/internal/payments/refunds", c.baseURL)

	var result RefundResult
	if err := c.postJSON(ctx, url, req, &result); err != nil {
		return nil, err
	}

	c.log.Info("Refund issued refund_id=%s reversal_id=%s amount_cents=%d",
		result.RefundID, result.TransferReversalID, req.AmountCents)
	return &result, nil
}

// ChargeSavedMethod списывает сумму с сохранённого платёжного метода плательщика
// Используется для взыскания штрафов за просрочку хранения
func (c *Client) ChargeSavedMethod(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	url := fmt.Sprintf("%s/internal/payments/charges", c.baseURL)

	var result ChargeResult
	if err := c.postJSON(ctx, url, req, &result); err != nil {
		return nil, err
	}

	c.log.Info("Charged saved method charge_ref=%s amount_cents=%d", result.ChargeRef, req.AmountCents)
	return &result, nil
}

// GetAccountStatus получает статус подключённого аккаунта менеджера
func (c *Client) GetAccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	url := fmt.Sprintf("%s/internal/payments/accounts/%s", c.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var status AccountStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &status, nil
}

// postJSON выполняет POST запрос и декодирует JSON ответ
func (c *Client) postJSON(ctx context.Context, url string, payload interface{}, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrProcessor, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		var errResp ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil {
			if errResp.Code == "no_saved_method" {
				return fmt.Errorf("%w: %s", ErrNoSavedMethod, errResp.Message)
			}
			return fmt.Errorf("%w: %s: %s", ErrProcessor, errResp.Code, errResp.Message)
		}
		return fmt.Errorf("%w: status code %d", ErrProcessor, resp.StatusCode)
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrProcessor, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
