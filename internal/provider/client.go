package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Статусы ответа провайдера. Ядро зависит только от этого трехзначного
// перечисления; остальное содержимое ответа непрозрачно.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Result результат выполнения операции провайдером
type Result struct {
	Status    string                 `json:"status"`
	Reference string                 `json:"reference"`
	Raw       map[string]interface{} `json:"raw"`
}

// Gateway определяет интерфейс внешнего платежного провайдера
type Gateway interface {
	Execute(ctx context.Context, action string, payload map[string]interface{}) (*Result, error)
}

// Client HTTP-клиент платежного провайдера
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает новый клиент провайдера
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Execute выполняет операцию у провайдера. Вызывается строго вне открытой
// транзакции БД: задержка провайдера не должна держать транзакцию открытой.
func (c *Client) Execute(ctx context.Context, action string, payload map[string]interface{}) (*Result, error) {
	body, err := json.Marshal(map[string]interface{}{
		"action":  action,
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debugf("Calling provider: action=%s", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Provider call failed: %v", err)
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	switch result.Status {
	case StatusSuccess, StatusFailed, StatusPending:
	default:
		return nil, fmt.Errorf("provider returned unknown status: %s", result.Status)
	}

	c.logger.Infof("Provider responded: action=%s, status=%s, reference=%s",
		action, result.Status, result.Reference)

	return &result, nil
}
