package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/simushop/internal/installment"
)

const (
	statusApproved = "APPROVED"
	statusDeclined = "DECLINED"
)

// Client инкапсулирует HTTP-взаимодействие с внешним платёжным шлюзом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxWait    time.Duration
}

type authorizeRequest struct {
	Provider   string `json:"provider"`
	Amount     int64  `json:"amount"`
	CardNumber string `json:"cardNumber,omitempty"`
	PlanID     string `json:"planId,omitempty"`
}

// AuthorizeResponse описывает ответ платёжного шлюза.
type AuthorizeResponse struct {
	Status         string  `json:"status"`
	Reason         string  `json:"reason,omitempty"`
	DurationMonths int     `json:"durationMonths,omitempty"`
	InterestRate   float64 `json:"interestRate,omitempty"`
	TotalAmount    int64   `json:"totalAmount,omitempty"`
}

// NewClient создаёт HTTP-клиент для обращения к платёжному шлюзу по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		maxWait: 5 * time.Second,
	}
}

// Authorize отправляет платёж в шлюз. Ответ 429 повторяется один раз после паузы из Retry-After.
func (c *Client) Authorize(ctx context.Context, req Request) (Result, error) {
	if req.Decline {
		return Declined("payment cancelled"), nil
	}

	resp, retryAfter, err := c.authorize(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if resp == nil {
		if retryAfter > c.maxWait {
			retryAfter = c.maxWait
		}
		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}

		resp, _, err = c.authorize(ctx, req)
		if err != nil {
			return Result{}, err
		}
		if resp == nil {
			return Result{}, fmt.Errorf("payment gateway is rate limiting requests")
		}
	}

	switch resp.Status {
	case statusApproved:
		res := Result{Success: true, TotalAmount: resp.TotalAmount}
		if resp.DurationMonths > 0 {
			res.Terms = &installment.Terms{DurationMonths: resp.DurationMonths, InterestRate: resp.InterestRate}
		}
		return res, nil
	case statusDeclined:
		return Declined(resp.Reason), nil
	default:
		return Result{}, fmt.Errorf("unexpected payment status: %q", resp.Status)
	}
}

func (c *Client) authorize(ctx context.Context, req Request) (*AuthorizeResponse, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return nil, 0, fmt.Errorf("payment client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(authorizeRequest{
		Provider:   string(req.Provider),
		Amount:     req.Amount,
		CardNumber: req.CardNumber,
		PlanID:     req.PlanID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/payments", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return nil, retryAfter, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result AuthorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	return &result, 0, nil
}
