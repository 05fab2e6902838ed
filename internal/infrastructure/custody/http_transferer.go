package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HTTPTransferer sends payout instructions to a custody service.
type HTTPTransferer struct {
	url    string
	token  string
	client *http.Client
	newID  func() string
}

// HTTPTransfererConfig configures an HTTPTransferer.
type HTTPTransfererConfig struct {
	URL     string
	Token   string // Sent as a bearer token when set
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPTransferer creates a new HTTPTransferer.
func NewHTTPTransferer(cfg HTTPTransfererConfig) *HTTPTransferer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPTransferer{
		url:    cfg.URL,
		token:  strings.TrimSpace(cfg.Token),
		client: cfg.Client,
		newID:  func() string { return uuid.NewString() },
	}
}

type payoutInstruction struct {
	InstructionID string          `json:"instruction_id"`
	To            string          `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
}

// Transfer posts one payout instruction. Any non-2xx answer fails the transfer.
// payoutID is the instruction id and the Idempotency-Key of the request, so
// custody can acknowledge a resent instruction without paying twice. An
// empty payoutID gets a fresh one.
func (t *HTTPTransferer) Transfer(ctx context.Context, payoutID, to string, amount decimal.Decimal) error {
	if payoutID == "" {
		payoutID = t.newID()
	}

	instruction := payoutInstruction{
		InstructionID: payoutID,
		To:            to,
		Amount:        amount,
	}

	body, err := json.Marshal(instruction)
	if err != nil {
		return fmt.Errorf("encode payout: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", instruction.InstructionID)
	req.Header.Set("X-Request-ID", t.newID())
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send payout %s: %w", instruction.InstructionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("payout %s rejected: status %d: %s", instruction.InstructionID, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
