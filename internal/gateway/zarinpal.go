package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gstyle/storefront-payments/internal/config"
)

const (
	productionHost = "https://payment.zarinpal.com"
	sandboxHost    = "https://sandbox.zarinpal.com"

	requestPath  = "/pg/v4/payment/request.json"
	verifyPath   = "/pg/v4/payment/verify.json"
	startPayPath = "/pg/StartPay/"

	maxResponseBytes = 1 << 20
)

// Client is the HTTP adapter for the ZarinPal v4 REST API
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	merchantID string
	host       string
}

// NewClient creates a Client for the sandbox or production host selected by cfg.
func NewClient(cfg *config.GatewayConfig, logger *slog.Logger) *Client {
	host := sandboxHost
	if cfg.Mode == config.ModeProduction {
		host = productionHost
	}
	if cfg.BaseURL != "" {
		host = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		merchantID: cfg.MerchantID,
		host:       host,
	}
}

// PaymentURL returns the hosted payment page for an authority.
func (c *Client) PaymentURL(authority string) string {
	return c.host + startPayPath + authority
}

type requestBody struct {
	Metadata    map[string]string `json:"metadata,omitempty"`
	MerchantID  string            `json:"merchant_id"`
	Description string            `json:"description"`
	CallbackURL string            `json:"callback_url"`
	Amount      int64             `json:"amount"`
}

type verifyBody struct {
	MerchantID string `json:"merchant_id"`
	Authority  string `json:"authority"`
	Amount     int64  `json:"amount"`
}

// envelope is the outer v4 response. Data is an object on success and an
// empty array on failure; Errors is the reverse.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type statusData struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type requestData struct {
	Authority string `json:"authority"`
	statusData
}

type verifyData struct {
	CardPAN string `json:"card_pan"`
	RefID   refID  `json:"ref_id"`
	statusData
	Fee int64 `json:"fee"`
}

// refID is numeric in v4 responses, but some gateways and proxies send it quoted.
type refID string

func (r *refID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = refID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = refID(n.String())
	return nil
}

// CreatePaymentRequest registers a payment with ZarinPal and returns its authority.
func (c *Client) CreatePaymentRequest(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body := requestBody{
		MerchantID:  c.merchantID,
		Amount:      req.AmountRial,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}

	env, err := c.post(ctx, "request", requestPath, body)
	if err != nil {
		return nil, err
	}

	var data requestData
	status, err := decodeStatus(env, &data)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}

	if status.Code != CodeSuccess || data.Authority == "" {
		c.logger.Warn("zarinpal payment request rejected",
			"code", status.Code,
			"message", status.Message,
		)
		return nil, &RejectionError{Code: status.Code, Message: MessageFor(status.Code)}
	}

	return &PaymentSession{
		Authority:  data.Authority,
		PaymentURL: c.PaymentURL(data.Authority),
	}, nil
}

// VerifyPayment confirms a payment server-to-server. The error return is
// reserved for transport failures; provider refusals come back as Rejected.
func (c *Client) VerifyPayment(ctx context.Context, amountRial int64, authority string) (VerifyResult, error) {
	if amountRial <= 0 || authority == "" {
		return nil, fmt.Errorf("%w: amount and authority are required", ErrInvalidRequest)
	}

	env, err := c.post(ctx, "verify", verifyPath, verifyBody{
		MerchantID: c.merchantID,
		Amount:     amountRial,
		Authority:  authority,
	})
	if err != nil {
		return nil, err
	}

	var data verifyData
	status, err := decodeStatus(env, &data)
	if err != nil {
		return nil, &TransportError{Op: "verify", Err: err}
	}

	switch status.Code {
	case CodeSuccess:
		if data.RefID == "" {
			return nil, &TransportError{Op: "verify", Err: errors.New("success response without ref_id")}
		}
		return Verified{RefID: string(data.RefID), CardPAN: data.CardPAN, Fee: data.Fee}, nil
	case CodeAlreadyVerified:
		return AlreadyVerified{RefID: string(data.RefID)}, nil
	default:
		return Rejected{Code: status.Code, Message: MessageFor(status.Code)}, nil
	}
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (*envelope, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // body already consumed
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("invalid response body (status %d): %w", resp.StatusCode, err)}
	}

	c.logger.Debug("zarinpal response", "op", op, "http_status", resp.StatusCode)

	return &env, nil
}

// decodeStatus fills data from the success branch when present and returns
// the effective code from whichever branch carries one.
func decodeStatus[T interface{ status() statusData }](env *envelope, data T) (statusData, error) {
	if isObject(env.Data) {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return statusData{}, fmt.Errorf("invalid data object: %w", err)
		}
		if st := data.status(); st.Code != 0 {
			return st, nil
		}
	}

	if isObject(env.Errors) {
		var st statusData
		if err := json.Unmarshal(env.Errors, &st); err != nil {
			return statusData{}, fmt.Errorf("invalid errors object: %w", err)
		}
		if st.Code != 0 {
			return st, nil
		}
	}

	return statusData{}, errors.New("response carries no status code")
}

func (d *requestData) status() statusData { return d.statusData }
func (d *verifyData) status() statusData  { return d.statusData }

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
