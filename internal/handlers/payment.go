package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gstyle/storefront-payments/internal/currency"
	"github.com/gstyle/storefront-payments/internal/middleware"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/service"
	"github.com/oapi-codegen/runtime"
)

const (
	msgPaymentCancelled = "پرداخت توسط کاربر لغو شد."
	msgPaymentSucceeded = "پرداخت موفق بود. کد پیگیری: %s"
	msgVerifyFailed     = "خطا در تایید پرداخت: %s"
)

// Storefront result pages that callback redirects point at.
const (
	pathPaymentSuccess   = "/payment/success"
	pathPaymentCancelled = "/payment/cancelled"
	pathPaymentError     = "/payment/error"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type createPaymentRequest struct {
	Customer    *models.Customer `json:"customerInfo"`
	Description string           `json:"description"`
	CallbackURL string           `json:"callbackURL"`
	OrderID     string           `json:"orderId"`
	Amount      int64            `json:"amount"`
}

type createPaymentResponse struct {
	Authority  string `json:"authority"`
	PaymentURL string `json:"paymentUrl"`
	Success    bool   `json:"success"`
}

// looseString accepts a JSON string or number, since storefront clients send both.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type verifyPaymentRequest struct {
	Authority string      `json:"Authority"`
	Status    string      `json:"Status"`
	Amount    looseString `json:"amount"`
	OrderID   looseString `json:"orderId"`
}

type verifyPaymentResponse struct {
	RefID     string `json:"refId,omitempty"`
	InvoiceID string `json:"invoiceId,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      int    `json:"code,omitempty"`
	Success   bool   `json:"success"`
	Replayed  bool   `json:"replayed,omitempty"`
}

// CreatePayment handles POST /api/payment/zarinpal/create
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var body createPaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, service.ErrCodeValidation, msgInvalidBody)
		return
	}

	req := service.InitiateRequest{
		Customer:    body.Customer,
		OrderID:     body.OrderID,
		Description: body.Description,
		CallbackURL: body.CallbackURL,
		AmountToman: body.Amount,
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		req.UserID = id.UserID
	}

	result, err := h.payments.Initiate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPaymentResponse{
		Success:    true,
		Authority:  result.Authority,
		PaymentURL: result.PaymentURL,
	})
}

// VerifyPaymentRedirect handles GET /api/payment/zarinpal/verify-payment, the
// browser leg of the callback, and redirects to a storefront result page.
func (h *Handler) VerifyPaymentRedirect(w http.ResponseWriter, r *http.Request) {
	cb, err := bindCallbackQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrCodeValidation, msgInvalidBody)
		return
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		cb.UserID = id.UserID
	}

	// Nothing to reconcile; the shopper abandoned before an authority was issued.
	if cb.Authority == "" && cb.Status != service.CallbackStatusOK {
		h.redirect(w, r, pathPaymentCancelled, url.Values{"amount": nonEmpty(cb.Amount)})
		return
	}

	result, err := h.payments.HandleCallback(r.Context(), cb)
	if err != nil {
		svcErr := extractServiceError(err)
		if svcErr != nil && svcErr.Code == service.ErrCodeValidation {
			h.writeServiceError(w, err)
			return
		}

		message := msgInternalError
		if svcErr != nil {
			message = svcErr.Message
		}
		h.redirect(w, r, pathPaymentError, url.Values{
			"authority": {cb.Authority},
			"error":     {message},
			"amount":    nonEmpty(cb.Amount),
		})
		return
	}

	tx := result.Transaction
	amount := nonEmpty(redirectAmount(tx, cb.Amount))

	switch tx.Status {
	case models.TransactionStatusCompleted:
		h.redirect(w, r, pathPaymentSuccess, url.Values{
			"authority": {tx.Authority},
			"refId":     {result.RefID()},
			"amount":    amount,
		})
	case models.TransactionStatusCancelled:
		h.redirect(w, r, pathPaymentCancelled, url.Values{
			"authority": {tx.Authority},
			"amount":    amount,
		})
	default:
		h.redirect(w, r, pathPaymentError, url.Values{
			"authority": {tx.Authority},
			"error":     {failureMessage(tx)},
			"amount":    amount,
		})
	}
}

// VerifyPayment handles POST /api/payment/zarinpal/verify-payment
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var body verifyPaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, service.ErrCodeValidation, msgInvalidBody)
		return
	}

	cb := service.Callback{
		Authority: body.Authority,
		Status:    body.Status,
		Amount:    string(body.Amount),
		OrderID:   string(body.OrderID),
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		cb.UserID = id.UserID
	}

	result, err := h.payments.HandleCallback(r.Context(), cb)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	tx := result.Transaction
	switch tx.Status {
	case models.TransactionStatusCompleted:
		resp := verifyPaymentResponse{
			Success:  true,
			RefID:    result.RefID(),
			Message:  fmt.Sprintf(msgPaymentSucceeded, result.RefID()),
			Replayed: result.Replayed,
		}
		if result.Invoice != nil {
			resp.InvoiceID = result.Invoice.ID.String()
		}
		writeJSON(w, http.StatusOK, resp)
	case models.TransactionStatusCancelled:
		writeJSON(w, http.StatusBadRequest, verifyPaymentResponse{
			Error:    msgPaymentCancelled,
			Replayed: result.Replayed,
		})
	default:
		resp := verifyPaymentResponse{
			Error:    fmt.Sprintf(msgVerifyFailed, failureMessage(tx)),
			Replayed: result.Replayed,
		}
		if tx.FailureCode != nil {
			resp.Code = *tx.FailureCode
		}
		writeJSON(w, http.StatusBadRequest, resp)
	}
}

func bindCallbackQuery(q url.Values) (service.Callback, error) {
	var cb service.Callback
	params := []struct {
		dest *string
		name string
	}{
		{&cb.Authority, "Authority"},
		{&cb.Status, "Status"},
		{&cb.Amount, "amount"},
		{&cb.OrderID, "orderId"},
	}
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			return service.Callback{}, fmt.Errorf("invalid query parameter %s: %w", p.name, err)
		}
	}
	return cb, nil
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	for k, v := range query {
		if len(v) == 0 || v[0] == "" {
			delete(query, k)
		}
	}

	target := h.appURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// redirectAmount is the stored amount in Toman, or the echoed value when none is stored.
func redirectAmount(tx *models.Transaction, echoed string) string {
	if tx != nil && tx.AmountRial > 0 {
		return strconv.FormatInt(currency.RialToToman(tx.AmountRial), 10)
	}
	return echoed
}

func failureMessage(tx *models.Transaction) string {
	if tx.FailureMessage != nil && *tx.FailureMessage != "" {
		return *tx.FailureMessage
	}
	return msgInternalError
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
