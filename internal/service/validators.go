package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gstyle/storefront-payments/internal/models"
)

// Persian messages surfaced to shoppers on validation failures.
const (
	msgMissingFields    = "فیلدهای ضروری ارسال نشده‌اند"
	msgMissingParams    = "پارامترهای ضروری ارسال نشده‌اند"
	msgInvalidAmount    = "مبلغ نامعتبر است"
	msgInvalidCallback  = "آدرس بازگشت نامعتبر است"
	msgCustomerRequired = "فیلدهای زیر الزامی هستند: %s"
)

// ValidateAmount checks if amount is valid (positive)
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}

	return nil
}

// ValidateCallbackURL requires an absolute http(s) URL
func ValidateCallbackURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid callback url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid callback url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid callback url: missing host")
	}

	return nil
}

// MissingCustomerFields lists the customer fields that are empty or blank,
// in form order. All five are required whenever customer info is sent.
func MissingCustomerFields(c *models.Customer) []string {
	if c == nil {
		return nil
	}

	fields := []struct {
		name  string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"phone", c.Phone},
		{"email", c.Email},
		{"address", c.Address},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func validateInitiate(req InitiateRequest) error {
	if req.AmountToman == 0 || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.CallbackURL) == "" {
		return validationError(msgMissingFields)
	}
	if err := ValidateAmount(req.AmountToman); err != nil {
		return &ServiceError{Code: ErrCodeValidation, Message: msgInvalidAmount, Err: err}
	}
	if err := ValidateCallbackURL(req.CallbackURL); err != nil {
		return &ServiceError{Code: ErrCodeValidation, Message: msgInvalidCallback, Err: err}
	}
	if missing := MissingCustomerFields(req.Customer); len(missing) > 0 {
		return validationError(fmt.Sprintf(msgCustomerRequired, strings.Join(missing, ", ")))
	}
	return nil
}
