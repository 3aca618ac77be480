package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/pulsegym/gym_membership/configs"
)

const defaultStripeBaseURL = "https://api.stripe.com"

var httpClient = &http.Client{Timeout: 15 * time.Second}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func apiBase() string {
	if base := config.Config("STRIPE_API_BASE_URL"); base != "" {
		return base
	}
	return defaultStripeBaseURL
}

func doRequest(method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, apiBase()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+config.Config("STRIPE_SECRET_KEY"))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway unreachable: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("payment gateway error: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("payment gateway error: status %d", resp.StatusCode)
	}

	return json.Unmarshal(respBody, out)
}

// CreateCustomer registers a gateway customer. Callers cache the id on
// the user record and must not create a second handle for the same user.
func CreateCustomer(name, email string) (*Customer, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)

	var customer Customer
	if err := doRequest(http.MethodPost, "/v1/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreatePaymentIntent opens a payment attempt for the amount, tagged
// with the booking reference so gateway dashboards can be matched back.
func CreatePaymentIntent(amount float64, currency, customerID, bookingReference string) (*PaymentIntent, error) {
	cents := int64(math.Round(amount * 100))

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(cents, 10))
	form.Set("currency", currency)
	form.Set("customer", customerID)
	form.Set("metadata[booking_reference]", bookingReference)

	var intent PaymentIntent
	if err := doRequest(http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetPaymentIntent re-fetches an intent, used to hand the client secret
// back on retried intent requests instead of opening a second intent.
func GetPaymentIntent(intentID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := doRequest(http.MethodGet, "/v1/payment_intents/"+intentID, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// RefundPaymentIntent issues a full refund for a captured intent.
func RefundPaymentIntent(intentID string) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)

	var refund Refund
	if err := doRequest(http.MethodPost, "/v1/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// WebhookEvent is the verified notification payload from the gateway.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// ComputeWebhookSignature signs timestamp.payload with HMAC-SHA256.
func ComputeWebhookSignature(timestamp string, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks a "t=<ts>,v1=<sig>" header against the
// raw request body. The body must be the unaltered bytes the gateway
// sent; any re-encoding before this check breaks the signature.
func VerifyWebhookSignature(payload []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}

	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		if ts, ok := strings.CutPrefix(part, "t="); ok {
			timestamp = ts
		}
		if sig, ok := strings.CutPrefix(part, "v1="); ok {
			signature = sig
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	expected := ComputeWebhookSignature(timestamp, payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// ParseWebhookEvent decodes a verified notification body.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("cannot parse webhook event: %v", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("webhook event missing id or type")
	}
	return &event, nil
}
