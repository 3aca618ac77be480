package payments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreatePaymentIntent(t *testing.T) {
	var gotPath, gotAuth, gotAmount, gotCurrency, gotCustomer, gotReference string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAmount = r.PostForm.Get("amount")
		gotCurrency = r.PostForm.Get("currency")
		gotCustomer = r.PostForm.Get("customer")
		gotReference = r.PostForm.Get("metadata[booking_reference]")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_test_123",
			"client_secret": "pi_test_123_secret",
			"status":        "requires_payment_method",
			"amount":        6750,
		})
	}))
	defer server.Close()

	t.Setenv("STRIPE_API_BASE_URL", server.URL)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	intent, err := CreatePaymentIntent(67.50, "usd", "cus_test_1", "GYM-4821")

	assert.NoError(t, err)
	assert.Equal(t, "pi_test_123", intent.ID)
	assert.Equal(t, "pi_test_123_secret", intent.ClientSecret)
	assert.Equal(t, int64(6750), intent.Amount)
	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.Equal(t, "6750", gotAmount)
	assert.Equal(t, "usd", gotCurrency)
	assert.Equal(t, "cus_test_1", gotCustomer)
	assert.Equal(t, "GYM-4821", gotReference)
}

func TestCreatePaymentIntentGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Your card was declined."},
		})
	}))
	defer server.Close()

	t.Setenv("STRIPE_API_BASE_URL", server.URL)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	_, err := CreatePaymentIntent(29.99, "usd", "cus_test_1", "GYM-1000")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestRefundPaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "pi_test_123", r.PostForm.Get("payment_intent"))

		json.NewEncoder(w).Encode(map[string]string{"id": "re_test_1", "status": "succeeded"})
	}))
	defer server.Close()

	t.Setenv("STRIPE_API_BASE_URL", server.URL)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	refund, err := RefundPaymentIntent("pi_test_123")

	assert.NoError(t, err)
	assert.Equal(t, "re_test_1", refund.ID)
	assert.Equal(t, "succeeded", refund.Status)
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	signature := ComputeWebhookSignature(timestamp, payload, secret)
	header := fmt.Sprintf("t=%s,v1=%s", timestamp, signature)

	assert.True(t, VerifyWebhookSignature(payload, header, secret))
}

func TestVerifyWebhookSignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	timestamp := "1756600000"

	signature := ComputeWebhookSignature(timestamp, payload, "whsec_other")
	header := fmt.Sprintf("t=%s,v1=%s", timestamp, signature)

	assert.False(t, VerifyWebhookSignature(payload, header, "whsec_test"))
}

func TestVerifyWebhookSignatureRejectsTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	timestamp := "1756600000"

	signature := ComputeWebhookSignature(timestamp, []byte(`{"id":"evt_1"}`), secret)
	header := fmt.Sprintf("t=%s,v1=%s", timestamp, signature)

	assert.False(t, VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), header, secret))
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	assert.False(t, VerifyWebhookSignature(payload, "", "whsec_test"))
	assert.False(t, VerifyWebhookSignature(payload, "v1=deadbeef", "whsec_test"))
	assert.False(t, VerifyWebhookSignature(payload, "t=1756600000", "whsec_test"))
	assert.False(t, VerifyWebhookSignature(payload, "garbage", "whsec_test"))
}

func TestParseWebhookEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_test_123", "status": "succeeded"}}
	}`)

	event, err := ParseWebhookEvent(payload)

	assert.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "pi_test_123", event.Data.Object.ID)
	assert.Equal(t, "succeeded", event.Data.Object.Status)
}

func TestParseWebhookEventRejectsIncomplete(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{"id":"evt_1"}`))
	assert.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`not json`))
	assert.Error(t, err)
}
