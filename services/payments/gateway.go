package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// SupportedMethods lists the canonical payment rails
var SupportedMethods = []string{"mtn_momo", "visa_card", "bank_transfer"}

var methodAliases = map[string]string{
	"momo":        "mtn_momo",
	"mtn":         "mtn_momo",
	"mtnmomo":     "mtn_momo",
	"card":        "visa_card",
	"visa":        "visa_card",
	"mastercard":  "visa_card",
	"flutterwave": "visa_card",
	"paystack":    "visa_card",
	"bank":        "bank_transfer",
	"transfer":    "bank_transfer",
}

// NormalizeMethod resolves a raw method string to its canonical form
func NormalizeMethod(raw string) (string, error) {
	val := strings.ToLower(strings.TrimSpace(raw))
	if val == "" {
		return "", ErrUnsupportedMethod
	}
	for _, m := range SupportedMethods {
		if val == m {
			return m, nil
		}
	}
	if canonical, ok := methodAliases[val]; ok {
		return canonical, nil
	}
	return "", ErrUnsupportedMethod
}

// Session is the result of creating a checkout session with the gateway
type Session struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkoutUrl"`
	Provider    string `json:"provider"`
	Method      string `json:"method"`
}

// CreateSession translates a payment intent into a checkout session.
// When Flutterwave credentials are configured it attempts a live session;
// any live failure falls back to a mock session instead of propagating.
func CreateSession(amount float64, currency, method string, userID uint, email, name string, metadata map[string]interface{}) (*Session, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	canonical, err := NormalizeMethod(method)
	if err != nil {
		return nil, err
	}

	reference := canonical + "-" + uuid.NewString()

	if config.AppConfig.FlwSecretKey != "" && config.AppConfig.FlwPublicKey != "" {
		session, err := createLiveSession(reference, amount, currency, canonical, userID, email, name, metadata)
		if err == nil {
			return session, nil
		}
		log.Printf("[PAYMENT-GATEWAY] Live session creation failed, falling back to mock: %v", err)
	}

	return mockSession(reference, canonical), nil
}

func createLiveSession(reference string, amount float64, currency, method string, userID uint, email, name string, metadata map[string]interface{}) (*Session, error) {
	if email == "" {
		email = "user@example.com"
	}

	paymentOptions := "card,mobilemoneyghana,banktransfer"
	switch method {
	case "mtn_momo":
		paymentOptions = "mobilemoneyghana"
	case "bank_transfer":
		paymentOptions = "banktransfer"
	}

	meta := map[string]interface{}{"userId": userID}
	for k, v := range metadata {
		meta[k] = v
	}

	client := resty.New().
		SetTimeout(time.Duration(config.AppConfig.GatewayTimeoutSeconds) * time.Second)

	resp, err := client.R().
		SetAuthToken(config.AppConfig.FlwSecretKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"tx_ref":          reference,
			"amount":          amount,
			"currency":        currency,
			"redirect_url":    checkoutReturnURL(reference),
			"payment_options": paymentOptions,
			"customer":        map[string]string{"email": email, "name": name},
			"meta":            meta,
		}).
		Post(config.AppConfig.FlwBaseURL + "/payments")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
	}

	var body struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %v", err)
	}
	if body.Data.Link == "" {
		return nil, fmt.Errorf("missing checkout link in gateway response")
	}

	return &Session{
		Reference:   reference,
		CheckoutURL: body.Data.Link,
		Provider:    "flutterwave",
		Method:      method,
	}, nil
}

// mockSession always succeeds and builds a local checkout URL
func mockSession(reference, method string) *Session {
	return &Session{
		Reference:   reference,
		CheckoutURL: checkoutReturnURL(reference),
		Provider:    "mock-gateway",
		Method:      method,
	}
}

func checkoutReturnURL(reference string) string {
	base := strings.TrimRight(config.AppConfig.ClientOrigin, "/")
	return base + "/checkout.html?ref=" + url.QueryEscape(reference)
}

// SignPayload computes the hex HMAC-SHA256 of the raw payload bytes with
// the shared webhook secret. The raw body bytes are the canonical signing
// input; the payload is never re-serialized before hashing.
func SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(config.AppConfig.WebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a header-supplied signature against the payload
func VerifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignPayload(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
