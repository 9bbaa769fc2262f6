package payments

import (
	"strings"
	"testing"

	"lms/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig() {
	config.AppConfig = &config.Config{
		WebhookSecret:         "test-secret",
		DefaultCurrency:       "USD",
		ClientOrigin:          "http://localhost:3000",
		GatewayTimeoutSeconds: 1,
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"mtn_momo", "mtn_momo"},
		{"momo", "mtn_momo"},
		{"mtn", "mtn_momo"},
		{"mtnmomo", "mtn_momo"},
		{"MoMo", "mtn_momo"},
		{" mtn ", "mtn_momo"},
		{"card", "visa_card"},
		{"visa", "visa_card"},
		{"mastercard", "visa_card"},
		{"flutterwave", "visa_card"},
		{"paystack", "visa_card"},
		{"visa_card", "visa_card"},
		{"bank", "bank_transfer"},
		{"transfer", "bank_transfer"},
		{"bank_transfer", "bank_transfer"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeMethod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMethodUnsupported(t *testing.T) {
	for _, input := range []string{"", "bitcoin", "cash", "m-pesa"} {
		_, err := NormalizeMethod(input)
		assert.ErrorIs(t, err, ErrUnsupportedMethod, "input %q", input)
	}
}

func TestCreateSessionMock(t *testing.T) {
	setTestConfig()

	session, err := CreateSession(20, "USD", "card", 7, "student@example.com", "Student", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.Reference, "visa_card-"), "reference embeds the canonical method: %s", session.Reference)
	assert.Equal(t, "mock-gateway", session.Provider)
	assert.Equal(t, "visa_card", session.Method)
	assert.Contains(t, session.CheckoutURL, "http://localhost:3000/checkout.html?ref=")
	assert.Contains(t, session.CheckoutURL, session.Reference)
}

func TestCreateSessionUniqueReferences(t *testing.T) {
	setTestConfig()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := CreateSession(10, "USD", "momo", 1, "", "", nil)
		require.NoError(t, err)
		assert.False(t, seen[session.Reference], "duplicate reference %s", session.Reference)
		seen[session.Reference] = true
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	setTestConfig()

	_, err := CreateSession(0, "USD", "card", 1, "", "", nil)
	assert.Error(t, err)

	_, err = CreateSession(-5, "USD", "card", 1, "", "", nil)
	assert.Error(t, err)

	_, err = CreateSession(10, "USD", "bitcoin", 1, "", "", nil)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSignAndVerifyPayload(t *testing.T) {
	setTestConfig()

	payload := []byte(`{"reference":"visa_card-abc","status":"success"}`)
	signature := SignPayload(payload)

	assert.True(t, VerifySignature(payload, signature))
	assert.False(t, VerifySignature(payload, "deadbeef"))
	assert.False(t, VerifySignature(payload, ""))

	// Any byte change invalidates the signature
	tampered := []byte(`{"reference":"visa_card-abc","status":"failed"}`)
	assert.False(t, VerifySignature(tampered, signature))
}
