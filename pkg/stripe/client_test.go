package stripe

import (
	"context"
	"testing"

	"github.com/ducoin/boucherie-backend/pkg/config"
)

func TestNewClientValidatesKeyAgainstEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
	}{
		{"test key in test env", config.StripeConfig{APIKey: "sk_test_abc", Env: "test"}, false},
		{"restricted test key", config.StripeConfig{APIKey: "rk_test_abc", Env: "test"}, false},
		{"live key in live env", config.StripeConfig{APIKey: "sk_live_abc", Env: "live"}, false},
		{"env defaults to test", config.StripeConfig{APIKey: "sk_test_abc"}, false},
		{"live key in test env", config.StripeConfig{APIKey: "sk_live_abc", Env: "test"}, true},
		{"test key in live env", config.StripeConfig{APIKey: "sk_test_abc", Env: "live"}, true},
		{"unknown env", config.StripeConfig{APIKey: "sk_test_abc", Env: "staging"}, true},
		{"missing key", config.StripeConfig{Env: "test"}, true},
	}

	for _, tt := range tests {
		_, err := NewClient(context.Background(), tt.cfg, nil)
		if tt.wantErr && err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestClientCurrencyFallback(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc", Currency: "EUR"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Currency() != "eur" {
		t.Fatalf("expected lowered currency, got %q", client.Currency())
	}

	var nilClient *Client
	if nilClient.Currency() != "eur" {
		t.Fatal("expected eur fallback on nil client")
	}
}

func TestCreatePaymentIntentRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.CreatePaymentIntent(context.Background(), 0, "eur", nil); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if _, err := client.RetrievePaymentIntent(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank intent id")
	}
}
