package services

import (
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGatewayService_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *GatewayConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: &GatewayConfig{
				ServerKey:  "test-server-key",
				ClientKey:  "test-client-key",
				MerchantID: "test-merchant-id",
			},
			wantErr: false,
		},
		{
			name: "missing server key",
			config: &GatewayConfig{
				ClientKey:  "test-client-key",
				MerchantID: "test-merchant-id",
			},
			wantErr: true,
		},
		{
			name: "missing client key",
			config: &GatewayConfig{
				ServerKey:  "test-server-key",
				MerchantID: "test-merchant-id",
			},
			wantErr: true,
		},
		{
			name: "missing merchant id",
			config: &GatewayConfig{
				ServerKey: "test-server-key",
				ClientKey: "test-client-key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := &GatewayService{config: tt.config}
			err := gs.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGatewayService_ValidateSignature(t *testing.T) {
	gs := NewGatewayService(&GatewayConfig{ServerKey: "secret-key"})

	orderRef := "ORD-42"
	statusCode := "200"
	grossAmount := "55000.00"

	hash := sha512.Sum512([]byte(orderRef + statusCode + grossAmount + "secret-key"))
	valid := hex.EncodeToString(hash[:])

	if !gs.ValidateSignature(orderRef, statusCode, grossAmount, valid) {
		t.Error("expected valid signature to pass")
	}
	if gs.ValidateSignature(orderRef, statusCode, grossAmount, "deadbeef") {
		t.Error("expected invalid signature to fail")
	}
	if gs.ValidateSignature(orderRef, statusCode, "99999.00", valid) {
		t.Error("expected tampered amount to fail")
	}
}

func TestGatewayService_Normalize(t *testing.T) {
	gs := NewGatewayService(&GatewayConfig{ServerKey: "secret-key"})

	tests := []struct {
		name       string
		txStatus   string
		wantStatus string
	}{
		{"settlement approved", "settlement", GatewayStatusApproved},
		{"capture approved", "capture", GatewayStatusApproved},
		{"pending stays pending", "pending", GatewayStatusPending},
		{"authorize pending", "authorize", GatewayStatusPending},
		{"deny rejected", "deny", GatewayStatusRejected},
		{"expire cancelled", "expire", GatewayStatusCancelled},
		{"unknown rejected", "something-new", GatewayStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notice := gs.Normalize(WebhookPayload{
				OrderRef:          "ORD-42",
				GrossAmount:       "55000.00",
				TransactionStatus: tt.txStatus,
				PaymentType:       "qris",
			})
			if notice.Status != tt.wantStatus {
				t.Errorf("Normalize() status = %v, want %v", notice.Status, tt.wantStatus)
			}
			if notice.ExternalReference != "ORD-42" {
				t.Errorf("Normalize() reference = %v", notice.ExternalReference)
			}
			if !notice.Amount.Equal(decimal.RequireFromString("55000.00")) {
				t.Errorf("Normalize() amount = %v", notice.Amount)
			}
		})
	}
}

func TestGatewayService_CheckTransactionStatus(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockStatusCode int
		wantStatus     string
		wantErr        bool
	}{
		{
			name:           "settlement status",
			mockResponse:   `{"transaction_status": "settlement"}`,
			mockStatusCode: http.StatusOK,
			wantStatus:     GatewayStatusApproved,
		},
		{
			name:           "pending status",
			mockResponse:   `{"transaction_status": "pending"}`,
			mockStatusCode: http.StatusOK,
			wantStatus:     GatewayStatusPending,
		},
		{
			name:           "gateway error",
			mockResponse:   `{"status_message": "transaction not found"}`,
			mockStatusCode: http.StatusNotFound,
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.mockStatusCode)
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			gs := NewGatewayService(&GatewayConfig{
				ServerKey: "test-server-key",
				BaseURL:   server.URL,
			})

			status, err := gs.CheckTransactionStatus("ORD-42")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckTransactionStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && status != tt.wantStatus {
				t.Errorf("CheckTransactionStatus() = %v, want %v", status, tt.wantStatus)
			}
		})
	}
}
