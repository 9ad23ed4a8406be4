package services

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayConfig holds payment gateway configuration
type GatewayConfig struct {
	ServerKey    string
	ClientKey    string
	MerchantID   string
	BaseURL      string
	IsProduction bool
}

// GatewayService menjembatani collaborator payment gateway: membuat
// transaksi, mengecek status, dan memverifikasi signature webhook sebelum
// notifikasinya diteruskan ke SettlementService. Autentikasi notifikasi
// adalah tanggung jawab layer ini, bukan pipeline.
type GatewayService struct {
	config     *GatewayConfig
	httpClient *http.Client
}

// NewGatewayService creates a new instance of GatewayService
func NewGatewayService(config *GatewayConfig) *GatewayService {
	return &GatewayService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GatewayServiceFromEnv membaca konfigurasi gateway dari environment.
func GatewayServiceFromEnv() *GatewayService {
	return NewGatewayService(&GatewayConfig{
		ServerKey:    os.Getenv("GATEWAY_SERVER_KEY"),
		ClientKey:    os.Getenv("GATEWAY_CLIENT_KEY"),
		MerchantID:   os.Getenv("GATEWAY_MERCHANT_ID"),
		BaseURL:      os.Getenv("GATEWAY_BASE_URL"),
		IsProduction: os.Getenv("GATEWAY_ENV") == "production",
	})
}

// ValidateConfig validates gateway configuration
func (gs *GatewayService) ValidateConfig() error {
	if gs.config.ServerKey == "" {
		return fmt.Errorf("GATEWAY_SERVER_KEY is not set")
	}
	if gs.config.ClientKey == "" {
		return fmt.Errorf("GATEWAY_CLIENT_KEY is not set")
	}
	if gs.config.MerchantID == "" {
		return fmt.Errorf("GATEWAY_MERCHANT_ID is not set")
	}
	return nil
}

// ValidateSignature memverifikasi signature notifikasi webhook:
// sha512(orderRef + statusCode + grossAmount + serverKey).
func (gs *GatewayService) ValidateSignature(orderRef, statusCode, grossAmount, signature string) bool {
	signatureString := fmt.Sprintf("%s%s%s%s", orderRef, statusCode, grossAmount, gs.config.ServerKey)
	hash := sha512.New()
	hash.Write([]byte(signatureString))
	calculatedSignature := hex.EncodeToString(hash.Sum(nil))
	return calculatedSignature == signature
}

// WebhookPayload adalah bentuk mentah notifikasi dari gateway.
type WebhookPayload struct {
	OrderRef          string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
}

// Normalize mengubah payload webhook menjadi notifikasi ternormalisasi
// untuk pipeline. Signature harus sudah lolos ValidateSignature.
func (gs *GatewayService) Normalize(payload WebhookPayload) GatewayNotification {
	amount, err := decimal.NewFromString(payload.GrossAmount)
	if err != nil {
		amount = decimal.Zero
	}
	return GatewayNotification{
		ExternalReference: payload.OrderRef,
		Amount:            amount,
		Status:            gs.mapTransactionStatus(payload.TransactionStatus),
		ChannelHint:       payload.PaymentType,
	}
}

// CheckTransactionStatus checks transaction status from the gateway
func (gs *GatewayService) CheckTransactionStatus(orderRef string) (string, error) {
	url := fmt.Sprintf("%s/v2/%s/status", gs.baseURL(), orderRef)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	authString := "Basic " + base64.StdEncoding.EncodeToString([]byte(gs.config.ServerKey+":"))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authString)

	resp, err := gs.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway API error: %s", string(body))
	}

	var statusResp struct {
		TransactionStatus string `json:"transaction_status"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	return gs.mapTransactionStatus(statusResp.TransactionStatus), nil
}

// mapTransactionStatus maps gateway transaction status to internal status
func (gs *GatewayService) mapTransactionStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return GatewayStatusApproved
	case "pending", "authorize":
		return GatewayStatusPending
	case "cancel", "expire":
		return GatewayStatusCancelled
	case "deny", "failure":
		return GatewayStatusRejected
	default:
		return GatewayStatusRejected
	}
}

func (gs *GatewayService) baseURL() string {
	if gs.config.BaseURL != "" {
		return gs.config.BaseURL
	}
	if gs.config.IsProduction {
		return "https://api.midtrans.com"
	}
	return "https://api.sandbox.midtrans.com"
}
