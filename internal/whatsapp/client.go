// Package whatsapp delivers one-time codes over WhatsApp through the Kapso
// messaging API.  Without credentials it runs in dev mode: the code is
// logged and delivery reports success, so local flows stay testable.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const apiBase = "https://api.kapso.ai/meta/whatsapp/v24.0"

// Sender posts text messages to a single WhatsApp business number.
type Sender struct {
	apiKey  string
	phoneID string
	http    *http.Client
}

func NewSender(apiKey, phoneID string) *Sender {
	return &Sender{
		apiKey:  apiKey,
		phoneID: phoneID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendOTP delivers a verification code to the given phone.  The code is
// embedded in fixed Spanish product copy mentioning the 5-minute validity.
func (s *Sender) SendOTP(ctx context.Context, phone, code string) error {
	if s.apiKey == "" || s.phoneID == "" {
		log.Printf("whatsapp: not configured, OTP for %s is %s", phone, code)
		return nil
	}

	body := fmt.Sprintf("Tu código de verificación de FinovAI es: %s\n\nVálido por 5 minutos.", code)
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		// the API expects bare digits without the + prefix
		"to":   strings.TrimPrefix(phone, "+"),
		"type": "text",
		"text": map[string]string{"body": body},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", apiBase, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("kapso: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
