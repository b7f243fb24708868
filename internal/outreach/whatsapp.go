package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/leadflowhq/lead-services/internal/appconfig"
)

// WhatsAppSender posts text messages to the Graph API. Sends are
// smoothed to one every few seconds so bursts never trip the platform.
type WhatsAppSender struct {
	cfg        appconfig.WhatsAppConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zerolog.Logger
}

func NewWhatsAppSender(cfg appconfig.WhatsAppConfig, log *zerolog.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(3*time.Second), 1),
		log:        log,
	}
}

// CleanPhone strips everything but digits from a phone number. The
// Graph API wants bare digits and inbound webhooks deliver them.
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send delivers one text message and returns the platform message ID.
func (w *WhatsAppSender) Send(ctx context.Context, phone, message string) (string, error) {
	digits := CleanPhone(phone)
	if digits == "" {
		return "", fmt.Errorf("lead has no usable phone number")
	}

	if w.cfg.TestMode {
		w.log.Info().Str("to", digits).Msg("test mode, whatsapp message not sent")
		return "test-" + digits, nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               digits,
		Type:             "text",
		Text:             whatsAppText{Body: message},
	})
	if err != nil {
		return "", fmt.Errorf("error encoding whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(w.cfg.APIURL, "/"), w.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error building whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed whatsAppResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Messages) == 0 {
		return "", fmt.Errorf("unexpected whatsapp API response: %s", string(body))
	}

	w.log.Info().Str("to", digits).Str("message_id", parsed.Messages[0].ID).Msg("whatsapp message sent")
	return parsed.Messages[0].ID, nil
}
