package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/appconfig"
)

// TelegramNotifier pushes operational digests to the manager chat.
type TelegramNotifier struct {
	cfg        appconfig.TelegramConfig
	apiBase    string
	httpClient *http.Client
	log        *zerolog.Logger
}

func NewTelegramNotifier(cfg appconfig.TelegramConfig, log *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		cfg:        cfg,
		apiBase:    "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// Notify sends one message to the configured chat. Disabled config is
// a no-op, not an error.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if !t.cfg.Enabled {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("error encoding telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, string(body))
	}

	t.log.Debug().Msg("telegram notification sent")
	return nil
}
