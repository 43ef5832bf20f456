package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// TelegramNotifier шлет fire-and-forget уведомления через Bot API.
// Ошибки доставки логируются и никогда не ретраятся ядром.
type TelegramNotifier struct {
	token  string
	client *http.Client
}

func NewTelegramNotifier(token string) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) NotifyDeposit(userID int64, amount, casino, accountID string) {
	if n.token == "" {
		slog.Warn("BOT_TOKEN not configured, skipping deposit notification", "user_id", userID)
		return
	}

	text := fmt.Sprintf(
		"✅ Пополнение зачислено!\n\nСумма: <b>%s</b>\nКазино: %s\nID счета: %s",
		amount, casino, accountID,
	)

	go func() {
		payload := sendMessageRequest{
			ChatID:    strconv.FormatInt(userID, 10),
			Text:      text,
			ParseMode: "HTML",
		}

		body, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal telegram payload", "error", err.Error())
			return
		}

		url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.token)
		resp, err := n.client.Post(url, "application/json", bytes.NewBuffer(body))
		if err != nil {
			slog.Error("telegram notification failed", "user_id", userID, "error", err.Error())
			return
		}
		defer resp.Body.Close()

		var result sendMessageResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || !result.OK {
			slog.Error("telegram sendMessage rejected",
				"user_id", userID, "status", resp.StatusCode, "description", result.Description)
			return
		}

		slog.Info("deposit notification sent", "user_id", userID, "casino", casino)
	}()
}
