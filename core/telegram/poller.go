package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/saeedyasen/travelbot/core/config"

	tele "gopkg.in/telebot.v4"
)

// BuildPoller selects the update delivery mechanism from config: a webhook
// listener when telegram.run_mode is "webhook", a long poller otherwise.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if mode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}

	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}
