package handlers

import (
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
)

var startTime = time.Now()

// LoadModules loads all the handlers.
// It takes a telegram client as input.
func LoadModules(c *telegram.Client) {
	_, _ = c.UpdatesGetState()

	c.On("command:ping", pingHandler)
	c.On("command:start", startHandler)
	c.On("command:help", helpHandler)
	c.On("command:privacy", privacyHandler)

	c.On("command:stats", sysStatsHandler, telegram.FilterFunc(isDev))
	c.On("command:broadcast", broadcastHandler, telegram.FilterFunc(isOwner))

	c.On("inline:.*", inlineSearchHandler)
	c.On(`callback:download:\d+`, dmDownloadCallbackHandler)
	c.On(telegram.OnMessage, linkMessageHandler)

	c.AddRawHandler(&telegram.UpdateBotInlineSend{}, chosenResultHandler)
	c.AddRawHandler(&telegram.UpdateInlineBotCallbackQuery{}, inlineCallbackHandler)

	gologging.Debug("Handlers loaded successfully.")
}
