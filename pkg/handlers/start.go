package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core"
	"github.com/scdlbot/scdl/pkg/core/db"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
	"github.com/scdlbot/scdl/pkg/delivery"
)

const startText = `👋 Hi <b>%s</b>!

I find tracks on SoundCloud and send them to you as audio files.

• Type <code>@%s</code> followed by a search query in any chat
• Or just send me a SoundCloud / Spotify track link here

Use /help for more details.`

const helpText = `<b>How to use me</b>

<b>Inline search</b>
Type <code>@%s daft punk</code> in any chat and pick a result. I download the track and replace the message with the audio.

<b>Links</b>
Send me a SoundCloud track, playlist or Spotify track link in this chat and I reply with the audio.

<b>Notes</b>
• I must be able to message you, so press Start first
• Go+ preview-only tracks cannot be downloaded`

const privacyText = `I store only your Telegram user id (to count users and deliver files) and a short-lived cache of delivered tracks. No messages or queries are persisted.`

// startHandler handles /start, including the deep links the inline keyboards
// point at: "download_<trackId>" retries a track in private, "open_dms" is the
// landing spot of the permission keyboard.
func startHandler(m *telegram.NewMessage) error {
	if !m.IsPrivate() {
		return nil
	}

	go func(userID int64) {
		ctx, cancel := db.Ctx()
		defer cancel()
		if db.Instance != nil {
			_ = db.Instance.AddUser(ctx, userID)
		}
	}(m.SenderID())

	payload := commandArgs(m)
	switch {
	case strings.HasPrefix(payload, "download_"):
		return startDownloadDeepLink(m, strings.TrimPrefix(payload, "download_"))
	case payload == "open_dms":
		_, err := m.Reply("✅ All set! You can now receive tracks. Go back and try again.")
		return err
	}

	bot := m.Client.Me()
	_, err := m.Reply(
		fmt.Sprintf(startText, m.Sender.FirstName, bot.Username),
		telegram.SendOptions{ParseMode: "HTML", ReplyMarkup: core.StartKeyboard()},
	)
	return err
}

// startDownloadDeepLink resolves a track id carried in a /start payload and
// delivers the audio in the private chat.
func startDownloadDeepLink(m *telegram.NewMessage, rawID string) error {
	trackID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		_, _ = m.Reply("❌ That download link is malformed.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	track, err := soundcloud.Default.GetTrack(ctx, trackID)
	if err != nil {
		gologging.WarnF("deep link: track %d lookup failed: %v", trackID, err)
		_, _ = m.Reply("❌ I could not find that track anymore.")
		return nil
	}

	chatID := m.ChatID()
	go func() {
		if err := delivery.SendTrack(m.Client, chatID, track, ""); err != nil {
			gologging.WarnF("deep link: delivery of track %d failed: %v", trackID, err)
		}
	}()
	return nil
}

// helpHandler handles the /help command.
func helpHandler(m *telegram.NewMessage) error {
	_, err := m.Reply(
		fmt.Sprintf(helpText, m.Client.Me().Username),
		telegram.SendOptions{ParseMode: "HTML"},
	)
	return err
}

// privacyHandler handles the /privacy command.
func privacyHandler(m *telegram.NewMessage) error {
	_, err := m.Reply(privacyText)
	return err
}

// pingHandler handles the /ping command.
func pingHandler(m *telegram.NewMessage) error {
	start := time.Now()
	msg, err := m.Reply("⏱️ Pinging...")
	if err != nil {
		return err
	}
	latency := time.Since(start).Milliseconds()
	uptime := time.Since(startTime).Truncate(time.Second)

	_, err = msg.Edit(fmt.Sprintf("🏓 Pong! %dms | Uptime: %s", latency, uptime), telegram.SendOptions{})
	return err
}
