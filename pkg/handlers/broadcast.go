package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
	"golang.org/x/time/rate"

	"github.com/scdlbot/scdl/pkg/core/db"
	"github.com/scdlbot/scdl/pkg/delivery"
)

// broadcastRate keeps the fan-out well under Telegram's bot message limits.
var broadcastRate = rate.Every(50 * time.Millisecond)

// broadcastHandler sends the text after /broadcast to every known user.
// Users who blocked the bot are dropped from the database as we go.
func broadcastHandler(m *telegram.NewMessage) error {
	text := commandArgs(m)
	if text == "" {
		_, err := m.Reply("Usage: /broadcast <message>")
		return err
	}
	if db.Instance == nil {
		_, err := m.Reply("❌ Database is not connected.")
		return err
	}

	ctx, cancel := db.Ctx()
	users, err := db.Instance.GetAllUsers(ctx)
	cancel()
	if err != nil {
		_, err = m.Reply(fmt.Sprintf("❌ Could not load users: %v", err))
		return err
	}

	status, err := m.Reply(fmt.Sprintf("📣 Broadcasting to %d users...", len(users)))
	if err != nil {
		return err
	}

	client := m.Client
	go func() {
		limiter := rate.NewLimiter(broadcastRate, 1)
		sent, blocked, failed := 0, 0, 0

		for _, userID := range users {
			_ = limiter.Wait(context.Background())
			_, err := client.SendMessage(userID, text, &telegram.SendOptions{ParseMode: "HTML"})
			switch {
			case err == nil:
				sent++
			case delivery.Classify(err) == delivery.ErrClassPermission:
				blocked++
				ctx, cancel := db.Ctx()
				_ = db.Instance.RemoveUser(ctx, userID)
				cancel()
			default:
				failed++
				gologging.WarnF("broadcast to %d failed: %v", userID, err)
			}
		}

		_, _ = status.Edit(
			fmt.Sprintf("📣 Broadcast done: %d sent, %d blocked (removed), %d failed.", sent, blocked, failed),
			telegram.SendOptions{},
		)
	}()
	return nil
}
