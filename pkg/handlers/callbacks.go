package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
	"github.com/scdlbot/scdl/pkg/delivery"
	"github.com/scdlbot/scdl/pkg/workers"
)

// inlineCallbackHandler serves the buttons attached to inline messages: the
// retry button re-enqueues the track, the rest are informational alerts.
func inlineCallbackHandler(u telegram.Update, c *telegram.Client) error {
	upd, ok := u.(*telegram.UpdateInlineBotCallbackQuery)
	if !ok {
		return nil
	}

	data := string(upd.Data)
	if strings.HasPrefix(data, core.DownloadPrefix) {
		return retryDownload(c, upd, strings.TrimPrefix(data, core.DownloadPrefix))
	}

	var text string
	switch data {
	case core.CbDownloadStatus:
		text = "⬇️ Your track is being downloaded, hang tight."
	case core.CbErrorInfo:
		text = "❌ The download failed. Press Try Again or pick another track."
	case core.CbPermissionInfo:
		text = "🔒 I need to be able to message you. Press Send /start, then retry."
	case core.CbTooManyErrors:
		text = "❌ This track keeps failing. Please try a different one."
	case core.CbNoTracks:
		text = "😕 This playlist has no downloadable tracks."
	default:
		return answerCallback(c, upd.QueryID, "", false)
	}
	return answerCallback(c, upd.QueryID, text, true)
}

// retryDownload enqueues a fresh delivery for the inline message the button
// sits on.
func retryDownload(c *telegram.Client, upd *telegram.UpdateInlineBotCallbackQuery, rawID string) error {
	trackID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return answerCallback(c, upd.QueryID, "❌ Malformed track reference.", true)
	}

	accepted := workers.Enqueue(delivery.Job{
		TrackID: trackID,
		UserID:  upd.UserID,
		MsgID:   upd.MsgID,
	})
	if !accepted {
		return answerCallback(c, upd.QueryID, "⏳ I am overloaded right now, try again in a minute.", true)
	}
	return answerCallback(c, upd.QueryID, "⬇️ Downloading...", false)
}

func answerCallback(c *telegram.Client, queryID int64, text string, alert bool) error {
	_, err := c.MessagesSetBotCallbackAnswer(&telegram.MessagesSetBotCallbackAnswerParams{
		QueryID: queryID,
		Alert:   alert,
		Message: text,
	})
	if err != nil {
		gologging.WarnF("callback answer failed: %v", err)
	}
	return nil
}

// dmDownloadCallbackHandler serves download buttons on private-chat playlist
// listings, where the audio is sent as a reply instead of an inline edit.
func dmDownloadCallbackHandler(cb *telegram.CallbackQuery) error {
	rawID := strings.TrimPrefix(cb.DataString(), core.DownloadPrefix)
	trackID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		_, _ = cb.Answer("❌ Malformed track reference.", &telegram.CallbackOptions{Alert: true})
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	track, err := soundcloud.Default.GetTrack(ctx, trackID)
	if err != nil {
		gologging.WarnF("dm download: track %d lookup failed: %v", trackID, err)
		_, _ = cb.Answer("❌ I could not find that track anymore.", &telegram.CallbackOptions{Alert: true})
		return nil
	}

	_, _ = cb.Answer("⬇️ Downloading...", &telegram.CallbackOptions{})

	chatID, err := getPeerId(cb.Client, cb.ChatID)
	if err != nil {
		return nil
	}
	client := cb.Client
	go func() {
		if err := delivery.SendTrack(client, chatID, track, ""); err != nil {
			gologging.WarnF("dm download: delivery of track %d failed: %v", trackID, err)
		}
	}()
	return nil
}
