package handlers

import (
	"strconv"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core/cache"
	"github.com/scdlbot/scdl/pkg/delivery"
	"github.com/scdlbot/scdl/pkg/workers"
)

// chosenResultHandler fires when a user picks an inline result. The article
// id is the track id; the update carries the inline message id needed to edit
// the posted message, so this is where the download job is born.
func chosenResultHandler(u telegram.Update, c *telegram.Client) error {
	upd, ok := u.(*telegram.UpdateBotInlineSend)
	if !ok {
		return nil
	}

	trackID, err := strconv.ParseInt(upd.ID, 10, 64)
	if err != nil {
		// Usage and no-result articles are not downloadable.
		return nil
	}
	if upd.MsgID == nil {
		gologging.WarnF("chosen result for track %d has no message id, cannot edit", trackID)
		return nil
	}

	key := delivery.MsgKey(upd.MsgID)
	cache.Sessions.SetChoice(key, cache.InlineChoice{
		UserID:  upd.UserID,
		TrackID: trackID,
		Query:   upd.Query,
	})
	cache.Sessions.RememberQuery(strconv.FormatInt(trackID, 10), upd.Query)

	workers.Enqueue(delivery.Job{
		TrackID: trackID,
		UserID:  upd.UserID,
		Query:   upd.Query,
		MsgID:   upd.MsgID,
	})
	return nil
}
