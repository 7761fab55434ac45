package delivery

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/config"
	"github.com/scdlbot/scdl/pkg/core"
	"github.com/scdlbot/scdl/pkg/core/cache"
	"github.com/scdlbot/scdl/pkg/core/db"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

// deliveryTimeout bounds one whole job: metadata, download, processing, upload.
const deliveryTimeout = 10 * time.Minute

// maxConsecutiveErrors dead-ends an inline message after this many failures.
const maxConsecutiveErrors = 3

// Job is one queued inline delivery.
type Job struct {
	ID          string
	TrackID     int64
	UserID      int64
	Query       string
	ResultIndex int
	MsgID       telegram.InputBotInlineMessageID
}

// MsgKey flattens an inline message id into a session map key.
func MsgKey(id telegram.InputBotInlineMessageID) string {
	switch v := id.(type) {
	case *telegram.InputBotInlineMessageIDObj:
		return fmt.Sprintf("%d:%d", v.DcID, v.ID)
	case *telegram.InputBotInlineMessageID64:
		return fmt.Sprintf("%d:%d:%d", v.DcID, v.OwnerID, v.ID)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Deliver runs one inline delivery end to end. It never returns an error:
// every failure ends as a keyboard update on the inline message.
func Deliver(c *telegram.Client, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	key := MsgKey(job.MsgID)
	trackKey := strconv.FormatInt(job.TrackID, 10)

	track, err := soundcloud.Default.GetTrack(ctx, job.TrackID)
	if err != nil {
		fail(c, job, fallbackInfo(job.TrackID), fmt.Errorf("fetch track metadata: %w", err))
		return
	}
	info := track.Info()
	attachSpotifyURL(&info, job.Query, trackKey)

	if track.IsSnip() {
		fail(c, job, info, soundcloud.ErrGoPlus)
		return
	}

	// A cached upload skips the whole pipeline.
	if fileID, ok := cache.FileIDs.Get(trackKey); ok {
		if doc, err := decodeFileID(fileID); err == nil {
			if err := editInlineAudio(c, job.MsgID, doc, info); err == nil {
				cache.Sessions.ResetErrors(key)
				return
			}
		}
	}

	// Permission probe: the track-info DM doubles as the upload target later.
	// If the bot cannot message the user there is no point downloading.
	text, ents := statusText("", "", info)
	proxy, err := c.SendMessage(job.UserID, text, &telegram.SendOptions{
		Entities:    ents,
		ReplyMarkup: core.ProgressKeyboard("downloading"),
		LinkPreview: false,
	})
	if err != nil {
		if Classify(err) == ErrClassPermission {
			editInline(c, job.MsgID, "", nil, core.PermissionKeyboard(c.Me().Username))
			return
		}
		fail(c, job, info, fmt.Errorf("permission probe: %w", err))
		return
	}
	cache.Sessions.SetProxy(key, cache.ProxyMessage{ChatID: job.UserID, MsgID: int32(proxy.ID)})

	editInline(c, job.MsgID, "", nil, core.ProgressKeyboard("downloading"))

	path, thumb, cleanup, err := prepare(ctx, c, job.MsgID, track, info)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		fail(c, job, info, err)
		return
	}

	msg, err := sendAudio(c, job.UserID, path, thumb, info)
	if err != nil {
		fail(c, job, info, fmt.Errorf("upload: %w", err))
		return
	}
	proxy.Delete()
	cache.Sessions.DropProxy(key)

	doc := documentOf(msg)
	if doc != nil {
		cache.FileIDs.Set(trackKey, encodeFileID(doc))
		input := &telegram.InputDocumentObj{ID: doc.ID, AccessHash: doc.AccessHash, FileReference: doc.FileReference}
		if err := editInlineAudio(c, job.MsgID, input, info); err != nil {
			gologging.WarnF("delivery %s: inline update failed: %v", job.ID, err)
		}
	}

	cache.Sessions.ResetErrors(key)
	forwardToChannel(c, doc, info, job.UserID)
	recordDelivery(job.UserID)
	gologging.InfoF("delivery %s: track %d sent to %d", job.ID, job.TrackID, job.UserID)
}

// prepare downloads and post-processes a track, reporting progress on the
// inline message. It returns the final audio path and an optional thumbnail.
func prepare(ctx context.Context, c *telegram.Client, msgID telegram.InputBotInlineMessageID, track *soundcloud.Track, info soundcloud.TrackInfo) (string, string, func(), error) {
	dlURL, err := soundcloud.Default.GetDownloadURL(ctx, track)
	if err != nil {
		return "", "", nil, fmt.Errorf("select stream: %w", err)
	}

	dest := filepath.Join(config.Conf.DownloadsDir, core.Filename(info))
	final := dest
	var thumb string
	cleanup := func() {
		for _, p := range []string{dest, final, thumb} {
			if p != "" {
				os.Remove(p)
			}
		}
	}

	if err := soundcloud.Download(ctx, dlURL, dest); err != nil {
		return "", "", cleanup, fmt.Errorf("download: %w", err)
	}

	if c != nil && msgID != nil {
		editInline(c, msgID, "", nil, core.ProgressKeyboard("checking_silence"))
	}
	analysis := soundcloud.AnalyzeWaveformForSilence(ctx, track.WaveformURL)
	if analysis.HasSilence {
		if c != nil && msgID != nil {
			editInline(c, msgID, "", nil, core.ProgressKeyboard("removing_silence"))
		}
		final = soundcloud.DetectAndRemoveSilence(ctx, dest)
	}

	if err := Validate(ctx, final, info.Duration); err != nil {
		return "", "", cleanup, err
	}

	soundcloud.AddID3Tags(ctx, final, track)
	thumb = soundcloud.PrepareThumbnail(ctx, track, config.Conf.DownloadsDir)
	return final, thumb, cleanup, nil
}

// SendTrack downloads a track and sends it into a regular chat, used by the
// DM link handlers. Progress lives on a status message instead of an inline
// keyboard.
func SendTrack(c *telegram.Client, chatID int64, track *soundcloud.Track, spotifyURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	info := track.Info()
	info.SpotifyURL = spotifyURL

	if track.IsSnip() {
		_, err := c.SendMessage(chatID, core.ErrorCaption("This is a SoundCloud Go+ preview and cannot be downloaded", info), &telegram.SendOptions{ParseMode: "HTML", LinkPreview: false})
		return err
	}

	status, err := c.SendMessage(chatID, core.SuccessCaption("Downloading...", info), &telegram.SendOptions{ParseMode: "HTML", LinkPreview: false})
	if err != nil {
		return err
	}

	path, thumb, cleanup, err := prepare(ctx, nil, nil, track, info)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		_, _ = status.Edit(core.ErrorCaption(userFacing(err), info), telegram.SendOptions{ParseMode: "HTML", LinkPreview: false})
		return err
	}

	msg, err := sendAudio(c, chatID, path, thumb, info)
	if err != nil {
		_, _ = status.Edit(core.ErrorCaption("Could not send the audio", info), telegram.SendOptions{ParseMode: "HTML", LinkPreview: false})
		return err
	}
	status.Delete()

	if doc := documentOf(msg); doc != nil {
		cache.FileIDs.Set(strconv.FormatInt(track.ID, 10), encodeFileID(doc))
		forwardToChannel(c, doc, info, chatID)
	}
	recordDelivery(chatID)
	return nil
}

// sendAudio uploads the file as a proper audio document with metadata,
// thumbnail and caption.
func sendAudio(c *telegram.Client, peer int64, path, thumb string, info soundcloud.TrackInfo) (*telegram.NewMessage, error) {
	opts := &telegram.MediaOptions{
		Caption:   core.TrackCaption(info, c.Me().Username),
		ParseMode: "HTML",
		Attributes: []telegram.DocumentAttribute{
			&telegram.DocumentAttributeAudio{
				Title:     info.Title,
				Performer: info.Artist,
				Duration:  int32(info.Duration / 1000),
			},
		},
	}
	if thumb != "" {
		opts.Thumb = thumb
	}
	return c.SendMedia(peer, path, opts)
}

// fail classifies the error and rewrites the inline keyboard accordingly.
func fail(c *telegram.Client, job Job, info soundcloud.TrackInfo, err error) {
	key := MsgKey(job.MsgID)
	class := Classify(err)
	count := cache.Sessions.BumpErrors(key)
	gologging.WarnF("delivery %s: track %d failed (%s, consecutive %d): %v",
		job.ID, job.TrackID, class, count, err)

	// The proxy DM, if it exists, turns into an error notice.
	if proxy, ok := cache.Sessions.Proxy(key); ok {
		_, _ = c.EditMessage(proxy.ChatID, proxy.MsgID, core.ErrorCaption(userFacing(err), info), &telegram.SendOptions{ParseMode: "HTML", LinkPreview: false})
	}

	var markup *telegram.ReplyInlineMarkup
	if count >= maxConsecutiveErrors {
		markup = core.TooManyErrorsKeyboard(info.PermalinkURL)
	} else {
		markup = core.ErrorKeyboard(info.PermalinkURL, job.TrackID, class == ErrClassPermission, userFacing(err))
	}
	editInline(c, job.MsgID, "", nil, markup)
}

// userFacing shortens an internal error chain into a message fit for a button
// or caption.
func userFacing(err error) string {
	switch {
	case errors.Is(err, soundcloud.ErrGoPlus):
		return "This is a SoundCloud Go+ preview"
	case errors.Is(err, soundcloud.ErrNoStream):
		return "No downloadable stream found"
	case errors.Is(err, soundcloud.ErrNotFound):
		return "Track not found"
	case errors.Is(err, ErrValidation):
		msg := err.Error()
		if _, detail, ok := strings.Cut(msg, ": "); ok {
			return "Invalid track: " + detail
		}
		return msg
	default:
		msg := err.Error()
		if i := strings.LastIndex(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		return msg
	}
}

func fallbackInfo(trackID int64) soundcloud.TrackInfo {
	return soundcloud.TrackInfo{
		ID:           trackID,
		Title:        "Unknown Track",
		Artist:       "Unknown",
		PermalinkURL: "https://soundcloud.com/",
	}
}

func attachSpotifyURL(info *soundcloud.TrackInfo, query, trackKey string) {
	if query == "" {
		if q, ok := cache.Sessions.Query(trackKey); ok {
			query = q
		}
	}
	if query == "" {
		return
	}
	if u, ok := cache.Sessions.SpotifyURL(query); ok {
		info.SpotifyURL = u
	}
}

func recordDelivery(userID int64) {
	if db.Instance == nil {
		return
	}
	ctx, cancel := db.Ctx()
	defer cancel()
	_ = db.Instance.AddUser(ctx, userID)
	if err := db.Instance.IncrementDownloads(ctx); err != nil {
		gologging.WarnF("db: counter bump failed: %v", err)
	}
}

// forwardToChannel mirrors a delivered track into the configured archive
// channel with requester attribution.
func forwardToChannel(c *telegram.Client, doc *telegram.DocumentObj, info soundcloud.TrackInfo, userID int64) {
	if config.Conf.ChannelId == 0 || doc == nil {
		return
	}

	media := &telegram.InputMediaDocument{
		ID: &telegram.InputDocumentObj{ID: doc.ID, AccessHash: doc.AccessHash, FileReference: doc.FileReference},
	}
	caption := fmt.Sprintf("%s\n\nRequested by <a href='tg://user?id=%d'>user</a>",
		core.TrackCaption(info, c.Me().Username), userID)
	_, err := c.SendMedia(config.Conf.ChannelId, media, &telegram.MediaOptions{
		Caption:   caption,
		ParseMode: "HTML",
	})
	if err != nil {
		gologging.WarnF("channel forward failed: %v", err)
	}
}

func documentOf(msg *telegram.NewMessage) *telegram.DocumentObj {
	if msg == nil {
		return nil
	}
	return msg.Document()
}

// encodeFileID flattens a Telegram document reference into the persisted
// cache string.
func encodeFileID(d *telegram.DocumentObj) string {
	return fmt.Sprintf("%d:%d:%s", d.ID, d.AccessHash, hex.EncodeToString(d.FileReference))
}

func decodeFileID(s string) (*telegram.InputDocumentObj, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed file id %q", s)
	}
	id, err1 := strconv.ParseInt(parts[0], 10, 64)
	hash, err2 := strconv.ParseInt(parts[1], 10, 64)
	ref, err3 := hex.DecodeString(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("malformed file id %q", s)
	}
	return &telegram.InputDocumentObj{ID: id, AccessHash: hash, FileReference: ref}, nil
}

// editInline updates an inline message's text and keyboard via the raw API.
// Message-not-modified answers are expected and ignored.
func editInline(c *telegram.Client, id telegram.InputBotInlineMessageID, text string, ents []telegram.MessageEntity, markup telegram.ReplyMarkup) {
	_, err := c.MessagesEditInlineBotMessage(&telegram.MessagesEditInlineBotMessageParams{
		ID:          id,
		Message:     text,
		Entities:    ents,
		ReplyMarkup: markup,
		NoWebpage:   true,
	})
	if err != nil && !strings.Contains(err.Error(), "MESSAGE_NOT_MODIFIED") {
		gologging.WarnF("inline edit failed: %v", err)
	}
}

// editInlineAudio swaps the inline message content for the uploaded audio
// document with its caption and resting keyboard.
func editInlineAudio(c *telegram.Client, id telegram.InputBotInlineMessageID, doc *telegram.InputDocumentObj, info soundcloud.TrackInfo) error {
	caption, ents := audioCaption(info, c.Me().Username)
	_, err := c.MessagesEditInlineBotMessage(&telegram.MessagesEditInlineBotMessageParams{
		ID:          id,
		Media:       &telegram.InputMediaDocument{ID: doc},
		Message:     caption,
		Entities:    ents,
		ReplyMarkup: core.TrackKeyboard(info.PermalinkURL, artistURL(info), false, info.ID),
	})
	return err
}

func artistURL(info soundcloud.TrackInfo) string {
	if info.UserURN != "" {
		return info.UserURL + "?urn=" + info.UserURN
	}
	return info.UserURL
}
