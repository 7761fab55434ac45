package handlers

import (
	"fmt"
	"strings"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/config"
)

// getPeerId gets the peer ID from a chat ID.
// It takes a telegram client and a chat ID as input.
// It returns the peer ID and an error if any.
func getPeerId(c *telegram.Client, chatId any) (int64, error) {
	peer, err := c.ResolvePeer(chatId)
	if err != nil {
		gologging.WarnF("failed to resolve Peer for %d", chatId)
		return 0, err
	}

	switch p := peer.(type) {
	case *telegram.InputPeerUser:
		return p.UserID, nil
	case *telegram.InputPeerChat:
		return -p.ChatID, nil
	case *telegram.InputPeerChannel:
		return -1000000000000 - p.ChannelID, nil
	default:
		return 0, fmt.Errorf("unsupported peer type %T", p)
	}
}

// getUrl gets a URL from a message, preferring link entities over raw text so
// that hyperlinked track names still resolve.
func getUrl(m *telegram.NewMessage) string {
	text := m.Text()
	for _, entity := range m.Message.Entities {
		switch e := entity.(type) {
		case *telegram.MessageEntityTextURL:
			return e.URL
		case *telegram.MessageEntityURL:
			if int(e.Offset+e.Length) <= len(text) {
				return text[e.Offset : e.Offset+e.Length]
			}
		}
	}
	return ""
}

// isDev checks whether the sender is the owner or a listed developer.
func isDev(m *telegram.NewMessage) bool {
	id := m.SenderID()
	if id == config.Conf.OwnerId {
		return true
	}
	for _, dev := range config.Conf.DEVS {
		if dev == id {
			return true
		}
	}
	return false
}

// isOwner restricts a command to the bot owner.
func isOwner(m *telegram.NewMessage) bool {
	return m.SenderID() == config.Conf.OwnerId
}

// commandArgs returns everything after the command itself.
func commandArgs(m *telegram.NewMessage) string {
	parts := strings.SplitN(m.Text(), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
