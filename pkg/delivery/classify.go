// Package delivery runs a download job end to end: permission probe,
// download, audio processing, validation, upload and target update, with
// every failure classified as either the user's permissions or our systems.
package delivery

import (
	"errors"
	"strings"
)

// ErrClass separates failures the user can fix from failures we must fix.
type ErrClass int

const (
	// ErrClassSystem is an internal or upstream failure; retrying may help.
	ErrClassSystem ErrClass = iota
	// ErrClassPermission means Telegram refused because the bot may not
	// message the user. The fix is on the user's side.
	ErrClassPermission
)

// ErrValidation wraps a post-download gate failure.
var ErrValidation = errors.New("downloaded track failed validation")

// permissionPhrases are lowercase substrings of Telegram error texts that
// indicate a permission problem rather than a system one.
var permissionPhrases = []string{
	"forbidden",
	"bot was blocked",
	"blocked by the user",
	"bot was not found",
	"chat not found",
	"user is deactivated",
	"not enough rights",
	"timed out",
	"waiting for an ack",
	"bot can't initiate conversation",
	"user not found",
	"access denied",
	"message not found",
	"chat access required",
	"user is restricted",
	"kicked by the user",
	"not enough rights to send",
	"chat not accessible",
	"chat write forbidden",
}

// permissionRPCCodes are MTProto error identifiers mapped to the same class.
var permissionRPCCodes = []string{
	"USER_IS_BLOCKED",
	"PEER_ID_INVALID",
	"CHAT_WRITE_FORBIDDEN",
	"USER_DEACTIVATED",
	"BOT_BLOCKED",
	"INPUT_USER_DEACTIVATED",
}

// Classify maps an error to its class. Anything unrecognized is a system
// error, so unknown failures never blame the user.
func Classify(err error) ErrClass {
	if err == nil {
		return ErrClassSystem
	}

	msg := err.Error()
	for _, code := range permissionRPCCodes {
		if strings.Contains(msg, code) {
			return ErrClassPermission
		}
	}

	lower := strings.ToLower(msg)
	for _, phrase := range permissionPhrases {
		if strings.Contains(lower, phrase) {
			return ErrClassPermission
		}
	}
	return ErrClassSystem
}

func (c ErrClass) String() string {
	if c == ErrClassPermission {
		return "permission"
	}
	return "system"
}
