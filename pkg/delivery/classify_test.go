package delivery

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyPermissionErrors(t *testing.T) {
	cases := []string{
		"rpc error: USER_IS_BLOCKED (code 400)",
		"PEER_ID_INVALID",
		"CHAT_WRITE_FORBIDDEN",
		"USER_DEACTIVATED",
		"BOT_BLOCKED",
		"INPUT_USER_DEACTIVATED",
		"Forbidden: bot was blocked by the user",
		"bot can't initiate conversation with a user",
		"chat not found",
		"user is deactivated",
		"not enough rights to send audios",
		"request timed out waiting for an ack",
	}
	for _, msg := range cases {
		if got := Classify(errors.New(msg)); got != ErrClassPermission {
			t.Errorf("Classify(%q) = %s, want permission", msg, got)
		}
	}
}

func TestClassifySystemErrors(t *testing.T) {
	cases := []error{
		nil,
		errors.New("connection reset by peer"),
		errors.New("no playable stream found"),
		fmt.Errorf("wrapped: %w", ErrValidation),
	}
	for _, err := range cases {
		if got := Classify(err); got != ErrClassSystem {
			t.Errorf("Classify(%v) = %s, want system", err, got)
		}
	}
}

func TestClassifyRPCCodesAreCaseSensitive(t *testing.T) {
	// Lowercased code strings are plain text, not MTProto identifiers, and
	// only match when a phrase happens to cover them.
	if got := Classify(errors.New("user_is_blocked")); got != ErrClassSystem {
		t.Errorf("lowercase rpc code classified as %s, want system", got)
	}
}

func TestErrClassString(t *testing.T) {
	if ErrClassPermission.String() != "permission" || ErrClassSystem.String() != "system" {
		t.Fatal("unexpected ErrClass string forms")
	}
}
