package delivery

import (
	"bytes"
	"testing"

	"github.com/amarnathcjd/gogram/telegram"
)

func TestFileIDRoundTrip(t *testing.T) {
	doc := &telegram.DocumentObj{
		ID:            123456789,
		AccessHash:    -987654321,
		FileReference: []byte{0x01, 0xfe, 0x00, 0x42},
	}

	got, err := decodeFileID(encodeFileID(doc))
	if err != nil {
		t.Fatalf("decodeFileID: %v", err)
	}
	if got.ID != doc.ID || got.AccessHash != doc.AccessHash || !bytes.Equal(got.FileReference, doc.FileReference) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestDecodeFileIDMalformed(t *testing.T) {
	for _, s := range []string{"", "1:2", "a:b:zz", "1:x:00"} {
		if _, err := decodeFileID(s); err == nil {
			t.Errorf("decodeFileID(%q) should fail", s)
		}
	}
}

func TestMsgKeyDistinguishesIDs(t *testing.T) {
	a := MsgKey(&telegram.InputBotInlineMessageIDObj{DcID: 2, ID: 10, AccessHash: 1})
	b := MsgKey(&telegram.InputBotInlineMessageIDObj{DcID: 2, ID: 11, AccessHash: 1})
	c := MsgKey(&telegram.InputBotInlineMessageID64{DcID: 2, OwnerID: 5, ID: 10, AccessHash: 1})

	if a == b || a == c || b == c {
		t.Fatalf("keys must be distinct: %q %q %q", a, b, c)
	}
}
