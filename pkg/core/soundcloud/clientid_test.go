package soundcloud

import "testing"

func TestExtractClientID(t *testing.T) {
	const id = "a3e059563d7fd3372b49b37f00a00bcf"

	tests := []struct {
		name string
		js   string
		want string
	}{
		{"colon quoted", `var x={client_id:"` + id + `",env:"production"}`, id},
		{"query param", `u="/me?client_id=` + id + `&app_version=1"`, id},
		{"no id", `var x={env:"production"}`, ""},
		{"too short", `client_id:"abc123"`, ""},
	}

	for _, tt := range tests {
		if got := extractClientID([]byte(tt.js)); got != tt.want {
			t.Errorf("%s: extractClientID = %q, want %q", tt.name, got, tt.want)
		}
	}
}
