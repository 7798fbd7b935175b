package ghcli

import "testing"

func TestParseExistingPRURL(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "plain trailing url",
			text:  "a pull request for branch \"feature\" already exists: https://github.com/acme/repo/pull/12",
			want:  "https://github.com/acme/repo/pull/12",
			found: true,
		},
		{
			name:  "url followed by newline",
			text:  "already exists: https://github.com/acme/repo/pull/12\nsome trailer",
			want:  "https://github.com/acme/repo/pull/12",
			found: true,
		},
		{
			name:  "no url present",
			text:  "gh: some other failure",
			want:  "",
			found: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseExistingPRURL(tt.text)
			if found != tt.found || got != tt.want {
				t.Fatalf("parseExistingPRURL(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestAvailableDoesNotPanic(t *testing.T) {
	_ = Available()
}
