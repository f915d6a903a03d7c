package browser

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.coindesk.com/markets/2025/01/01/story", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Validate(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Validate(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Validate(%q): unexpected error: %v", tt.url, err)
		}
	}
}

func TestOpenRejectsBeforeLaunching(t *testing.T) {
	if err := Open("javascript:alert(1)"); err == nil {
		t.Error("expected Open to reject non-http URL")
	}
}

func TestCommand(t *testing.T) {
	const link = "https://decrypt.co/1?a=1&b=2"
	tests := []struct {
		goos string
		name string
		last string
	}{
		{"darwin", "open", link},
		{"linux", "xdg-open", link},
		{"freebsd", "xdg-open", link},
		{"windows", "rundll32", link},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, link)
		if name != tt.name {
			t.Errorf("command(%q) = %q, want %q", tt.goos, name, tt.name)
		}
		if args[len(args)-1] != tt.last {
			t.Errorf("command(%q) last arg = %q, want %q", tt.goos, args[len(args)-1], tt.last)
		}
	}
}
