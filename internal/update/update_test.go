package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.10.0", "1.9.0", true},
		{"1.2", "1.2.0", false},
		{"1.2.0", "1.2.0", false},
		{"1.2.1", "v1.2.0", true},
		{"1.2.0-rc1", "1.1.0", true},
		{"1.2.0-rc1", "1.2.0", false},
		{"1.2.0", "1.2.0-rc1", true},
		{"1.2.0-rc.2", "1.2.0-rc.1", true},
		{"1.2.0+build5", "1.2.0", false},
		{"v2", "1.9.9", true},
		{"1.0.0", "dev", true},
		{"garbage", "1.0.0", false},
		{"0.9.0", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := Newer(tt.a, tt.b); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v0.4.0","html_url":"https://example.com/releases/v0.4.0"}`))
	}))
	defer srv.Close()

	res := Check(context.Background(), srv.URL, "0.3.2")
	if res == nil {
		t.Fatal("expected newer release")
	}
	if res.LatestVersion != "0.4.0" || res.URL != "https://example.com/releases/v0.4.0" {
		t.Errorf("unexpected result %+v", res)
	}

	if res := Check(context.Background(), srv.URL, "v0.4.0"); res != nil {
		t.Errorf("expected nil when up to date, got %+v", res)
	}
}

func TestCheckFailuresAreSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	if res := Check(context.Background(), srv.URL, "0.1.0"); res != nil {
		t.Errorf("expected nil on HTTP error, got %+v", res)
	}
}
