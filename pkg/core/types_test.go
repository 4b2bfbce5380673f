package core

import "testing"

func TestSourceDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.nationalgeographic.com/animals/turtle", "nationalgeographic.com"},
		{"https://es.wikipedia.org/wiki/Chelonia_mydas", "es.wikipedia.org"},
		{"http://noaa.gov", "noaa.gov"},
		{"not a url", UnknownSource},
		{"", UnknownSource},
	}
	for _, tt := range tests {
		if got := SourceDomain(tt.url); got != tt.want {
			t.Errorf("SourceDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	if got := NormalizeQuery("  Coral Blanqueado "); got != "coral blanqueado" {
		t.Fatalf("NormalizeQuery = %q", got)
	}
}
