package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"en-US", "en"},
		{"pt_BR", "pt"},
		{" es ", "es"},
		{"zh-CN", "zh"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToLocale(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en-US"},
		{"EN", "en-US"},
		{"pt", "pt-BR"},
		{"zh", "zh-CN"},
		{"ja", "ja-JP"},
		// Codes outside the table use the doubled convention
		{"th", "th-TH"},
		{"vi", "vi-VI"},
	}

	for _, tt := range tests {
		if got := ToLocale(tt.input); got != tt.want {
			t.Errorf("ToLocale(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFromLocale(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"fr", "fr"},
	}

	for _, tt := range tests {
		if got := FromLocale(tt.input); got != tt.want {
			t.Errorf("FromLocale(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
