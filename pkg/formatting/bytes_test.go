package formatting_test

import (
	"testing"

	"github.com/JaimeStill/folio/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"bytes unit", "512B", 512, false},
		{"kilobytes", "1KB", 1024, false},
		{"megabytes", "50MB", 50 << 20, false},
		{"gigabytes", "2GB", 2 << 30, false},
		{"terabytes", "1TB", 1 << 40, false},
		{"lowercase unit", "10mb", 10 << 20, false},
		{"short unit", "512k", 512 << 10, false},
		{"iec unit", "2MiB", 2 << 20, false},
		{"fractional", "1.5 MB", 3 << 19, false},
		{"with space", "100 MB", 100 << 20, false},
		{"surrounding whitespace", "  50MB  ", 50 << 20, false},
		{"zero", "0", 0, false},
		{"empty string", "", 0, true},
		{"unknown unit", "50XX", 0, true},
		{"no number", "MB", 0, true},
		{"negative", "-5MB", 0, true},
		{"two decimal points", "1.2.3MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 2, "0 B"},
		{"bytes", 500, 0, "500 B"},
		{"sub-KB with precision", 1023, 1, "1023.0 B"},
		{"one KB", 1024, 0, "1 KB"},
		{"one MB", 1 << 20, 0, "1 MB"},
		{"fractional MB", 1536 << 10, 1, "1.5 MB"},
		{"ten MB ceiling", 10 << 20, 1, "10.0 MB"},
		{"negative precision clamped to zero", 1024, -1, "1 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.FormatBytes(tt.n, tt.precision)
			if got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int64{1 << 10, 50 << 20, 1 << 30, 1 << 40} {
		formatted := formatting.FormatBytes(n, 0)
		parsed, err := formatting.ParseBytes(formatted)
		if err != nil {
			t.Fatalf("ParseBytes(%q) error = %v", formatted, err)
		}
		if parsed != n {
			t.Errorf("round trip: %d -> %q -> %d", n, formatted, parsed)
		}
	}
}

func TestSizeText(t *testing.T) {
	var s formatting.Size
	if err := s.UnmarshalText([]byte("5MB")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if s.Bytes() != 5<<20 {
		t.Errorf("Bytes() = %d, want %d", s.Bytes(), 5<<20)
	}

	text, err := s.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(text) != "5.0 MB" {
		t.Errorf("MarshalText() = %q, want %q", text, "5.0 MB")
	}

	if err := s.UnmarshalText([]byte("lots")); err == nil {
		t.Error("UnmarshalText(lots) should fail")
	}
}
