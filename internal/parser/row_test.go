package parser

import (
	"testing"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

func TestParseRowAccount(t *testing.T) {
	row, ok := ParseRow("Account $280.00 - $0.00 - $280.00")
	if !ok {
		t.Fatal("expected Account row to parse")
	}
	want := models.SummaryRow{
		Identifier:     "Account",
		LineType:       "",
		Plans:          "$280.00",
		Equipment:      "-",
		Services:       "$0.00",
		OneTimeCharges: "-",
		Total:          "$280.00",
	}
	if row != want {
		t.Errorf("got %+v, want %+v", row, want)
	}
}

func TestParseRowMember(t *testing.T) {
	row, ok := ParseRow("(999) 637-3009 Voice Included - - $0.53 $0.53")
	if !ok {
		t.Fatal("expected member row to parse")
	}
	want := models.SummaryRow{
		Identifier:     "(999) 637-3009",
		LineType:       "Voice",
		Plans:          "Included",
		Equipment:      "-",
		Services:       "-",
		OneTimeCharges: "$0.53",
		Total:          "$0.53",
	}
	if row != want {
		t.Errorf("got %+v, want %+v", row, want)
	}
}

func TestParseRowNonBreakingSpace(t *testing.T) {
	// pypdf-style extraction renders the phone with a non-breaking space
	row, ok := ParseRow("(999) 637-3009 Voice $40.00 $10.00 - - $50.00")
	if !ok {
		t.Fatal("expected member row to parse")
	}
	if row.Identifier != "(999) 637-3009" {
		t.Errorf("identifier: got %q, want %q", row.Identifier, "(999) 637-3009")
	}
	if row.Plans != "$40.00" {
		t.Errorf("plans: got %q, want %q", row.Plans, "$40.00")
	}
}

func TestParseRowFurnitureDropped(t *testing.T) {
	tests := []string{
		"",
		"Line Type Plans Equipment Services One-time charges Total",
		"Thanks for being a customer since 2015",
		"Totals $320.00 $10.00 $0.00 $0.53 $330.53",
		"(999) 637-3009 Data Included - - $0.53 $0.53", // wrong line type
		"Account $280.00 -",                            // too few tokens
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			if _, ok := ParseRow(line); ok {
				t.Errorf("expected %q to be dropped", line)
			}
		})
	}
}

func TestParseTokenRow(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   models.SummaryRow
		ok     bool
	}{
		{
			name:   "account row",
			tokens: []string{"Account", "$280.00", "-", "$0.00", "-", "$280.00"},
			want: models.SummaryRow{
				Identifier: "Account", Plans: "$280.00", Equipment: "-",
				Services: "$0.00", OneTimeCharges: "-", Total: "$280.00",
			},
			ok: true,
		},
		{
			name:   "member row without line type",
			tokens: []string{"(999) 637-3009", "Included", "-", "-", "$0.53", "$0.53"},
			want: models.SummaryRow{
				Identifier: "(999) 637-3009", LineType: "Voice", Plans: "Included",
				Equipment: "-", Services: "-", OneTimeCharges: "$0.53", Total: "$0.53",
			},
			ok: true,
		},
		{
			name:   "member row with Voice token",
			tokens: []string{"(999) 637-3011", "Voice", "$40.00", "$10.00", "-", "-", "$50.00"},
			want: models.SummaryRow{
				Identifier: "(999) 637-3011", LineType: "Voice", Plans: "$40.00",
				Equipment: "$10.00", Services: "-", OneTimeCharges: "-", Total: "$50.00",
			},
			ok: true,
		},
		{
			name:   "narrow grid gets padded second-to-last",
			tokens: []string{"(999) 637-3009", "Included", "-", "$0.53"},
			want: models.SummaryRow{
				Identifier: "(999) 637-3009", LineType: "Voice", Plans: "Included",
				Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$0.53",
			},
			ok: true,
		},
		{
			name:   "unknown identifier rejected",
			tokens: []string{"Totals", "$320.00", "$10.00", "$0.00", "$0.53", "$330.53"},
			ok:     false,
		},
		{
			name:   "too few tokens",
			tokens: []string{"(999) 637-3009"},
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTokenRow(tt.tokens)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
