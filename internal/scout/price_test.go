package scout

import "testing"

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "noisy ebay string", raw: "Now $1,249.99 - Buy It Now", want: "$1,249.99"},
		{name: "plain amount", raw: "650.00", want: "$650.00"},
		{name: "already prefixed", raw: "$19.95", want: "$19.95"},
		{name: "thousands separators", raw: "USD 12,345.00 shipped", want: "$12,345.00"},
		{name: "no decimals falls back verbatim", raw: "about 50 bucks", want: "about 50 bucks"},
		{name: "one decimal digit falls back verbatim", raw: "9.9", want: "9.9"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.raw); got != tt.want {
				t.Fatalf("FormatPrice(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
