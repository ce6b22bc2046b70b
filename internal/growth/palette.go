package growth

// Palette is the fixed set of butterfly colors, assigned in order as weeks complete.
var Palette = []string{
	"#FFB6C1",
	"#E6E6FA",
	"#98FB98",
	"#FFDAB9",
	"#87CEEB",
	"#DDA0DD",
	"#F0E68C",
	"#E0BBE4",
}

// ButterflyColor returns the palette color for the n-th completed week,
// counting from zero. n is a ledger length and never negative.
func ButterflyColor(n int) string {
	return Palette[n%len(Palette)]
}
