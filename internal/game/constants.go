package game

const (
	// CodeLength is the length of generated join codes
	CodeLength = 6

	// CodeChars are the characters used for join codes (excluding ambiguous chars)
	CodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// DummyNamePrefix names bot players that fill empty seats
	DummyNamePrefix = "Bot"
)

// Colors is the fixed player palette, handed out by join order
var Colors = []string{
	"#C51111", // red
	"#132ED1", // blue
	"#117F2D", // green
	"#ED54BA", // pink
	"#EF7D0D", // orange
	"#F5F557", // yellow
	"#3F474E", // black
	"#D6E0F0", // white
	"#6B2FBB", // purple
	"#71491E", // brown
	"#38FEDC", // cyan
	"#50EF39", // lime
}
