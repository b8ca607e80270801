package printing

// sideBearings are the left and right side bearings of a glyph in 1/1000 em,
// taken from the glyph boxes of the bold PDF core fonts (llx and WX-urx).
type sideBearings struct {
	left, right float64
}

// coreBoldBearings covers the characters a net weight can contain. Courier
// is monospaced with digits centered in their cell, so it is left out and
// measured by advance width.
var coreBoldBearings = map[string]map[rune]sideBearings{
	"Helvetica": {
		'0': {32, 32},
		'1': {69, 178},
		'2': {26, 45},
		'3': {27, 40},
		'4': {27, 30},
		'5': {27, 40},
		'6': {31, 36},
		'7': {25, 28},
		'8': {32, 32},
		'9': {30, 34},
		'.': {64, 64},
		'-': {32, 32},
	},
	"Times": {
		'0': {24, 24},
		'1': {65, 58},
		'2': {17, 22},
		'3': {16, 32},
		'4': {19, 25},
		'5': {22, 30},
		'6': {28, 25},
		'7': {17, 23},
		'8': {28, 28},
		'9': {26, 27},
		'.': {41, 40},
		'-': {44, 46},
	},
}

// inkInsets returns how far the ink of text starts after its pen origin and
// ends before its advance width, in points at size. Unknown glyphs count as
// having no bearing.
func inkInsets(family, text string, size float64) (left, right float64) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, 0
	}
	table := coreBoldBearings[family]
	scale := size / 1000
	return table[runes[0]].left * scale, table[runes[len(runes)-1]].right * scale
}
