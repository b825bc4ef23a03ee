package escpos

// ESC/POS control sequences. These are the exact byte sequences the
// supported thermal printers expect; changing them breaks hardware
// compatibility.
const (
	esc = "\x1b"
	gs  = "\x1d"

	// Init resets the printer state.
	Init = esc + "@"

	// AlignLeft and AlignCenter select horizontal alignment.
	AlignLeft   = esc + "a\x00"
	AlignCenter = esc + "a\x01"

	// BoldOn and BoldOff toggle emphasized printing.
	BoldOn  = esc + "E\x01"
	BoldOff = esc + "E\x00"

	// DoubleSize prints double width + double height, DoubleHeight only
	// double height. NormalSize restores the default character size.
	DoubleSize   = esc + "!\x30"
	DoubleHeight = esc + "!\x10"
	NormalSize   = esc + "!\x00"

	// CodePage selects code page 16 (CP1252) so accented characters
	// print correctly.
	CodePage = esc + "t\x10"

	// Feed2 feeds two lines, Cut triggers a partial paper cut.
	Feed2 = esc + "d\x02"
	Cut   = gs + "V\x01"
)
