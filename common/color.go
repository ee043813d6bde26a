package common

// Color is an 8-bit per channel RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Common colors used by the default tile catalog and demo content.
var (
	ColorBlack = Color{0, 0, 0, 255}
	ColorWhite = Color{255, 255, 255, 255}
	ColorRed   = Color{255, 0, 0, 255}
	ColorGreen = Color{0, 255, 0, 255}
	ColorBlue  = Color{0, 0, 255, 255}
)

// RGB builds an opaque color from its red, green and blue channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Pack returns the color as a little-endian RGBA8 word with red in the low byte.
// This is the layout WGSL's unpack4x8unorm expects.
//
// Returns:
//   - uint32: the packed color
func (c Color) Pack() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}
