package emulator

import (
	"strconv"
	"strings"

	"muxkit/internal/grid"
)

// cube216 projects an 8-bit-per-channel RGB color to the 216-color cube,
// per the adaptor's ingress mapping: 16 + (r/51)*36 + (g/51)*6 + (b/51).
func cube216(r, g, b uint8) uint8 {
	return uint8(16 + int(r/51)*36 + int(g/51)*6 + int(b/51))
}

// attrsOf decodes the SGR escape sequence produced by midterm's
// Format.Render() into the grid's cell attribute representation. This is
// the adaptor's color-mapping boundary: the emulator is otherwise opaque,
// but Render() is the one confirmed surface for recovering a region's
// resolved fg/bg/attributes.
func attrsOf(seq string) (fg, bg uint8, attrs grid.AttrMask, flags grid.ColorFlags) {
	flags = grid.FlagFgDefault | grid.FlagBgDefault

	body := seq
	body = strings.TrimPrefix(body, "\x1b[")
	body = strings.TrimSuffix(body, "m")
	if body == "" || body == "0" {
		return fg, bg, attrs, flags
	}
	parts := strings.Split(body, ";")
	for i := 0; i < len(parts); i++ {
		code, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			attrs = 0
			flags = grid.FlagFgDefault | grid.FlagBgDefault
		case code == 1:
			attrs |= grid.AttrBold
		case code == 3:
			attrs |= grid.AttrItalic
		case code == 4:
			attrs |= grid.AttrUnderline
		case code == 7:
			attrs |= grid.AttrReverse
		case code == 39:
			flags |= grid.FlagFgDefault
		case code == 49:
			flags |= grid.FlagBgDefault
		case code >= 30 && code <= 37:
			fg = uint8(code - 30)
			flags &^= grid.FlagFgDefault
		case code >= 90 && code <= 97:
			fg = uint8(code - 90 + 8)
			flags &^= grid.FlagFgDefault
		case code >= 40 && code <= 47:
			bg = uint8(code - 40)
			flags &^= grid.FlagBgDefault
		case code >= 100 && code <= 107:
			bg = uint8(code - 100 + 8)
			flags &^= grid.FlagBgDefault
		case code == 38 && i+1 < len(parts):
			n, consumed := parseExtendedColor(parts[i+1:])
			fg = n
			flags &^= grid.FlagFgDefault
			i += consumed
		case code == 48 && i+1 < len(parts):
			n, consumed := parseExtendedColor(parts[i+1:])
			bg = n
			flags &^= grid.FlagBgDefault
			i += consumed
		}
	}
	return fg, bg, attrs, flags
}

// parseExtendedColor parses the tail of a 38;... or 48;... sequence:
// either "5;N" (indexed) or "2;r;g;b" (truecolor, projected to the
// 216-color cube). It returns the resolved palette index and how many
// extra parts were consumed.
func parseExtendedColor(parts []string) (uint8, int) {
	if len(parts) == 0 {
		return 0, 0
	}
	mode, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0
	}
	switch mode {
	case 5:
		if len(parts) < 2 {
			return 0, 1
		}
		n, _ := strconv.Atoi(parts[1])
		return uint8(n), 2
	case 2:
		if len(parts) < 4 {
			return 0, len(parts)
		}
		r, _ := strconv.Atoi(parts[1])
		g, _ := strconv.Atoi(parts[2])
		b, _ := strconv.Atoi(parts[3])
		return cube216(uint8(r), uint8(g), uint8(b)), 4
	}
	return 0, 1
}

// renderSGR is the inverse used by sync_vterm_from_grid: it builds the
// SGR escape that reproduces a cell's attributes and colors.
func renderSGR(c grid.Cell) string {
	var codes []string
	codes = append(codes, "0")
	if c.HasAttr(grid.AttrBold) {
		codes = append(codes, "1")
	}
	if c.HasAttr(grid.AttrItalic) {
		codes = append(codes, "3")
	}
	if c.HasAttr(grid.AttrUnderline) {
		codes = append(codes, "4")
	}
	if c.HasAttr(grid.AttrReverse) {
		codes = append(codes, "7")
	}
	if c.Flags&grid.FlagFgDefault != 0 {
		codes = append(codes, "39")
	} else {
		codes = append(codes, "38", "5", strconv.Itoa(int(c.Fg)))
	}
	if c.Flags&grid.FlagBgDefault != 0 {
		codes = append(codes, "49")
	} else {
		codes = append(codes, "48", "5", strconv.Itoa(int(c.Bg)))
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}
