package ui

import (
	"image"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/image/draw"
)

// cellColors is the pixel pair packed into one half-block cell.
type cellColors struct {
	top, bottom color.RGBA
}

// RenderFrame draws img into a width x height cell grid. Each cell packs two
// vertical pixels into an upper half block, foreground on top and background
// below. The aspect ratio is kept and the picture is centered.
func RenderFrame(img image.Image, width, height int) string {
	if img == nil || width <= 0 || height <= 0 {
		return ""
	}
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return ""
	}

	w, h := fit(src.Dx(), src.Dy(), width, height*2)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	styles := make(map[cellColors]lipgloss.Style)
	pad := strings.Repeat(" ", (width-w)/2)
	var b strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pad)
		for x := 0; x < w; x++ {
			c := cellColors{top: dst.RGBAAt(x, y)}
			c.bottom = c.top
			if y+1 < h {
				c.bottom = dst.RGBAAt(x, y+1)
			}
			st, ok := styles[c]
			if !ok {
				st = lipgloss.NewStyle().Foreground(c.top).Background(c.bottom)
				styles[c] = st
			}
			b.WriteString(st.Render("▀"))
		}
	}
	return b.String()
}

// fit scales (sw, sh) to the largest size inside (maxW, maxH) with the same
// aspect ratio.
func fit(sw, sh, maxW, maxH int) (int, int) {
	w := maxW
	h := sh * maxW / sw
	if h > maxH {
		h = maxH
		w = sw * maxH / sh
	}
	return max(w, 1), max(h, 1)
}
