package farbfeld

// Pixel is a single image sample: four 16-bit channels, linear color with
// straight alpha.
type Pixel struct {
	R, G, B, A uint16
}

// Normalized returns the pixel channels scaled to the [0, 1] range.
func (p Pixel) Normalized() (r, g, b, a float64) {
	return float64(p.R) / channelMax,
		float64(p.G) / channelMax,
		float64(p.B) / channelMax,
		float64(p.A) / channelMax
}

// Grid holds decoded pixel data as rows of pixels in on-wire order: top to
// bottom, each row left to right. A well-formed grid is rectangular; the
// width is the length of the first row.
type Grid [][]Pixel

// dimensions derives the grid shape. The width comes from the first row,
// or is zero when there are no rows.
func (g Grid) dimensions() (width, height int) {
	height = len(g)
	if height > 0 {
		width = len(g[0])
	}
	return
}

// Normalized returns the grid with every channel scaled to the [0, 1]
// range, in the same row-major layout.
func (g Grid) Normalized() [][][4]float64 {
	rows := make([][][4]float64, len(g))
	for y, row := range g {
		rows[y] = make([][4]float64, len(row))
		for x, p := range row {
			r, gr, b, a := p.Normalized()
			rows[y][x] = [4]float64{r, gr, b, a}
		}
	}
	return rows
}
