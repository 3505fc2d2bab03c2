package world

// NeighborOffsets lists the eight (row, col) offsets of the Moore neighbourhood.
var NeighborOffsets = [8]Coord{
	{Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1},
	{Row: 0, Col: -1}, {Row: 0, Col: 1},
	{Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
}

// Neighborhood counts the occupied cells around (row, col) and how many of
// them share the centre's kind. Only in-bounds neighbours are examined (no
// wraparound) and the centre never counts itself, so 0 <= same <= total <= 8.
// An empty centre yields (0, 0).
func Neighborhood(g *Grid, row, col int) (same, total int) {
	center := g.Kind(row, col)
	if center == Empty {
		return 0, 0
	}

	for _, d := range NeighborOffsets {
		r, c := row+d.Row, col+d.Col
		if !g.InBounds(r, c) {
			continue
		}
		k := g.cells[r*g.size+c].Kind
		if k == Empty {
			continue
		}
		total++
		if k == center {
			same++
		}
	}
	return same, total
}

// Satisfied applies the threshold rule: an agent with no occupied neighbours
// is satisfied, otherwise the same-kind fraction must reach the threshold.
func Satisfied(same, total int, threshold float64) bool {
	if total == 0 {
		return true
	}
	return float64(same)/float64(total) >= threshold
}

// SimilarityRatio returns same/total, or 1 when there are no occupied neighbours.
func SimilarityRatio(same, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(same) / float64(total)
}
