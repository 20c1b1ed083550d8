package roadmap

// Layout geometry. The only contract is determinism: coordinates are a pure
// function of a node's chain position and category. Depth grows down the y
// axis; non-synthetic nodes alternate around the center column by parity.

const (
	rowGap    = 140.0
	colOffset = 220.0
)

func place(pos int, cat Category) (x, y float64) {
	y = float64(pos) * rowGap
	switch cat {
	case CategoryStart, CategoryFinish:
		x = 0
	default:
		if pos%2 == 0 {
			x = -colOffset
		} else {
			x = colOffset
		}
	}
	return x, y
}
