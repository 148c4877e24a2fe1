package board

// Cell is a 1-based row/column on the 11x11 board grid.
type Cell struct {
	Row int
	Col int
}

var grid = func() [Size]Cell {
	var g [Size]Cell
	for i := 0; i <= 10; i++ {
		g[i] = Cell{Row: 11, Col: 11 - i}
	}
	for i := 1; i <= 10; i++ {
		g[10+i] = Cell{Row: 11 - i, Col: 1}
	}
	for i := 1; i <= 10; i++ {
		g[20+i] = Cell{Row: 1, Col: i + 1}
	}
	for i := 1; i <= 9; i++ {
		g[30+i] = Cell{Row: i + 1, Col: 11}
	}
	return g
}()

// CellOf returns the grid placement of tile i.
func CellOf(i int) Cell {
	return grid[Normalize(i)]
}
