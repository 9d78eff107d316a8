package engine

// TerrainType represents different types of grid cells
type TerrainType string

const (
	Road     TerrainType = "road"
	Grass    TerrainType = "grass"
	Water    TerrainType = "water"
	Mountain TerrainType = "mountain"
	Building TerrainType = "building"

	// Validation constants
	MinGridDim = 2
	MaxGridDim = 256
)

// Terrain codes used by the persisted map format. They are stable wire
// values and must not be renumbered.
const (
	CodeRoad     = 0
	CodeGrass    = 1
	CodeWater    = 2
	CodeMountain = 3
	CodeBuilding = 4
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MovementCost returns the cost of stepping onto a cell of the given terrain.
// Building cells are impassable and report a cost of 0; callers must reject
// them via Passable before charging cost.
func MovementCost(t TerrainType) float64 {
	switch t {
	case Road:
		return 1
	case Grass:
		return 2
	case Water:
		return 3
	case Mountain:
		return 5
	default:
		return 0
	}
}

// Passable reports whether an agent may ever occupy the given terrain.
func Passable(t TerrainType) bool {
	return t != Building
}

// TerrainCode returns the wire code for a terrain type.
func TerrainCode(t TerrainType) int {
	switch t {
	case Road:
		return CodeRoad
	case Grass:
		return CodeGrass
	case Water:
		return CodeWater
	case Mountain:
		return CodeMountain
	case Building:
		return CodeBuilding
	default:
		return CodeRoad
	}
}

// TerrainFromCode maps a wire code back to a terrain type.
// Unknown codes are a load error per the map format contract.
func TerrainFromCode(code int) (TerrainType, error) {
	switch code {
	case CodeRoad:
		return Road, nil
	case CodeGrass:
		return Grass, nil
	case CodeWater:
		return Water, nil
	case CodeMountain:
		return Mountain, nil
	case CodeBuilding:
		return Building, nil
	default:
		return "", ErrUnknownTerrainCode
	}
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
