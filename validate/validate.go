// Command validate provides a small CLI that validates map JSON files in the
// ../maps directory. It checks:
//   - JSON structure and required fields
//   - Grid dimensions and allowed terrain codes (0-4)
//   - Presence of at least one passable cell
//   - Dynamic obstacle tracks: non-empty, in bounds, not inside buildings
//   - Connectivity: all passable cells form a single connected region
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MapDocument mirrors the JSON schema for a persisted map.
type MapDocument struct {
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	Grid             [][]int            `json:"grid"`
	DynamicObstacles map[string][]Point `json:"dynamic_obstacles"`
}

// Point is a grid coordinate in the map file.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Terrain wire codes from the map format.
const (
	codeRoad     = 0
	codeBuilding = 4
	maxCode      = 4

	minGridDim = 2
	maxGridDim = 256
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateMap loads and validates a single map JSON file. It performs
// structural checks, terrain code validation, obstacle track checks, and
// connectivity analysis over the passable cells.
func validateMap(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var doc MapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Validate dimensions
	if doc.Width < minGridDim || doc.Width > maxGridDim {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("width must be between %d and %d, got %d", minGridDim, maxGridDim, doc.Width))
	}
	if doc.Height < minGridDim || doc.Height > maxGridDim {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("height must be between %d and %d, got %d", minGridDim, maxGridDim, doc.Height))
	}

	// Validate grid shape and terrain codes
	if len(doc.Grid) != doc.Height {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Grid has %d rows, expected %d", len(doc.Grid), doc.Height))
	}

	passableCount := 0
	buildingCount := 0
	for y, row := range doc.Grid {
		if len(row) != doc.Width {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Inconsistent grid width at row %d: expected %d, got %d", y+1, doc.Width, len(row)))
		}
		for x, code := range row {
			if code < 0 || code > maxCode {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid terrain code %d at position [%d,%d]", code, y+1, x+1))
				continue
			}
			if code == codeBuilding {
				buildingCount++
			} else {
				passableCount++
			}
		}
	}

	if passableCount == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Map has no passable cells")
	}

	// Validate dynamic obstacle tracks
	names := make([]string, 0, len(doc.DynamicObstacles))
	for name := range doc.DynamicObstacles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		track := doc.DynamicObstacles[name]
		if name == "" {
			result.Valid = false
			result.Errors = append(result.Errors, "Dynamic obstacle with empty name")
		}
		if len(track) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Obstacle %q has an empty track", name))
			continue
		}
		for i, p := range track {
			if p.X < 0 || p.X >= doc.Width || p.Y < 0 || p.Y >= doc.Height {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Obstacle %q track position %d at (%d,%d) is out of bounds", name, i, p.X, p.Y))
				continue
			}
			if doc.Grid[p.Y][p.X] == codeBuilding {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Obstacle %q track position %d at (%d,%d) is inside a building", name, i, p.X, p.Y))
			}
		}
	}

	// Connectivity validation - check passable cells form one region
	if result.Valid {
		connectivity := validateConnectivity(doc.Grid, doc.Width, doc.Height, passableCount)
		if !connectivity.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, connectivity.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", doc.Width, doc.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Passable cells: %d", passableCount))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Building cells: %d", buildingCount))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Dynamic obstacles: %d", len(doc.DynamicObstacles)))
	}

	return result
}

// validateConnectivity flood fills from the first passable cell using
// 4-directional movement and reports any passable cells that the fill never
// reached. Split regions mean some deliveries can never complete.
func validateConnectivity(grid [][]int, width, height, passableCount int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	start := Point{X: -1, Y: -1}
	for y := 0; y < height && start.X < 0; y++ {
		for x := 0; x < width; x++ {
			if grid[y][x] != codeBuilding {
				start = Point{X: x, Y: y}
				break
			}
		}
	}
	if start.X < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate connectivity: no passable cells")
		return result
	}

	isPassable := func(x, y int) bool {
		if x < 0 || y < 0 || y >= height || x >= width {
			return false
		}
		return grid[y][x] != codeBuilding
	}

	visited := make(map[Point]bool)
	queue := []Point{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		directions := []Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
		for _, d := range directions {
			next := Point{X: current.X + d.X, Y: current.Y + d.Y}
			if !visited[next] && isPassable(next.X, next.Y) {
				queue = append(queue, next)
			}
		}
	}

	unreachable := passableCount - len(visited)
	if unreachable > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d passable cells unreachable from (%d,%d)", unreachable, passableCount, start.X, start.Y))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: all %d passable cells form one region", passableCount))
	}

	return result
}

// main scans ../maps for *_map.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	mapsDir := "../maps"
	if len(os.Args) > 1 {
		mapsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(mapsDir, "*_map.json"))
	if err != nil {
		fmt.Printf("Error finding map files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateMap(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All maps are valid!")
	} else {
		fmt.Println("❌ Some maps have errors")
		os.Exit(1)
	}
}
