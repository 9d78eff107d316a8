// Command analyze prints quick, human-readable heuristics about map files in
// the project's maps directory. It summarizes dimensions, terrain composition,
// dynamic obstacle tracks, and highlights track positions that are out of
// bounds or parked on impassable terrain.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// AnalysisMap is a light struct for reading map files used by analysis.
type AnalysisMap struct {
	Width            int                        `json:"width"`
	Height           int                        `json:"height"`
	Grid             [][]int                    `json:"grid"`
	DynamicObstacles map[string][]AnalysisPoint `json:"dynamic_obstacles"`
}

// AnalysisPoint denotes a grid coordinate used during analysis output.
type AnalysisPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Terrain wire codes, mirroring the persisted map format.
const (
	codeRoad     = 0
	codeGrass    = 1
	codeWater    = 2
	codeMountain = 3
	codeBuilding = 4
)

var terrainNames = map[int]string{
	codeRoad:     "road",
	codeGrass:    "grass",
	codeWater:    "water",
	codeMountain: "mountain",
	codeBuilding: "building",
}

var terrainCosts = map[int]float64{
	codeRoad:     1,
	codeGrass:    2,
	codeWater:    3,
	codeMountain: 5,
}

func main() {
	mapsDir := "maps"
	if len(os.Args) > 1 {
		mapsDir = os.Args[1]
	}

	matches, err := filepath.Glob(filepath.Join(mapsDir, "*_map.json"))
	if err != nil || len(matches) == 0 {
		fmt.Printf("No map files found in %s (run 'create-maps' first)\n", mapsDir)
		return
	}
	sort.Strings(matches)

	for _, mapFile := range matches {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(mapFile))
		analyzeMap(mapFile)
	}
}

func analyzeMap(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var m AnalysisMap
	if err := json.Unmarshal(data, &m); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Grid Size: %d x %d\n", m.Width, m.Height)
	fmt.Printf("Dynamic Obstacles: %d\n", len(m.DynamicObstacles))

	// Terrain composition and average movement cost of passable cells
	counts := map[int]int{}
	totalCells := 0
	passableCells := 0
	costSum := 0.0
	for _, row := range m.Grid {
		for _, code := range row {
			counts[code]++
			totalCells++
			if code != codeBuilding {
				passableCells++
				costSum += terrainCosts[code]
			}
		}
	}

	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		name, ok := terrainNames[code]
		if !ok {
			name = fmt.Sprintf("unknown(%d)", code)
		}
		fmt.Printf("  %-10s %5d cells (%.1f%%)\n",
			name, counts[code], 100*float64(counts[code])/float64(totalCells))
	}

	if passableCells > 0 {
		fmt.Printf("Passable: %d/%d cells, average step cost %.2f\n",
			passableCells, totalCells, costSum/float64(passableCells))
	}

	// Worst-case route lower bound vs. the default fuel budget. A path can
	// never be shorter than the corner-to-corner Manhattan distance.
	cornerDist := (m.Width - 1) + (m.Height - 1)
	const defaultFuel = 100
	if cornerDist > defaultFuel {
		fmt.Printf("⚠️  WARNING: corner-to-corner distance %d exceeds default fuel %d\n",
			cornerDist, defaultFuel)
		fmt.Printf("   Agents on long routes will run dry without extra fuel\n")
	} else {
		fmt.Printf("✅ Corner-to-corner distance %d fits the default fuel budget\n", cornerDist)
	}

	// Obstacle track sanity
	names := make([]string, 0, len(m.DynamicObstacles))
	for name := range m.DynamicObstacles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		track := m.DynamicObstacles[name]
		fmt.Printf("Obstacle %s: track length %d\n", name, len(track))

		bad := 0
		for _, p := range track {
			if p.X < 0 || p.X >= m.Width || p.Y < 0 || p.Y >= m.Height {
				if bad < 5 {
					fmt.Printf("   ⚠️  Track position (%d, %d) is out of bounds\n", p.X, p.Y)
				}
				bad++
				continue
			}
			if m.Grid[p.Y][p.X] == codeBuilding {
				if bad < 5 {
					fmt.Printf("   ⚠️  Track position (%d, %d) is inside a building\n", p.X, p.Y)
				}
				bad++
			}
		}
		if bad > 5 {
			fmt.Printf("   ... and %d more bad positions\n", bad-5)
		}
		if bad == 0 {
			fmt.Printf("   ✅ All track positions are in bounds and passable\n")
		}
	}
}
