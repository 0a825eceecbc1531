package geometry

import "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

// FrancisBlueprint 立式混流机蜗壳/座环示例蓝图
func FrancisBlueprint() Blueprint {
	return Blueprint{
		TurbineFamily: models.TurbineFrancis,
		Variant:       "francis_vertical",
		Points: []BlueprintPoint{
			{Name: "Spiral Case Inlet", Coord: Coord{X: 1500, Y: 2000, Z: 500}, Tolerance: 2.0},
			{Name: "Spiral Case Section A", Coord: Coord{X: 1450, Y: 1980, Z: 490}, Tolerance: 1.5},
			{Name: "Stay Ring Bolt Hole 1", Coord: Coord{X: 1200, Y: 1800, Z: 450}, Tolerance: 0.5},
		},
	}
}
