package timeline

import "math"

// Snap resolves a candidate time against sibling item edges and a time grid
// of size grid. Whichever target is strictly nearest wins, with edges
// beating the grid on exact ties; targets further than grid away do not
// snap. Returns the snapped value and whether a snap occurred — on false
// the caller keeps the raw candidate.
func Snap(candidate float64, edges []float64, grid float64) (float64, bool) {
	bestEdge, edgeDist := nearestOf(edges, candidate)

	gridPoint := 0.0
	gridDist := math.Inf(1)
	if grid > 0 {
		gridPoint = math.Round(candidate/grid) * grid
		gridDist = math.Abs(candidate - gridPoint)
	}

	if edgeDist <= grid && edgeDist <= gridDist {
		return bestEdge, true
	}
	if gridDist <= grid {
		return gridPoint, true
	}
	return 0, false
}

// ItemEdges collects the start and end times of every item except the one
// being positioned, for use as snap targets.
func ItemEdges(items []Item, excludeID string) []float64 {
	edges := make([]float64, 0, len(items)*2)
	for _, it := range items {
		if it.ID == excludeID {
			continue
		}
		edges = append(edges, it.StartTime, it.EndTime)
	}
	return edges
}

func nearestOf(values []float64, target float64) (best, dist float64) {
	dist = math.Inf(1)
	for _, v := range values {
		if d := math.Abs(target - v); d < dist {
			best, dist = v, d
		}
	}
	return best, dist
}
