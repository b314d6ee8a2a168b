package domain

// AverageDepth returns the arithmetic mean depth in kilometres, or 0 for no records.
func AverageDepth(records []EarthquakeRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Depth
	}
	return sum / float64(len(records))
}

// FilterByMaxDepth keeps records no deeper than maxDepthKm, preserving order.
func FilterByMaxDepth(records []EarthquakeRecord, maxDepthKm float64) []EarthquakeRecord {
	out := make([]EarthquakeRecord, 0, len(records))
	for _, r := range records {
		if r.Depth <= maxDepthKm {
			out = append(out, r)
		}
	}
	return out
}
