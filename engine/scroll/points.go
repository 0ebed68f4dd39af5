package scroll

// ActivePoints reports, for each of count navigation points, whether it is the
// active one. Exactly the point whose index equals section is active; a section
// outside [0, count) leaves every point inactive.
//
// Parameters:
//   - count: number of navigation points
//   - section: the current section index
//
// Returns:
//   - []bool: active flags indexed by point
func ActivePoints(count, section int) []bool {
	if count <= 0 {
		return nil
	}
	active := make([]bool, count)
	if section >= 0 && section < count {
		active[section] = true
	}
	return active
}
