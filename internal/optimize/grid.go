package optimize

// Combo is one parameter combination drawn from a grid.
type Combo map[string]any

// Grid enumerates the Cartesian product of the range's value lists in
// nested-loop order: the last key varies fastest. A spec with no keys, or
// with any key expanding to zero values, produces an empty grid.
func Grid(r *Ranges) []Combo {
	if r.Len() == 0 {
		return nil
	}

	total := 1
	for _, k := range r.keys {
		total *= len(r.values[k])
	}
	if total == 0 {
		return nil
	}

	grid := make([]Combo, 0, total)
	idx := make([]int, r.Len())
	for {
		combo := make(Combo, r.Len())
		for i, k := range r.keys {
			combo[k] = r.values[k][idx[i]]
		}
		grid = append(grid, combo)

		pos := r.Len() - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(r.values[r.keys[pos]]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return grid
		}
	}
}
