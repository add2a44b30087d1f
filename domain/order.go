package domain

// NextRank returns the rank for an appended task given the team's current
// maximum active rank, or -1 when the team has no active tasks. Appending
// always takes max+1, so a gap left by a soft delete is never refilled.
func NextRank(maxRank int) int { return maxRank + 1 }

// Shift is a contiguous block of active ranks that moves by Delta to make
// room for a task landing on a new rank. Bounds are inclusive.
type Shift struct {
	From  int
	To    int
	Delta int
}

// PlanMove computes the single shift required to move a task from oldRank to
// newRank. Moving toward the front pushes [newRank, oldRank) back by one;
// moving toward the back pulls (oldRank, newRank] forward by one. ok is false
// when the ranks are equal and nothing needs to be written.
func PlanMove(oldRank, newRank int) (Shift, bool) {
	switch {
	case newRank == oldRank:
		return Shift{}, false
	case newRank < oldRank:
		return Shift{From: newRank, To: oldRank - 1, Delta: 1}, true
	default:
		return Shift{From: oldRank + 1, To: newRank, Delta: -1}, true
	}
}
