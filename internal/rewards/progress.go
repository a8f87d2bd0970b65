package rewards

// Progress returns how far points are towards the last milestone, in [0,1].
func Progress(points int) float64 {
	if points <= 0 {
		return 0
	}
	if points >= MaxPoints {
		return 1
	}
	return float64(points) / MaxPoints
}

// Unlocked returns the milestones reached with the given points.
func Unlocked(points int) []Milestone {
	var out []Milestone
	for _, m := range Milestones() {
		if points >= m.Points {
			out = append(out, m)
		}
	}
	return out
}

// Next returns the next milestone to reach, or false when all are unlocked.
func Next(points int) (Milestone, bool) {
	for _, m := range Milestones() {
		if points < m.Points {
			return m, true
		}
	}
	return Milestone{}, false
}

// crossed returns milestones reached by going from before to after points.
func crossed(before, after int) []Milestone {
	var out []Milestone
	for _, m := range Milestones() {
		if before < m.Points && after >= m.Points {
			out = append(out, m)
		}
	}
	return out
}
