package models

func canTransition[S ~string](rules map[S][]S, from, to S) bool {
	if from == to {
		return true
	}
	for _, allowed := range rules[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
