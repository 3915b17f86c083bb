package game

// ApplyTemporaryModifier replaces any active modifier; modifiers never stack.
func ApplyTemporaryModifier(s GameState, weeks int, value float64) GameState {
	next := s.Clone()
	if weeks <= 0 {
		next.DifficultyModifier = nil
		return next
	}
	next.DifficultyModifier = &DifficultyModifier{RemainingWeeks: weeks, Modifier: value}
	return next
}

func TickModifier(s GameState) GameState {
	if s.DifficultyModifier == nil {
		return s
	}
	next := s.Clone()
	next.DifficultyModifier.RemainingWeeks--
	if next.DifficultyModifier.RemainingWeeks <= 0 {
		next.DifficultyModifier = nil
	}
	return next
}
