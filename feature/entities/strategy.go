package entities

// Strategy is one candidate way of producing a value.
type Strategy[T any] struct {
	Name string
	Try  func() (T, bool)
}

// Tagged is a value together with the strategy that produced it.
type Tagged[T any] struct {
	Value    T
	Strategy string
}

// FirstSuccess evaluates strategies in order and returns the first value
// produced. ok is false when every strategy declines.
func FirstSuccess[T any](strategies ...Strategy[T]) (result Tagged[T], ok bool) {
	for _, s := range strategies {
		if s.Try == nil {
			continue
		}
		if v, found := s.Try(); found {
			return Tagged[T]{Value: v, Strategy: s.Name}, true
		}
	}
	return result, false
}

// Fixed is a strategy that always succeeds with v.
func Fixed[T any](name string, v T) Strategy[T] {
	return Strategy[T]{Name: name, Try: func() (T, bool) { return v, true }}
}
