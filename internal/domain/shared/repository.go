package shared

// Filter represents query filter options shared by list operations
type Filter struct {
	Limit  int
	Offset int
}

// DefaultFilter returns a filter with default pagination values
func DefaultFilter() Filter {
	return Filter{
		Limit:  100,
		Offset: 0,
	}
}

// Clamp bounds the filter to sane values. Limits follow the original API
// contract: 1..200 with a default of 100.
func (f Filter) Clamp() Filter {
	if f.Limit < 1 {
		f.Limit = 100
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
