package todo

// IDParity restricts the list to even or odd numeric ids.
type IDParity int

const (
	ParityNone IDParity = iota
	ParityEven
	ParityOdd
)

func (p IDParity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

// Toggle returns target, or ParityNone when p already equals target.
func (p IDParity) Toggle(target IDParity) IDParity {
	if p == target {
		return ParityNone
	}
	return target
}

// Keep reports whether a record with numeric id n passes the filter.
func (p IDParity) Keep(n int) bool {
	switch p {
	case ParityEven:
		return n%2 == 0
	case ParityOdd:
		return n%2 != 0
	default:
		return true
	}
}

// SortMode orders the derived list by title.
type SortMode int

const (
	SortNone SortMode = iota
	SortTitleAsc
	SortTitleDesc
)

func (s SortMode) String() string {
	switch s {
	case SortTitleAsc:
		return "title-asc"
	case SortTitleDesc:
		return "title-desc"
	default:
		return "none"
	}
}

// Toggle returns target, or SortNone when s already equals target.
func (s SortMode) Toggle(target SortMode) SortMode {
	if s == target {
		return SortNone
	}
	return target
}

// FilterState groups the user controlled list settings.
type FilterState struct {
	Query  string
	Parity IDParity
	Sort   SortMode
}
