package sqlbuilder

import "fmt"

// EmptyPolicy decides what a search returns when no rows match.
type EmptyPolicy int

const (
	// FailOnEmpty turns zero rows into the caller's not-found error.
	FailOnEmpty EmptyPolicy = iota
	// AllowEmpty returns an empty result.
	AllowEmpty
)

// ParseEmptyPolicy accepts "fail" (or "") and "empty".
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch s {
	case "", "fail":
		return FailOnEmpty, nil
	case "empty":
		return AllowEmpty, nil
	default:
		return FailOnEmpty, fmt.Errorf("unknown empty result policy %q", s)
	}
}

func (p EmptyPolicy) String() string {
	if p == AllowEmpty {
		return "empty"
	}
	return "fail"
}

// Check returns notFound when n is zero under FailOnEmpty.
func (p EmptyPolicy) Check(n int, notFound error) error {
	if n == 0 && p == FailOnEmpty {
		return notFound
	}
	return nil
}
