package model

// Policy selects how engine components treat out-of-contract input.
type Policy int

const (
	// Strict surfaces invalid input as errors.
	Strict Policy = iota
	// Lenient substitutes safe defaults and never fails.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// PolicyFor maps a strict flag to a Policy.
func PolicyFor(strict bool) Policy {
	if strict {
		return Strict
	}
	return Lenient
}
