package filter

// Outcome is the per-item verdict of a single predicate.
type Outcome int

const (
	// Unknown means the attribute is absent or could not be parsed.
	Unknown Outcome = iota
	// Pass means the attribute is present and within bounds.
	Pass
	// Fail means the attribute is present and out of bounds.
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Keep resolves an outcome under the missing-data policy. In strict mode
// Unknown excludes the item, otherwise it is kept.
func (o Outcome) Keep(strict bool) bool {
	switch o {
	case Pass:
		return true
	case Fail:
		return false
	default:
		return !strict
	}
}

// combine folds several dimension outcomes: any Fail wins, then any Unknown.
func combine(outcomes ...Outcome) Outcome {
	result := Pass
	for _, o := range outcomes {
		switch o {
		case Fail:
			return Fail
		case Unknown:
			result = Unknown
		}
	}
	return result
}

// atMost compares a present value against an upper limit.
func atMost(v float64, ok bool, max float64) Outcome {
	if !ok {
		return Unknown
	}
	if v <= max {
		return Pass
	}
	return Fail
}

func atLeast(v float64, ok bool, min float64) Outcome {
	if !ok {
		return Unknown
	}
	if v >= min {
		return Pass
	}
	return Fail
}
