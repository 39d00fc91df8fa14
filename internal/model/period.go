package model

// OverridePeriod forces every transaction it covers to save a fixed amount
// instead of the default round-up. Both bounds are inclusive.
type OverridePeriod struct {
	Start int64
	End   int64
	Fixed int64
	ID    int
}

// AdditivePeriod adds Extra to every transaction it covers, on top of the
// round-up or override value. Both bounds are inclusive.
type AdditivePeriod struct {
	Start int64
	End   int64
	Extra int64
}

// Window is a caller-supplied query range, inclusive on both ends.
type Window struct {
	Start int64
	End   int64
}

