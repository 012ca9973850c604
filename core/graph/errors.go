package graph

// ErrInvalidState is returned for malformed graph construction, such as
// constructing a child node without a dependency. It is terminal and
// always indicates a caller bug, never a runtime condition to retry.
type ErrInvalidState struct {
	Reason string
}

func (e *ErrInvalidState) Error() string { return "graph: invalid state: " + e.Reason }
