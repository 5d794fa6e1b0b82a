package ncube

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrIllegalArgument marks malformed input: bad identity fields, empty names, or an
	// operation on a cube or branch that does not exist.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrIllegalState marks an operation that is invalid for the current lifecycle state.
	ErrIllegalState = errors.New("illegal state")

	// ErrCubeNotFound marks a read of a cube that does not exist or is deleted. It is
	// always reported together with ErrIllegalArgument.
	ErrCubeNotFound = errors.New("cube not found")
)

// IllegalArgument returns an error wrapping ErrIllegalArgument.
func IllegalArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalArgument, fmt.Sprintf(format, args...))
}

// IllegalState returns an error wrapping ErrIllegalState.
func IllegalState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

// CubeNotFound returns an error wrapping both ErrIllegalArgument and ErrCubeNotFound.
func CubeNotFound(name string, appID *ApplicationID) error {
	return fmt.Errorf("%w: %w: %s in %s", ErrIllegalArgument, ErrCubeNotFound, name, appID)
}

// CoordinateNotFoundError is returned when a lookup cannot bind a coordinate to a cell
// and the cube has no default cell value.
type CoordinateNotFoundError struct {
	CubeName   string
	AxisName   string
	Value      any
	Coordinate map[string]any
}

func (e *CoordinateNotFoundError) Error() string {
	if e.AxisName != "" {
		return fmt.Sprintf("coordinate not found in cube %q: value %v not found on axis %q", e.CubeName, e.Value, e.AxisName)
	}
	return fmt.Sprintf("coordinate not found in cube %q: %v", e.CubeName, e.Coordinate)
}

// IsCoordinateNotFound reports whether err is, or wraps, a CoordinateNotFoundError.
func IsCoordinateNotFound(err error) bool {
	var target *CoordinateNotFoundError
	return errors.As(err, &target)
}

// Conflict reasons reported in a MergeConflictError.
const (
	ReasonCreatedIndependently = "same name created independently in branch and HEAD"
	ReasonHeadChanged          = "cube changed in HEAD since branch was synced"
	ReasonHeadRemoved          = "cube no longer exists in HEAD"
	ReasonBothChanged          = "cube changed in both branch and HEAD"
)

// Conflict describes one cube that could not be merged.
type Conflict struct {
	Name     string `json:"name"`
	Sha1     string `json:"sha1"`
	HeadSha1 string `json:"headSha1"`
	Reason   string `json:"reason"`
}

// MergeConflictError aggregates every conflicting cube name of a commit or update.
type MergeConflictError struct {
	Conflicts map[string]Conflict
}

// NewMergeConflictError returns an empty conflict aggregate.
func NewMergeConflictError() *MergeConflictError {
	return &MergeConflictError{Conflicts: make(map[string]Conflict)}
}

// Add records a conflict under the cube name.
func (e *MergeConflictError) Add(c Conflict) {
	e.Conflicts[c.Name] = c
}

// Len returns the number of conflicting names.
func (e *MergeConflictError) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Conflicts)
}

// Names returns the conflicting names sorted case-insensitively.
func (e *MergeConflictError) Names() []string {
	names := make([]string, 0, len(e.Conflicts))
	for name := range e.Conflicts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func (e *MergeConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "merge conflict on %d cube(s)", len(e.Conflicts))
	for _, name := range e.Names() {
		c := e.Conflicts[name]
		fmt.Fprintf(&b, "; %s: %s (branch %s, head %s)", name, c.Reason, c.Sha1, c.HeadSha1)
	}
	return b.String()
}

// OrNil returns nil when no conflicts were recorded.
func (e *MergeConflictError) OrNil() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}
