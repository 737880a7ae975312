package diff

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxDiffsPerColumn bounds the mismatches retained for one column
const DefaultMaxDiffsPerColumn = 200000

var (
	ErrKeyColumnNotShared     = errors.New("key column must be present in both tables")
	ErrNegativeCap            = errors.New("max diffs per column must be >= 0")
	ErrUnknownDuplicatePolicy = errors.New("unknown duplicate key policy")
)

// DuplicatePolicy selects which row an index keeps when a key repeats
type DuplicatePolicy int

const (
	// DuplicateLast keeps the last row seen for a key
	DuplicateLast DuplicatePolicy = iota
	// DuplicateFirst keeps the first row seen for a key
	DuplicateFirst
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateFirst:
		return "first"
	default:
		return "last"
	}
}

// ParseDuplicatePolicy accepts "last", "first" or "" (last)
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return DuplicateLast, nil
	case "first":
		return DuplicateFirst, nil
	default:
		return DuplicateLast, fmt.Errorf("%w: %q (must be 'last' or 'first')", ErrUnknownDuplicatePolicy, s)
	}
}

// Options configures a comparison
type Options struct {
	// KeyColumn matches rows between tables. Empty means not configured.
	KeyColumn string

	// MaxDiffsPerColumn caps the entries retained per column. Differences
	// past the cap are counted in Report.Suppressed and dropped.
	MaxDiffsPerColumn int

	// Duplicates decides which row wins when a key repeats within a table
	Duplicates DuplicatePolicy
}

// DefaultOptions returns options with the documented cap and last-wins
// duplicate handling
func DefaultOptions(key string) Options {
	return Options{
		KeyColumn:         key,
		MaxDiffsPerColumn: DefaultMaxDiffsPerColumn,
		Duplicates:        DuplicateLast,
	}
}

// Validate checks the options are usable
func (o Options) Validate() error {
	if o.MaxDiffsPerColumn < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCap, o.MaxDiffsPerColumn)
	}
	if o.Duplicates != DuplicateLast && o.Duplicates != DuplicateFirst {
		return fmt.Errorf("%w: %d", ErrUnknownDuplicatePolicy, o.Duplicates)
	}
	return nil
}
