package dump

import "errors"

// Every failure the package reports wraps one of these sentinels, so
// callers can classify with errors.Is while the message itself names the
// offending key or value and the entity it appeared in.
var (
	ErrUnknownKey       = errors.New("unknown schema key")
	ErrMalformedHandle  = errors.New("malformed handle token")
	ErrShapeMismatch    = errors.New("unexpected node shape")
	ErrScalarCoercion   = errors.New("scalar coercion failed")
	ErrDuplicateSetting = errors.New("duplicate settings key")
	ErrNoDump           = errors.New("no dump found")
	ErrAmbiguousDump    = errors.New("ambiguous dump set")
	ErrInvariant        = errors.New("invariant violation")
)
