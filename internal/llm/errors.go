package llm

import "errors"

// Kind classifies a dispatch failure so callers can route it: upload
// and generation failures surface to the user, cleanup failures are
// logged only, configuration failures are fatal at startup.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUpload
	KindGeneration
	KindCleanup
	KindConfiguration
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpload:
		return "upload"
	case KindGeneration:
		return "generation"
	case KindCleanup:
		return "cleanup"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WithKind tags err with a kind. Wrapping an already-tagged error
// keeps the outermost kind.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf returns the kind of the outermost tagged error in err's
// chain, or KindUnknown.
func KindOf(err error) Kind {
	var tagged *kindError
	if errors.As(err, &tagged) {
		return tagged.kind
	}
	return KindUnknown
}
