package mecab

import "github.com/pkg/errors"

// Error classes returned by this package. Returned errors wrap one of these
// with context; test with errors.Is.
var (
	ErrConfig               = errors.New("mecab: invalid configuration")
	ErrDictionaryNotFound   = errors.New("mecab: dictionary not found")
	ErrDictionaryIncomplete = errors.New("mecab: dictionary incomplete")
	ErrNativeEngine         = errors.New("mecab: native engine failure")
	ErrUnsupportedEngine    = errors.New("mecab: unsupported engine")
	ErrMalformedToken       = errors.New("mecab: malformed token")
	ErrClosed               = errors.New("mecab: analyzer closed")
)

// classError puts a lower-level cause under one of the classes above.
// errors.Is and errors.As see both the class and the cause.
type classError struct {
	class error
	op    string
	cause error
}

func classify(class error, op string, cause error) error {
	return &classError{class: class, op: op, cause: cause}
}

func (e *classError) Error() string {
	if e.op == "" {
		return e.class.Error() + ": " + e.cause.Error()
	}
	return e.class.Error() + ": " + e.op + ": " + e.cause.Error()
}

func (e *classError) Unwrap() []error { return []error{e.class, e.cause} }
