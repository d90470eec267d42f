// Package errs defines the error kinds the reconciler surfaces to the
// CLI, per spec.md §7.
package errs

import "fmt"

// Kind identifies which of the spec's error categories an error belongs
// to, so the CLI can report it without string-matching.
type Kind string

const (
	KindConfig            Kind = "ConfigError"
	KindConflict          Kind = "ConflictError"
	KindPendingRemote     Kind = "PendingRemoteError"
	KindModifiedDuringRun Kind = "ModifiedDuringRunError"
	KindIO                Kind = "IoError"
	KindRemote            Kind = "RemoteError"
	KindParse             Kind = "ParseError"
)

// Typed satisfies this interface when it knows which spec error kind it is.
type Typed interface {
	error
	Kind() Kind
}

type kindError struct {
	kind Kind
	msg  string
	err  error
}

func (e *kindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *kindError) Kind() Kind { return e.kind }

func (e *kindError) Unwrap() error { return e.err }

func new(kind Kind, msg string, err error) *kindError {
	return &kindError{kind: kind, msg: msg, err: err}
}

func Config(msg string, err error) error {
	return new(KindConfig, msg, err)
}

func Conflict(paths []string) error {
	return new(KindConflict, fmt.Sprintf("conflicting paths (resolve manually before sync/submit): %v", paths), nil)
}

func PendingRemote() error {
	return new(KindPendingRemote, "remote has changes not yet synced; run sync first", nil)
}

func ModifiedDuringRun(path string) error {
	return new(KindModifiedDuringRun, fmt.Sprintf("%s was modified while chonky was running", path), nil)
}

func IO(msg string, err error) error {
	return new(KindIO, msg, err)
}

func Remote(msg string, err error) error {
	return new(KindRemote, msg, err)
}

func Parse(msg string, err error) error {
	return new(KindParse, msg, err)
}

// KindOf walks err's Unwrap chain looking for a Typed error and returns
// its Kind, or "" if none is found.
func KindOf(err error) Kind {
	for err != nil {
		if t, ok := err.(Typed); ok {
			return t.Kind()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ""
}
