package llm

import "github.com/linnemanlabs/go-core/xerrors"

var (
	// ErrTransient marks an inference failure on a retryable status
	// class (rate limited, server error, unavailable, timeout) after
	// the provider exhausted its own retries.
	ErrTransient = xerrors.New("llm: transient inference failure")

	// ErrFatal marks an inference failure that retrying cannot fix
	// (bad request, auth, permanently unavailable model).
	ErrFatal = xerrors.New("llm: fatal inference failure")
)
