package feed

import "errors"

var (
	// ErrConnection is returned for transport failures: network errors,
	// unexpected HTTP statuses, or requests that cannot be built.
	ErrConnection = errors.New("connection error")

	// ErrNotFound is returned when a package or resource doesn't exist in
	// the repository.
	ErrNotFound = errors.New("package not found")

	// ErrData is returned when a response arrives but cannot be decoded,
	// for example a result page that is not well-formed XML.
	ErrData = errors.New("invalid response data")

	// ErrArgument is returned for queries the caller built incorrectly,
	// such as an unsupported wildcard pattern or an unparsable version.
	ErrArgument = errors.New("invalid argument")

	// ErrUnsupported is returned when the repository's protocol has no
	// equivalent for the requested operation.
	ErrUnsupported = errors.New("operation not supported")
)
