package importer

import "errors"

// ErrFetch wraps upstream failures that abort a run.
var ErrFetch = errors.New("import fetch failed")
