package debug

import "errors"

var errSourceIDInvalid = errors.New("source_id must be an integer")
