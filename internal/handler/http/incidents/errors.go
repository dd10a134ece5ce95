package incidents

import "errors"

var errLimitInvalid = errors.New("limit must be a non-negative integer")
