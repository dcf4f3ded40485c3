package policy

import "storehub/internal/errors"

// ErrNotGrantable is returned when a permission may not be stored on a staff record.
var ErrNotGrantable = errors.New("permission not grantable to staff")
