package catalog

import "errors"

var ErrNotFound = errors.New("psychologist not found")
