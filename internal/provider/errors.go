package provider

import "errors"

var errNotFound = errors.New("provider: resource not found")

func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}
