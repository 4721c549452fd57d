package i

import (
	dmn "github.com/beka-birhanu/vinom-nav/domain"
)

// Authenticator registers operators and signs them in.
type Authenticator interface {
	Register(username, password string) (*dmn.Operator, error)
	SignIn(username, password string) (*dmn.Operator, string, error)
}
