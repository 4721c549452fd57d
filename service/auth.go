package service

import (
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/google/uuid"
)

const tokenLifetime = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingDependency  = errors.New("missing dependency")
)

// Auth registers operators and issues their tokens.
type Auth struct {
	operatorRepo i.OperatorRepo
	tokenizer    i.Tokenizer
}

// NewAuthService wires the operator repository and tokenizer.
func NewAuthService(operatorRepo i.OperatorRepo, tokenizer i.Tokenizer) (*Auth, error) {
	if operatorRepo == nil || tokenizer == nil {
		return nil, fmt.Errorf("%w: auth service needs an operator repo and a tokenizer", ErrMissingDependency)
	}
	return &Auth{operatorRepo: operatorRepo, tokenizer: tokenizer}, nil
}

// Register creates an operator. Usernames are unique regardless of case.
func (a *Auth) Register(username, password string) (*dmn.Operator, error) {
	username = dmn.NormalizeUsername(username)
	if _, err := a.operatorRepo.ByUsername(username); err == nil {
		return nil, dmn.ErrUsernameConflict
	} else if !errors.Is(err, dmn.ErrOperatorNotFound) {
		return nil, err
	}

	operator, err := dmn.NewOperator(dmn.OperatorConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	})
	if err != nil {
		return nil, err
	}

	if err := a.operatorRepo.Save(operator); err != nil {
		return nil, err
	}
	return operator, nil
}

// SignIn checks the credentials and returns a signed token.
func (a *Auth) SignIn(username, password string) (*dmn.Operator, string, error) {
	operator, err := a.operatorRepo.ByUsername(dmn.NormalizeUsername(username))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !operator.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(operator.Claims(), tokenLifetime)
	if err != nil {
		return nil, "", err
	}

	return operator, token, nil
}
