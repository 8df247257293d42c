// internal/candymachine/errors.go
package candymachine

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrRead covers every failure to obtain or decode sale state.
	ErrRead = errors.New("sale state read failed")
	// ErrBuild covers malformed purchase inputs.
	ErrBuild = errors.New("purchase transaction build failed")
)

// ReadError описывает ошибку чтения состояния продажи.
type ReadError struct {
	Address solana.PublicKey
	Reason  string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read candy machine %s: %s: %v", e.Address, e.Reason, e.Err)
	}
	return fmt.Sprintf("read candy machine %s: %s", e.Address, e.Reason)
}

func (e *ReadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRead, e.Err}
	}
	return []error{ErrRead}
}

// BuildError описывает некорректный вход для сборки транзакции.
type BuildError struct {
	Field  string
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build purchase: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("build purchase: %s: %s", e.Field, e.Reason)
}

func (e *BuildError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrBuild, e.Err}
	}
	return []error{ErrBuild}
}
