package practice

import (
	"github.com/leandrodaf/beatcoach/internal/session"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// NewSession creates a practice session with the specified options.
// The caller must start its loop with Run before using the control methods.
//
// opts ...contracts.SessionOption: A variadic list of option functions to customize the session.
//
// Returns:
//   - contracts.PracticeSession: The session.
//   - error: An error, if the options are invalid.
func NewSession(opts ...contracts.SessionOption) (contracts.PracticeSession, error) {
	options, err := applyDefaultSessionOptions(opts...)
	if err != nil {
		return nil, err
	}
	return session.New(options), nil
}
