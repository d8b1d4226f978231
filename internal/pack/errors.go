package pack

import (
	"errors"
	"fmt"
)

var (
	// ErrUnpackFailed covers every structural defect of a map: malformed
	// JSON, missing reserved fields, wrong entity tag, unknown version,
	// unknown wire alias, missing required field, bad signature. The class
	// deliberately does not say which, to avoid handing a decoding oracle
	// to whoever supplied the reference.
	ErrUnpackFailed = errors.New("unpack failed")

	// ErrInvalidKey rejects key strings that fail validation before any
	// cryptographic work: empty input, characters outside the base64
	// alphabet, a malformed routing prefix.
	ErrInvalidKey = errors.New("invalid key supplied")

	// ErrInvalidReference is the uniform user-facing error produced by the
	// TryDecrypt convenience wrappers.
	ErrInvalidReference = errors.New("invalid reference supplied")
)

// errSignatureMismatch is folded into ErrUnpackFailed at the public
// boundary; it exists so tests can assert tamper detection specifically.
var errSignatureMismatch = fmt.Errorf("%w: signature mismatch", ErrUnpackFailed)

// DecryptError reports that a key did not decrypt to a well-formed map
// envelope: broken ciphertext, wrong padding, wrong key/vector, or a
// missing envelope field.
type DecryptError struct {
	Entity string
	cause  error
}

func (e *DecryptError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("decrypt %s key: %v", e.Entity, e.cause)
	}
	return fmt.Sprintf("decrypt %s key failed", e.Entity)
}

func (e *DecryptError) Unwrap() error { return e.cause }

func newDecryptError(entity string, cause error) *DecryptError {
	return &DecryptError{Entity: entity, cause: cause}
}

// CrossTenantError reports a map that decoded and verified correctly but
// belongs to another tenant. It is a policy violation, not a format
// violation; callers may log it with higher severity than routine bad
// input.
type CrossTenantError struct {
	Entity        string
	WantCompanyID int64
	GotCompanyID  int64
}

func (e *CrossTenantError) Error() string {
	return fmt.Sprintf("%s reference belongs to company %d, current company is %d",
		e.Entity, e.GotCompanyID, e.WantCompanyID)
}

// ProgrammingError indicates a bug in calling code: packing a field the
// schema does not know, an unregistered entity tag in the payload
// rewriter, a raw map leaking through a sanitized response. It must not be
// converted into a user-facing response.
type ProgrammingError struct {
	msg string
}

func (e *ProgrammingError) Error() string { return e.msg }

func programmingErrorf(format string, args ...any) *ProgrammingError {
	return &ProgrammingError{msg: fmt.Sprintf(format, args...)}
}

// foldForUser converts the three reference-validation error classes into
// the uniform ErrInvalidReference. Programming errors pass through
// untouched so they keep crashing loudly.
func foldForUser(err error) error {
	if err == nil {
		return nil
	}
	var progErr *ProgrammingError
	if errors.As(err, &progErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidReference, err)
}
