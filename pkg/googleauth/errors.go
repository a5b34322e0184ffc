package googleauth

import "fmt"

// CredentialError reports a failed mint. Op is one of "parse key", "sign",
// "exchange" or "decode".
type CredentialError struct {
	Op  string
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("mint credential: %s: %v", e.Op, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}
