package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound        = ErrorKind("Not Found")
	InvalidArgument = ErrorKind("Invalid Argument")
	Unsupported     = ErrorKind("Unsupported")
	Timeout         = ErrorKind("Timeout")
	Conflict        = ErrorKind("Conflict")
	InternalError   = ErrorKind("Internal Error")

	// Wallet-layer kinds. Surfaced immediately, never retried.
	WalletUnavailable = ErrorKind("Wallet Unavailable")
	UserRejected      = ErrorKind("User Rejected")

	// PolicyWalletMismatch blocks a mint run before any transaction is built:
	// the connected wallet cannot satisfy the policy's signature requirement.
	PolicyWalletMismatch = ErrorKind("Policy Wallet Mismatch")

	// InsufficientFunds is reported by the chain layer when a submitted
	// transaction cannot cover its outputs plus fee.
	InsufficientFunds = ErrorKind("Insufficient Funds")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
