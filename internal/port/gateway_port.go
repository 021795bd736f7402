package port

import "context"

// TransactionVerifier asks the payment provider to confirm a transaction and
// returns its raw response text.
type TransactionVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
