package payrails

import "fmt"

// Operation names used in UpstreamError.Op.
const (
	OpToken  = "token"
	OpInit   = "init"
	OpLookup = "lookup"
)

// UpstreamError is returned when the Payrails platform answers with a
// non-success status. The raw response body is preserved as diagnostic
// detail for the proxy's error envelope; it is never shown to the buyer.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payrails %s request failed: status %d", e.Op, e.StatusCode)
}
