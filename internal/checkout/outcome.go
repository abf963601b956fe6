package checkout

import "net/url"

// Outcome destinations. The outcome pages read the query parameters and
// render a terminal view; they do not verify payment state with the
// provider, which a production system must do server-side.
const (
	successPath = "/order/success"
	failurePath = "/order/failure"

	// Fixed reason code attached when the widget host reports a failed
	// authorization without its own reason.
	defaultFailureReason = "authorization_failed"
)

func successURL(merchantReference string) string {
	query := url.Values{}
	query.Set("ref", merchantReference)
	return successPath + "?" + query.Encode()
}

func failureURL(merchantReference, reason string) string {
	if reason == "" {
		reason = defaultFailureReason
	}
	query := url.Values{}
	query.Set("ref", merchantReference)
	query.Set("reason", reason)
	return failurePath + "?" + query.Encode()
}
