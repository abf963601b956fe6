package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessURL(t *testing.T) {
	assert.Equal(t, "/order/success?ref=order-42", successURL("order-42"))
}

func TestFailureURL_DefaultReason(t *testing.T) {
	url := failureURL("order-42", "")
	assert.Contains(t, url, "ref=order-42")
	assert.Contains(t, url, "reason=authorization_failed")
}

func TestFailureURL_EncodesReason(t *testing.T) {
	url := failureURL("order-42", "card declined by issuer")
	assert.Contains(t, url, "reason=card+declined+by+issuer")
}
