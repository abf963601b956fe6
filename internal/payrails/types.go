package payrails

// Amount is a monetary value in minor units, always transmitted as a string
// regardless of how the caller represented it (e.g. {"value": "9995",
// "currency": "USD"} for $99.95).
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// InitPayload is the body of the client init call. Payrails expects
// type=dropIn plus the contextual identifiers for the checkout attempt.
type InitPayload struct {
	Type              string `json:"type"`
	Amount            Amount `json:"amount"`
	WorkflowCode      string `json:"workflowCode"`
	MerchantReference string `json:"merchantReference"`
	HolderReference   string `json:"holderReference"`
	WorkspaceID       string `json:"workspaceId"`
}

type BillingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type LookupCustomer struct {
	Email string `json:"email"`
}

type LookupOrder struct {
	BillingAddress BillingAddress `json:"billingAddress"`
}

type LookupMeta struct {
	Customer LookupCustomer `json:"customer"`
	Order    LookupOrder    `json:"order"`
}

// LookupPayload carries the buyer metadata submitted against an execution
// before authorization. Kept minimal; extend meta as needed.
type LookupPayload struct {
	Amount Amount     `json:"amount"`
	Meta   LookupMeta `json:"meta"`
}
