package payment

// AuthorizationRequest asks the gateway to hold Amount (minor units) in
// Currency. Retries carrying the same IdempotencyKey return the original
// authorization instead of creating a new one.
type AuthorizationRequest struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
	ReceiptEmail   string
	Description    string
	Metadata       map[string]string
}

// Authorization is the gateway's handle on a held payment.
type Authorization struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}
