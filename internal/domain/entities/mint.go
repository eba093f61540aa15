package entities

// MintAmountInput is the state of the mint amount field after an edit
type MintAmountInput struct {
	Value     string `json:"value"`
	Amount    int    `json:"amount"`
	Accepted  bool   `json:"accepted"`
	Clamped   bool   `json:"clamped"`
	Warning   string `json:"warning,omitempty"`
	TotalCost int64  `json:"totalCost"`
}

// MintQuoteInput is the request body for validating an amount edit
type MintQuoteInput struct {
	Previous string `json:"previous"`
	Value    string `json:"value"`
}

// MintInput is the request body for the approve-then-mint flow
type MintInput struct {
	Amount string `json:"amount"`
}

// MintResult reports a completed mint together with the refreshed ownership set
type MintResult struct {
	Amount      int      `json:"amount"`
	Message     string   `json:"message"`
	Steps       []string `json:"steps"`
	OwnedTokens []uint64 `json:"ownedTokens"`
}

// BalanceCheck is the outcome of the explicit stablecoin balance check
type BalanceCheck struct {
	Balance   string `json:"balance"`
	Message   string `json:"message"`
	Warning   string `json:"warning,omitempty"`
	FaucetURL string `json:"faucetUrl,omitempty"`
}
