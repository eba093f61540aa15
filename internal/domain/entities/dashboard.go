package entities

// ViewState names which screen the client should render
type ViewState string

const (
	ViewConnect        ViewState = "connect"
	ViewNetworkWarning ViewState = "network-warning"
	ViewDashboard      ViewState = "dashboard"
)

// DashboardView is everything the main screen needs in one read
type DashboardView struct {
	State         ViewState     `json:"state"`
	Session       WalletSession `json:"session"`
	TargetNetwork *Network      `json:"targetNetwork,omitempty"`
	Tokens        []TokenEntry  `json:"tokens"`
	Selected      *TokenDetails `json:"selected,omitempty"`
}

// TokenDetails is the detail pane of a selected token
type TokenDetails struct {
	Metadata    TokenMetadata `json:"metadata"`
	ExplorerURL string        `json:"explorerUrl"`
	// Balance is the account's holding of this token id; empty when the read failed.
	Balance string `json:"balance,omitempty"`
}
