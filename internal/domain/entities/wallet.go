package entities

// WalletSession is the connection state owned by the wallet manager.
// Address and ChainID are nil until known.
type WalletSession struct {
	Address          *string `json:"address"`
	ChainID          *uint64 `json:"chainId"`
	Connected        bool    `json:"connected"`
	IsCorrectNetwork bool    `json:"isCorrectNetwork"`
}

// AccountOrEmpty returns the connected address, or "" when there is none
func (s WalletSession) AccountOrEmpty() string {
	if s.Address == nil {
		return ""
	}
	return *s.Address
}
