package entities

import (
	"encoding/json"
	"math/big"
)

// TokenMetadata is the best-effort description of one bond token
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ID          uint64 `json:"id"`
	ASCIIArt    string `json:"ascii_art,omitempty"`
	ASCIIArtURL string `json:"ascii_art_url,omitempty"`
	// Extra holds the on-chain JSON properties that have no field above
	Extra map[string]interface{} `json:"-"`
}

// MarshalJSON emits Extra alongside the known fields; known fields win on a
// name clash.
func (m TokenMetadata) MarshalJSON() ([]byte, error) {
	type plain TokenMetadata
	known, err := json.Marshal(plain(m))
	if err != nil || len(m.Extra) == 0 {
		return known, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]interface{}, len(m.Extra)+len(fields))
	for k, v := range m.Extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// TokenEntry is one row of the owned-token list
type TokenEntry struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// StablecoinAmount carries a raw on-chain amount and its decimal rendering
type StablecoinAmount struct {
	Raw       *big.Int `json:"-"`
	Formatted string   `json:"formatted"`
}

// IsZero reports whether the raw amount is zero or unknown
func (a StablecoinAmount) IsZero() bool {
	return a.Raw == nil || a.Raw.Sign() == 0
}
