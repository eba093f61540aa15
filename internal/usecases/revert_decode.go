package usecases

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	errorStringSelector = "0x08c379a0"
	panicSelector       = "0x4e487b71"
)

var revertHexPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)

// RevertReason is a decoded contract revert payload
type RevertReason struct {
	RawHex   string         `json:"rawHex"`
	Selector string         `json:"selector,omitempty"`
	Name     string         `json:"name,omitempty"`
	Message  string         `json:"message,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// decodeRevertDataFromError attempts to parse hex-encoded revert bytes from RPC errors.
// It supports rpc.DataError payloads and fallback extraction from error strings.
// Custom errors are resolved against the given ABIs.
func decodeRevertDataFromError(err error, abis ...abi.ABI) (RevertReason, bool) {
	if err == nil {
		return RevertReason{}, false
	}

	if data, ok := extractRevertHexFromDataError(err); ok {
		return decodeRevertData(data, abis...), true
	}

	// Hex in plain error text is only revert data when the node says so or
	// the selector is a known error; addresses and hashes are not.
	message := err.Error()
	mentionsRevert := strings.Contains(strings.ToLower(message), "revert")
	for _, data := range extractRevertHexFromErrorString(message) {
		decoded := decodeRevertData(data, abis...)
		if mentionsRevert || decoded.Name != "" {
			return decoded, true
		}
	}

	return RevertReason{}, false
}

func extractRevertHexFromDataError(err error) ([]byte, bool) {
	var dataErr interface {
		error
		ErrorData() interface{}
	}
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	return parseRevertBytesFromAny(dataErr.ErrorData())
}

func parseRevertBytesFromAny(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return parseRevertBytesFromAny(raw)
		}
		if raw, ok := v["result"]; ok {
			return parseRevertBytesFromAny(raw)
		}
	case map[string]string:
		if raw, ok := v["data"]; ok {
			return parseHexBytes(raw)
		}
		if raw, ok := v["result"]; ok {
			return parseHexBytes(raw)
		}
	}
	return nil, false
}

func extractRevertHexFromErrorString(message string) [][]byte {
	var out [][]byte
	for _, candidate := range revertHexPattern.FindAllString(message, -1) {
		if data, ok := parseHexBytes(candidate); ok {
			out = append(out, data)
		}
	}
	return out
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func decodeRevertData(data []byte, abis ...abi.ABI) RevertReason {
	result := RevertReason{RawHex: "0x" + hex.EncodeToString(data)}
	if len(data) < 4 {
		result.Message = "execution reverted"
		return result
	}

	result.Selector = "0x" + hex.EncodeToString(data[:4])

	switch result.Selector {
	case errorStringSelector:
		if msg, err := abi.UnpackRevert(data); err == nil {
			result.Name = "Error"
			result.Message = msg
			return result
		}
	case panicSelector:
		if len(data) >= 36 {
			result.Name = "Panic"
			result.Message = fmt.Sprintf("panic code: %s", new(big.Int).SetBytes(data[4:36]).String())
			return result
		}
	}

	var id [4]byte
	copy(id[:], data[:4])
	for _, parsed := range abis {
		errDef, err := parsed.ErrorByID(id)
		if err != nil {
			continue
		}
		result.Name = errDef.Name
		result.Message = errDef.Name
		values, err := errDef.Inputs.Unpack(data[4:])
		if err != nil {
			return result
		}
		result.Details = make(map[string]any, len(values))
		for i, v := range values {
			name := errDef.Inputs[i].Name
			if name == "" {
				name = fmt.Sprintf("arg%d", i)
			}
			result.Details[name] = fmt.Sprint(v)
		}
		if msg := buildDetailMessage(result.Name, result.Details); msg != "" {
			result.Message = msg
		}
		return result
	}

	result.Message = "execution reverted"
	return result
}

func buildDetailMessage(name string, details map[string]any) string {
	get := func(key string) string {
		v, _ := details[key].(string)
		return v
	}
	switch name {
	case "ERC20InsufficientAllowance":
		return fmt.Sprintf("insufficient USDC allowance (allowance=%s, needed=%s)", get("allowance"), get("needed"))
	case "ERC20InsufficientBalance":
		return fmt.Sprintf("insufficient USDC balance (balance=%s, needed=%s)", get("balance"), get("needed"))
	case "ERC1155InvalidReceiver":
		return "receiver cannot accept bond tokens: " + get("receiver")
	}
	return ""
}
