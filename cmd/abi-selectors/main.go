package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"tbond.backend/internal/usecases"
)

// Revert payloads a wallet or RPC node may surface during approve and mint.
var errorSignatures = []string{
	"Error(string)",
	"Panic(uint256)",
	"ERC20InsufficientAllowance(address,uint256,uint256)",
	"ERC20InsufficientBalance(address,uint256,uint256)",
	"ERC1155InsufficientBalance(address,uint256,uint256,uint256)",
}

func main() {
	bondPath := flag.String("bond-abi", os.Getenv("BOND_ABI_PATH"), "bond ABI json file (defaults to the built-in ABI)")
	stablecoinPath := flag.String("stablecoin-abi", os.Getenv("STABLECOIN_ABI_PATH"), "stablecoin ABI json file (defaults to the built-in ABI)")
	flag.Parse()

	if err := run(os.Stdout, *bondPath, *stablecoinPath); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, bondPath, stablecoinPath string) error {
	bondABI, err := usecases.LoadABI(bondPath, usecases.DefaultBondABI)
	if err != nil {
		return fmt.Errorf("bond abi: %w", err)
	}
	stablecoinABI, err := usecases.LoadABI(stablecoinPath, usecases.DefaultStablecoinABI)
	if err != nil {
		return fmt.Errorf("stablecoin abi: %w", err)
	}

	printMethods(w, "bond", bondABI)
	printMethods(w, "stablecoin", stablecoinABI)

	fmt.Fprintln(w, "errors:")
	for _, sig := range errorSignatures {
		fmt.Fprintf(w, "  %s: %s\n", sig, selector(sig))
	}
	return nil
}

func printMethods(w io.Writer, contract string, parsed abi.ABI) {
	sigs := make([]string, 0, len(parsed.Methods))
	for _, method := range parsed.Methods {
		sigs = append(sigs, method.Sig)
	}
	sort.Strings(sigs)

	fmt.Fprintf(w, "%s:\n", contract)
	for _, sig := range sigs {
		fmt.Fprintf(w, "  %s: %s\n", sig, selector(sig))
	}
}

func selector(sig string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(sig))[:4])
}
