package main

import (
	"crypto/ecdsa"
	"flag"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var generateKey = crypto.GenerateKey

func main() {
	env := flag.Bool("env", true, "print as .env lines")
	flag.Parse()

	privateKeyHex, address, err := buildSignerKey()
	if err != nil {
		log.Fatalf("failed to generate signer key: %v", err)
	}

	if *env {
		fmt.Println("# Fund this address with gas and stablecoin before minting")
		fmt.Printf("SIGNER_PRIVATE_KEY=%s\n", privateKeyHex)
		fmt.Printf("# SIGNER_ADDRESS=%s\n", address)
		return
	}
	fmt.Println(privateKeyHex)
	fmt.Println(address)
}

func buildSignerKey() (string, string, error) {
	key, err := generateKey()
	if err != nil {
		return "", "", err
	}
	return encodeKey(key), crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func encodeKey(key *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSA(key))
}
