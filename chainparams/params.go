// Package chainparams holds the small, fixed set of per-network constants
// the transaction engine needs: legacy address version bytes and default
// dust/fee knobs. Modeled on the teacher's NetworkParams(network string)
// lookup, generalized from BTC's bech32 networks to BCH's legacy-prefix
// networks.
package chainparams

import "fmt"

// Params is the set of network-dependent constants the engine consults
// when building or decoding addresses and scripts.
type Params struct {
	Name              string
	PubKeyHashAddrID  byte
	ScriptHashAddrID  byte
	PrivateKeyID      byte
	CashAddrPrefix    string
	DefaultDustAmount int64
	DefaultFeePerKB   int64
}

var (
	MainNet = Params{
		Name:              "mainnet",
		PubKeyHashAddrID:  0x00,
		ScriptHashAddrID:  0x05,
		PrivateKeyID:      0x80,
		CashAddrPrefix:    "bitcoincash",
		DefaultDustAmount: 546,
		DefaultFeePerKB:   100_000,
	}
	TestNet = Params{
		Name:              "testnet",
		PubKeyHashAddrID:  0x6f,
		ScriptHashAddrID:  0xc4,
		PrivateKeyID:      0xef,
		CashAddrPrefix:    "bchtest",
		DefaultDustAmount: 546,
		DefaultFeePerKB:   100_000,
	}
	RegTest = Params{
		Name:              "regtest",
		PubKeyHashAddrID:  0x6f,
		ScriptHashAddrID:  0xc4,
		PrivateKeyID:      0xef,
		CashAddrPrefix:    "bchreg",
		DefaultDustAmount: 546,
		DefaultFeePerKB:   1_000,
	}
)

// ByName resolves a network name to its Params, the way the teacher's
// NetworkParams(network string) resolves "mainnet"/"testnet4"/"signet".
func ByName(network string) (Params, error) {
	switch network {
	case "", "mainnet":
		return MainNet, nil
	case "testnet":
		return TestNet, nil
	case "regtest":
		return RegTest, nil
	default:
		return Params{}, fmt.Errorf("unknown network: %s (supported: mainnet, testnet, regtest)", network)
	}
}
