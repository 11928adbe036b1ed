// Package scriptview is the transaction engine's Script view: an opaque
// byte blob plus the pattern predicates and builders the builder surface
// consults to pick an input/output template. The distilled spec treats
// this as an external collaborator; a standalone module still needs a
// concrete implementation, grounded on the teacher's address/script
// helpers (wallet/address.go) and the script-class predicates found in
// other_examples/03e5706e_pkt-cash-PKT-FullNode__txscript-script.go,
// built on top of github.com/btcsuite/btcd/txscript and btcutil.
package scriptview

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/chainparams"
)

// Script is the opaque locking-script byte blob a UTXO or Output carries.
type Script []byte

func toBtcdParams(p chainparams.Params) *chaincfg.Params {
	return &chaincfg.Params{
		Name:             p.Name,
		PubKeyHashAddrID: p.PubKeyHashAddrID,
		ScriptHashAddrID: p.ScriptHashAddrID,
		PrivateKeyID:     p.PrivateKeyID,
	}
}

// classOf classifies the script via btcd/txscript, defaulting to
// NonStandardTy on a malformed script (never panics).
func classOf(s Script) txscript.ScriptClass {
	return txscript.GetScriptClass(s)
}

func (s Script) IsP2PKH() bool { return classOf(s) == txscript.PubKeyHashTy }
func (s Script) IsP2PK() bool  { return classOf(s) == txscript.PubKeyTy }
func (s Script) IsP2SH() bool  { return classOf(s) == txscript.ScriptHashTy }
func (s Script) IsMultisigOut() bool {
	return classOf(s) == txscript.MultiSigTy
}
func (s Script) IsDataOut() bool {
	return classOf(s) == txscript.NullDataTy
}
func (s Script) IsWitnessPubKeyHashOut() bool {
	return classOf(s) == txscript.WitnessV0PubKeyHashTy
}
func (s Script) IsWitnessScriptHashOut() bool {
	return classOf(s) == txscript.WitnessV0ScriptHashTy
}

// IsP2SHLike reports P2SH or witness-P2SH, the combined condition the
// builder uses to pick the MultiSigScriptHash variant.
func (s Script) IsP2SHLike() bool {
	return s.IsP2SH() || s.IsWitnessScriptHashOut()
}

// IsP2PKHLike reports P2PKH, witness-P2PKH, or P2SH, the combined
// condition the builder uses to pick the PublicKeyHash variant.
func (s Script) IsP2PKHLike() bool {
	return s.IsP2PKH() || s.IsWitnessPubKeyHashOut() || s.IsP2SH()
}

// FromAddress builds a standard pay-to-address locking script.
func FromAddress(address string, params chainparams.Params) (Script, error) {
	addr, err := btcutil.DecodeAddress(address, toBtcdParams(params))
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to build script for %q: %w", address, err)
	}
	return Script(script), nil
}

// DataOut builds a zero-value OP_RETURN script carrying payload.
func DataOut(payload []byte) (Script, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_RETURN)
	b.AddData(payload)
	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build data-out script: %w", err)
	}
	return Script(s), nil
}

// MultisigOut builds a bare m-of-n multisig locking script.
func MultisigOut(threshold int, pubKeys [][]byte) (Script, error) {
	if threshold <= 0 || threshold > len(pubKeys) {
		return nil, fmt.Errorf("threshold %d out of range for %d keys", threshold, len(pubKeys))
	}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_1 - 1 + byte(threshold))
	for _, pk := range pubKeys {
		b.AddData(pk)
	}
	b.AddOp(txscript.OP_1 - 1 + byte(len(pubKeys)))
	b.AddOp(txscript.OP_CHECKMULTISIG)
	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build multisig script: %w", err)
	}
	return Script(s), nil
}

// EscrowRedeemScript builds the ZCE-compatible escrow redeem script: an
// m-of-n multisig over the input public keys in the OP_IF branch, with
// the reclaim public key able to satisfy the OP_ELSE branch alone via
// OP_CHECKSIG. No timelock guards the reclaim branch. Used both to build the escrow P2SH output and, during ZCE
// verification, to recompute the expected redeem script from the
// signature's carried public keys.
func EscrowRedeemScript(threshold int, pubKeys [][]byte, reclaimPubKey []byte) (Script, error) {
	multisig, err := MultisigOut(threshold, pubKeys)
	if err != nil {
		return nil, err
	}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_IF)
	b.AddOps(multisig)
	b.AddOp(txscript.OP_ELSE)
	b.AddData(reclaimPubKey)
	b.AddOp(txscript.OP_CHECKSIG)
	b.AddOp(txscript.OP_ENDIF)
	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build escrow redeem script: %w", err)
	}
	return Script(s), nil
}

// EscrowOut builds the P2SH output locking the escrow redeem script.
func EscrowOut(threshold int, pubKeys [][]byte, reclaimPubKey []byte) (Script, error) {
	redeem, err := EscrowRedeemScript(threshold, pubKeys, reclaimPubKey)
	if err != nil {
		return nil, err
	}
	hash := btcutil.Hash160(redeem)
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_HASH160)
	b.AddData(hash)
	b.AddOp(txscript.OP_EQUAL)
	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build escrow output script: %w", err)
	}
	return Script(s), nil
}

// Hash160OfRedeemScript is a convenience used by ZCE verification to
// compare a P2SH output's embedded hash against a candidate redeem
// script.
func Hash160OfRedeemScript(redeemScript Script) []byte {
	return btcutil.Hash160(redeemScript)
}

// ScriptHash extracts the 20-byte hash carried by a P2SH output, or nil
// if script isn't P2SH-shaped.
func (s Script) ScriptHash() []byte {
	if !s.IsP2SH() || len(s) != 23 {
		return nil
	}
	return s[2:22]
}

// PubKeyHashFromP2PKH extracts the 20-byte hash carried by a P2PKH
// output, or nil if script isn't P2PKH-shaped.
func (s Script) PubKeyHashFromP2PKH() []byte {
	if !s.IsP2PKH() || len(s) != 25 {
		return nil
	}
	return s[3:23]
}

// Equal reports byte-for-byte equality, used for change-script invariant
// checks.
func (s Script) Equal(other Script) bool {
	return bytes.Equal(s, other)
}

// HashForPubKey computes the Hash160 a PublicKeyHash input signs against.
func HashForPubKey(pub *btcec.PublicKey) []byte {
	return btcutil.Hash160(pub.SerializeCompressed())
}
