package txinput

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
)

// Escrow signs the cooperative (multisig) branch of a ZCE-compatible
// escrow redeem script built by scriptview.EscrowRedeemScript: an m-of-n
// OP_IF branch over the cosigner keys, with a single reclaim key able to
// satisfy the OP_ELSE branch alone. This variant only ever builds the
// cooperative spend; the reclaim branch is outside this package's scope
// (it belongs to whichever party holds the reclaim key, not the builder
// flow this input participates in).
type Escrow struct {
	Base
	multisigCore
	reclaimPubKey []byte
	redeemScript  scriptview.Script
}

// NewEscrow constructs an escrow input over the given cosigner keys,
// threshold, and reclaim public key. redeemScript must be the exact
// script scriptview.EscrowRedeemScript produced for these keys — the
// P2SH output's hash depends on it byte-for-byte.
func NewEscrow(prevTxID [32]byte, prevIndex, sequence uint32, pubKeys [][]byte, threshold int, reclaimPubKey []byte, redeemScript scriptview.Script) *Escrow {
	return &Escrow{
		Base:          NewBase(prevTxID, prevIndex, sequence),
		multisigCore:  newMultisigCore(pubKeys, threshold),
		reclaimPubKey: reclaimPubKey,
		redeemScript:  redeemScript,
	}
}

func (e *Escrow) EstimateSize() int {
	// prevout + index + scriptlen + OP_1(branch selector) + sigs + redeemscript push + sequence
	return 32 + 4 + 1 + 1 + e.threshold*(1+estimatedSignatureSize) + 1 + len(e.redeemScript) + 4
}

func (e *Escrow) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	if e.matchingKeyIndex(privKey) < 0 {
		return nil, nil
	}
	if e.Output() == nil {
		return nil, fmt.Errorf("txinput: missing spent output for input %d", index)
	}
	digest, err := sighash.Digest(cache, tv, index, e.redeemScript, e.Output().Value, hashType)
	if err != nil {
		return nil, err
	}
	sigBytes, err := signDigest(privKey, digest, hashType, alg)
	if err != nil {
		return nil, err
	}
	return []SignatureRecord{{
		InputIndex:  index,
		SighashType: hashType,
		PublicKey:   privKey.PubKey().SerializeCompressed(),
		Signature:   sigBytes,
	}}, nil
}

func (e *Escrow) AddSignature(sig SignatureRecord) error {
	if err := e.addSignature(sig); err != nil {
		return err
	}
	return e.rebuildUnlockingScript()
}

// rebuildUnlockingScript builds the cooperative branch's unlocking
// stack: OP_0 <sigs...> OP_1 (select the OP_IF branch) <redeemScript>.
func (e *Escrow) rebuildUnlockingScript() error {
	if !e.isFullySigned() {
		e.SetUnlockingScript(nil)
		return nil
	}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_0)
	for _, sig := range e.orderedSignatures() {
		b.AddData(sig)
	}
	b.AddOp(txscript.OP_1)
	b.AddData(e.redeemScript)
	script, err := b.Script()
	if err != nil {
		return fmt.Errorf("txinput: failed to build escrow unlocking script: %w", err)
	}
	e.SetUnlockingScript(script)
	return nil
}

func (e *Escrow) ClearSignatures() {
	e.clearSignatures()
	e.SetUnlockingScript(nil)
}

func (e *Escrow) IsFullySigned() bool         { return e.isFullySigned() }
func (e *Escrow) IsFullySignedKnown() bool    { return true }
func (e *Escrow) IsValidSignatureKnown() bool { return true }

func (e *Escrow) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
	digest, err := sighash.Digest(cache, tv, index, e.redeemScript, e.Output().Value, sig.SighashType)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(sig.PublicKey)
	if err != nil {
		return false
	}
	return verifyDigest(pub, digest, sig.Signature)
}

// ReclaimPubKey exposes the reclaim key for ZCE/verification logic that
// needs to recompute this input's redeem script independently.
func (e *Escrow) ReclaimPubKey() []byte { return e.reclaimPubKey }

// RedeemScript exposes the signing subscript for verification logic
// that doesn't hold a reference to the original builder call.
func (e *Escrow) RedeemScript() scriptview.Script { return e.redeemScript }
