package txinput

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
)

// MultiSigScriptHash signs a P2SH (or witness-P2SH) output wrapping an
// m-of-n multisig redeem script. The signing subscript is the redeem
// script, not the P2SH output script; the unlocking script pushes the
// redeem script last, after the collected signatures.
type MultiSigScriptHash struct {
	Base
	multisigCore
	redeemScript scriptview.Script
}

// NewMultiSigScriptHash constructs a P2SH-multisig input. redeemScript
// is the m-of-n script whose Hash160 the spent P2SH output commits to.
func NewMultiSigScriptHash(prevTxID [32]byte, prevIndex, sequence uint32, pubKeys [][]byte, threshold int, redeemScript scriptview.Script) *MultiSigScriptHash {
	return &MultiSigScriptHash{
		Base:         NewBase(prevTxID, prevIndex, sequence),
		multisigCore: newMultisigCore(pubKeys, threshold),
		redeemScript: redeemScript,
	}
}

func (m *MultiSigScriptHash) EstimateSize() int {
	return 32 + 4 + 1 + 1 + m.threshold*(1+estimatedSignatureSize) + 1 + len(m.redeemScript) + 4
}

func (m *MultiSigScriptHash) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	if m.matchingKeyIndex(privKey) < 0 {
		return nil, nil
	}
	if m.Output() == nil {
		return nil, fmt.Errorf("txinput: missing spent output for input %d", index)
	}
	digest, err := sighash.Digest(cache, tv, index, m.redeemScript, m.Output().Value, hashType)
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

func (m *MultiSigScriptHash) AddSignature(sig SignatureRecord) error {
	if err := m.addSignature(sig); err != nil {
		return err
	}
	return m.rebuildUnlockingScript()
}

func (m *MultiSigScriptHash) rebuildUnlockingScript() error {
	if !m.isFullySigned() {
		m.SetUnlockingScript(nil)
		return nil
	}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_0)
	for _, sig := range m.orderedSignatures() {
		b.AddData(sig)
	}
	b.AddData(m.redeemScript)
	script, err := b.Script()
	if err != nil {
		return fmt.Errorf("txinput: failed to build P2SH multisig unlocking script: %w", err)
	}
	m.SetUnlockingScript(script)
	return nil
}

func (m *MultiSigScriptHash) ClearSignatures() {
	m.clearSignatures()
	m.SetUnlockingScript(nil)
}

func (m *MultiSigScriptHash) IsFullySigned() bool         { return m.isFullySigned() }
func (m *MultiSigScriptHash) IsFullySignedKnown() bool    { return true }
func (m *MultiSigScriptHash) IsValidSignatureKnown() bool { return true }

func (m *MultiSigScriptHash) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
	digest, err := sighash.Digest(cache, tv, index, m.redeemScript, m.Output().Value, sig.SighashType)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(sig.PublicKey)
	if err != nil {
		return false
	}
	return verifyDigest(pub, digest, sig.Signature)
}
