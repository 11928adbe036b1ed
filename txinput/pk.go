package txinput

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/sighash"
)

// PublicKey signs a P2PK output with a single <sig> unlocking script (no
// pubkey push needed: the output itself embeds the pubkey).
type PublicKey struct {
	Base
	sig *SignatureRecord
}

func NewPublicKey(prevTxID [32]byte, prevIndex, sequence uint32) *PublicKey {
	return &PublicKey{Base: NewBase(prevTxID, prevIndex, sequence)}
}

// EstimateSize: 32 + 4 + 1 + ~74 (push sig) + 4.
func (p *PublicKey) EstimateSize() int {
	return 32 + 4 + 1 + 1 + estimatedSignatureSize + 4
}

func (p *PublicKey) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	if p.Output() == nil {
		return nil, fmt.Errorf("txinput: missing spent output for input %d", index)
	}
	pub := privKey.PubKey()
	if !scriptContainsPubKey(p.Output().Script, pub) {
		return nil, nil
	}

	digest, err := sighash.Digest(cache, tv, index, p.Output().Script, p.Output().Value, hashType)
	if err != nil {
		return nil, err
	}

	var sigBytes []byte
	if alg == sighash.Schnorr {
		sigBytes, err = sighash.SignSchnorr(privKey, digest, hashType)
	} else {
		sigBytes, err = sighash.SignECDSA(privKey, digest, hashType)
	}
	if err != nil {
		return nil, err
	}

	return []SignatureRecord{{
		InputIndex:  index,
		SighashType: hashType,
		PublicKey:   pub.SerializeCompressed(),
		Signature:   sigBytes,
	}}, nil
}

func scriptContainsPubKey(script []byte, pub *btcec.PublicKey) bool {
	return bytes.Contains(script, pub.SerializeCompressed()) ||
		bytes.Contains(script, pub.SerializeUncompressed())
}

func (p *PublicKey) AddSignature(sig SignatureRecord) error {
	b := txscript.NewScriptBuilder()
	b.AddData(sig.Signature)
	script, err := b.Script()
	if err != nil {
		return fmt.Errorf("txinput: failed to build P2PK unlocking script: %w", err)
	}
	p.sig = &sig
	p.SetUnlockingScript(script)
	return nil
}

func (p *PublicKey) ClearSignatures() {
	p.sig = nil
	p.SetUnlockingScript(nil)
}

func (p *PublicKey) IsFullySigned() bool         { return p.sig != nil }
func (p *PublicKey) IsFullySignedKnown() bool    { return true }
func (p *PublicKey) IsValidSignatureKnown() bool { return true }

func (p *PublicKey) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
	if p.Output() == nil {
		return false
	}
	digest, err := sighash.Digest(cache, tv, index, p.Output().Script, p.Output().Value, sig.SighashType)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(sig.PublicKey)
	if err != nil {
		return false
	}
	if sighash.IsLikelySchnorr(sig.Signature) {
		return sighash.VerifySchnorr(pub, digest, sig.Signature)
	}
	return sighash.VerifyECDSA(pub, digest, sig.Signature)
}
