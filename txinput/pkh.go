package txinput

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
)

// estimatedSignatureSize is the worst-case DER-encoded ECDSA signature
// plus trailing sighash byte (72 + 1), the figure the teacher's
// EstimateFeeForTypes/P2WPKHInputSize constants are built from.
const estimatedSignatureSize = 73

// PublicKeyHash signs a P2PKH (or witness-P2PKH, or P2SH used as a
// simple pubkey-hash wrapper) output with a single <sig><pubkey>
// unlocking script.
type PublicKeyHash struct {
	Base
	sig *SignatureRecord
}

// NewPublicKeyHash constructs a PublicKeyHash input over the given
// outpoint/sequence.
func NewPublicKeyHash(prevTxID [32]byte, prevIndex, sequence uint32) *PublicKeyHash {
	return &PublicKeyHash{Base: NewBase(prevTxID, prevIndex, sequence)}
}

// EstimateSize: 32 (prevhash) + 4 (index) + 1 (scriptlen varint) +
// ~108 (push sig + push 33-byte compressed pubkey) + 4 (sequence).
func (p *PublicKeyHash) EstimateSize() int {
	return 32 + 4 + 1 + 1 + estimatedSignatureSize + 1 + 33 + 4
}

func (p *PublicKeyHash) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	if p.Output() == nil {
		return nil, fmt.Errorf("txinput: missing spent output for input %d", index)
	}
	pub := privKey.PubKey()
	if !bytes.Equal(scriptview.HashForPubKey(pub), pubKeyHash) {
		return nil, nil // this key isn't the signer for this input
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

func (p *PublicKeyHash) AddSignature(sig SignatureRecord) error {
	b := txscript.NewScriptBuilder()
	b.AddData(sig.Signature)
	b.AddData(sig.PublicKey)
	script, err := b.Script()
	if err != nil {
		return fmt.Errorf("txinput: failed to build P2PKH unlocking script: %w", err)
	}
	p.sig = &sig
	p.SetUnlockingScript(script)
	return nil
}

func (p *PublicKeyHash) ClearSignatures() {
	p.sig = nil
	p.SetUnlockingScript(nil)
}

func (p *PublicKeyHash) IsFullySigned() bool       { return p.sig != nil }
func (p *PublicKeyHash) IsFullySignedKnown() bool  { return true }
func (p *PublicKeyHash) IsValidSignatureKnown() bool { return true }

func (p *PublicKeyHash) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
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
