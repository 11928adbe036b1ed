package txinput

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/sighash"
)

// multisigCore is the shared bookkeeping bare multisig, P2SH-wrapped
// multisig, and escrow all need: a fixed ordered set of cosigner public
// keys, a signing threshold, and the partial signatures collected so
// far, indexed by cosigner position so OP_CHECKMULTISIG's
// order-sensitivity is respected regardless of the order signatures
// arrive in.
type multisigCore struct {
	pubKeys   [][]byte
	threshold int
	sigs      []*SignatureRecord // aligned with pubKeys; nil = not yet signed
}

func newMultisigCore(pubKeys [][]byte, threshold int) multisigCore {
	return multisigCore{pubKeys: pubKeys, threshold: threshold, sigs: make([]*SignatureRecord, len(pubKeys))}
}

func (m *multisigCore) indexOfPubKey(pub []byte) int {
	for i, pk := range m.pubKeys {
		if bytes.Equal(pk, pub) {
			return i
		}
	}
	return -1
}

func (m *multisigCore) addSignature(sig SignatureRecord) error {
	i := m.indexOfPubKey(sig.PublicKey)
	if i < 0 {
		return fmt.Errorf("txinput: public key %x is not a cosigner of this multisig input", sig.PublicKey)
	}
	m.sigs[i] = &sig
	return nil
}

func (m *multisigCore) clearSignatures() {
	m.sigs = make([]*SignatureRecord, len(m.pubKeys))
}

func (m *multisigCore) signedCount() int {
	n := 0
	for _, s := range m.sigs {
		if s != nil {
			n++
		}
	}
	return n
}

func (m *multisigCore) isFullySigned() bool {
	return m.signedCount() >= m.threshold
}

// orderedSignatures returns up to threshold signatures in cosigner
// order, the layout OP_CHECKMULTISIG requires.
func (m *multisigCore) orderedSignatures() [][]byte {
	out := make([][]byte, 0, m.threshold)
	for _, s := range m.sigs {
		if s == nil {
			continue
		}
		out = append(out, s.Signature)
		if len(out) == m.threshold {
			break
		}
	}
	return out
}

func (m *multisigCore) matchingKeyIndex(privKey *btcec.PrivateKey) int {
	pub := privKey.PubKey().SerializeCompressed()
	return m.indexOfPubKey(pub)
}

func signDigest(privKey *btcec.PrivateKey, digest []byte, hashType sighash.Type, alg sighash.Algorithm) ([]byte, error) {
	if alg == sighash.Schnorr {
		return sighash.SignSchnorr(privKey, digest, hashType)
	}
	return sighash.SignECDSA(privKey, digest, hashType)
}

func verifyDigest(pub *btcec.PublicKey, digest []byte, sig []byte) bool {
	if sighash.IsLikelySchnorr(sig) {
		return sighash.VerifySchnorr(pub, digest, sig)
	}
	return sighash.VerifyECDSA(pub, digest, sig)
}

// MultiSig signs a bare m-of-n OP_CHECKMULTISIG output directly (no P2SH
// wrapper): the locking script itself is the signing subscript.
type MultiSig struct {
	Base
	multisigCore
}

// NewMultiSig constructs a bare multisig input over the given cosigner
// keys and threshold. Threshold must already have been validated
// (threshold <= len(pubKeys)) by the builder, per §4.2.
func NewMultiSig(prevTxID [32]byte, prevIndex, sequence uint32, pubKeys [][]byte, threshold int) *MultiSig {
	return &MultiSig{Base: NewBase(prevTxID, prevIndex, sequence), multisigCore: newMultisigCore(pubKeys, threshold)}
}

func (m *MultiSig) EstimateSize() int {
	return 32 + 4 + 1 + 1 + m.threshold*(1+estimatedSignatureSize) + 4
}

func (m *MultiSig) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	if m.Output() == nil {
		return nil, fmt.Errorf("txinput: missing spent output for input %d", index)
	}
	if m.matchingKeyIndex(privKey) < 0 {
		return nil, nil
	}
	digest, err := sighash.Digest(cache, tv, index, m.Output().Script, m.Output().Value, hashType)
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

func (m *MultiSig) AddSignature(sig SignatureRecord) error {
	if err := m.addSignature(sig); err != nil {
		return err
	}
	return m.rebuildUnlockingScript()
}

func (m *MultiSig) rebuildUnlockingScript() error {
	if !m.isFullySigned() {
		// Not enough signatures yet: leave the unlocking script empty
		// rather than publish a script CHECKMULTISIG would reject.
		m.SetUnlockingScript(nil)
		return nil
	}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_0) // CHECKMULTISIG's historical off-by-one extra pop
	for _, sig := range m.orderedSignatures() {
		b.AddData(sig)
	}
	script, err := b.Script()
	if err != nil {
		return fmt.Errorf("txinput: failed to build multisig unlocking script: %w", err)
	}
	m.SetUnlockingScript(script)
	return nil
}

func (m *MultiSig) ClearSignatures() {
	m.clearSignatures()
	m.SetUnlockingScript(nil)
}

func (m *MultiSig) IsFullySigned() bool         { return m.isFullySigned() }
func (m *MultiSig) IsFullySignedKnown() bool    { return true }
func (m *MultiSig) IsValidSignatureKnown() bool { return true }

func (m *MultiSig) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
	if m.Output() == nil {
		return false
	}
	digest, err := sighash.Digest(cache, tv, index, m.Output().Script, m.Output().Value, sig.SighashType)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(sig.PublicKey)
	if err != nil {
		return false
	}
	return verifyDigest(pub, digest, sig.Signature)
}
