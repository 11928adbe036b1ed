package txinput

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/VersoriumX/Bitcore-X/sighash"
)

// Unknown is the catch-all variant for a script template none of the
// builder's recognizers matched. It carries enough to serialize (an
// outpoint and whatever unlocking script the caller already supplied,
// e.g. when a transaction is parsed rather than built from scratch) but
// cannot sign, size, or verify itself: IsFullySignedKnown and
// IsValidSignatureKnown both report false so the Transaction core can
// surface UnableToVerifySignature instead of a false "yes" or "no" —
// the design note 9.1 fix for the source's method-identity comparison.
type Unknown struct {
	Base
}

// NewUnknown wraps a raw outpoint/unlocking-script pair this package
// doesn't recognize a signing template for.
func NewUnknown(prevTxID [32]byte, prevIndex, sequence uint32, unlockingScript []byte) *Unknown {
	u := &Unknown{Base: NewBase(prevTxID, prevIndex, sequence)}
	u.SetUnlockingScript(unlockingScript)
	return u
}

// EstimateSize falls back to the unlocking script's current length; it
// cannot grow an unsigned unknown input to a worst case.
func (u *Unknown) EstimateSize() int {
	return 32 + 4 + 1 + len(u.UnlockingScript()) + 4
}

func (u *Unknown) GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error) {
	return nil, nil
}

func (u *Unknown) AddSignature(sig SignatureRecord) error {
	return nil
}

func (u *Unknown) ClearSignatures() {}

// IsFullySigned reports true whenever an unlocking script is already
// present (e.g. this input arrived pre-signed from a parsed
// transaction); callers that care about the distinction use
// IsFullySignedKnown's false to avoid trusting this blindly.
func (u *Unknown) IsFullySigned() bool { return len(u.UnlockingScript()) > 0 }

func (u *Unknown) IsFullySignedKnown() bool { return false }

func (u *Unknown) IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool {
	return false
}

func (u *Unknown) IsValidSignatureKnown() bool { return false }
