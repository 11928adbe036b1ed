// Package txinput implements the Input capability contract (§3) and its
// concrete variants (§4.2's selection table): PublicKeyHash, PublicKey,
// MultiSig, MultiSigScriptHash, Escrow, and a catch-all Unknown variant
// for unrecognized script templates. The distilled spec treats these as
// external collaborators the Transaction core depends on only through
// their capability contract; this package is that contract's one
// implementation, grounded on tokenized-pkg/txbuilder's sign.go
// (unlocking-script construction, tagged errors) and
// ModChain-outscript/btctx.go (scheme-based script builders).
package txinput

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
)

// SignatureRecord is the {input_index, sighash_type, public_key,
// signature} tuple produced by GetSignatures and consumed by
// AddSignature.
type SignatureRecord struct {
	InputIndex  int
	SighashType sighash.Type
	PublicKey   []byte
	Signature   []byte
}

// SpentOutput is the narrow view of the output being spent that the
// signing/sizing capabilities need: its value (for the sighash preimage)
// and its locking script (the signing subscript for non-P2SH templates).
type SpentOutput struct {
	Value  int64
	Script scriptview.Script
}

// NotImplemented is a sentinel value for "capability not available". No
// Capability method returns it: the Unknown variant signals an
// unsupported template by reporting false from IsFullySignedKnown and
// IsValidSignatureKnown, which the Transaction core's VerifySignature
// turns into UnableToVerifySignature.
const NotImplemented = -1

// Capability is the total capability contract every input variant
// implements. "Total" means every method has a defined return for every
// variant, including Unknown (the source's base-class "is this
// recognized" sentinel, reborn here as an explicit boolean rather than
// a method-identity comparison).
type Capability interface {
	PrevTxID() [32]byte
	PrevOutIndex() uint32
	Sequence() uint32
	SetSequence(uint32)
	UnlockingScript() []byte
	SetUnlockingScript([]byte)
	Output() *SpentOutput
	SetOutput(*SpentOutput)
	IsNull() bool

	// EstimateSize returns a worst-case signed byte count for this
	// input, used by the fee solver before signatures exist.
	EstimateSize() int

	// GetSignatures returns zero or more signatures this private key
	// can contribute to this input. Returning an empty slice with a
	// nil error means the key simply doesn't apply here (e.g. it's not
	// one of this multisig's cosigners) — callers iterate many keys
	// against many inputs and expect most combinations to be no-ops.
	GetSignatures(tv sighash.TxView, cache *sighash.Cache, index int, privKey *btcec.PrivateKey, hashType sighash.Type, pubKeyHash []byte, alg sighash.Algorithm) ([]SignatureRecord, error)

	// AddSignature incorporates a signature record into the unlocking
	// script, rebuilding it from scratch each time (templates like
	// multisig need every known signature present to rebuild the
	// correct stack order).
	AddSignature(sig SignatureRecord) error

	ClearSignatures()

	// IsFullySigned reports whether this input's unlocking script is
	// ready to broadcast. For the Unknown variant the answer is based on
	// the presence of an unlocking script only; IsFullySignedKnown tells
	// callers that case apart.
	IsFullySigned() bool

	// IsFullySignedKnown reports false only for the Unknown variant,
	// letting the Transaction core distinguish
	// "definitely not signed" from "can't tell, unsupported template".
	IsFullySignedKnown() bool

	IsValidSignature(tv sighash.TxView, cache *sighash.Cache, index int, sig SignatureRecord) bool

	// IsValidSignatureKnown mirrors IsFullySignedKnown for
	// IsValidSignature.
	IsValidSignatureKnown() bool
}

// Base holds the fields and trivial accessors every variant shares.
// Variants embed it and add their signing/sizing capability.
type Base struct {
	prevTxID  [32]byte
	prevIndex uint32
	sequence  uint32
	unlocking []byte
	spent     *SpentOutput
}

// NewBase constructs the shared input fields.
func NewBase(prevTxID [32]byte, prevIndex uint32, sequence uint32) Base {
	return Base{prevTxID: prevTxID, prevIndex: prevIndex, sequence: sequence}
}

func (b *Base) PrevTxID() [32]byte         { return b.prevTxID }
func (b *Base) PrevOutIndex() uint32       { return b.prevIndex }
func (b *Base) Sequence() uint32           { return b.sequence }
func (b *Base) SetSequence(s uint32)       { b.sequence = s }
func (b *Base) UnlockingScript() []byte    { return b.unlocking }
func (b *Base) SetUnlockingScript(s []byte) { b.unlocking = s }
func (b *Base) Output() *SpentOutput       { return b.spent }
func (b *Base) SetOutput(o *SpentOutput)   { b.spent = o }

// IsNull reports the coinbase-style null outpoint: all-zero prevTxId and
// a 0xFFFFFFFF index.
func (b *Base) IsNull() bool {
	if b.prevIndex != 0xFFFFFFFF {
		return false
	}
	for _, v := range b.prevTxID {
		if v != 0 {
			return false
		}
	}
	return true
}
