package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/hashicorp/go-multierror"

	"github.com/VersoriumX/Bitcore-X/sighash"
	"github.com/VersoriumX/Bitcore-X/txerr"
	"github.com/VersoriumX/Bitcore-X/txinput"
)

// Sighash TxView implementation: the transaction core itself satisfies
// sighash.TxView so signing never needs to materialize a concrete
// btcsuite wire.MsgTx.

func (t *Transaction) SighashVersion() int32    { return t.Version }
func (t *Transaction) SighashLockTime() uint32  { return t.LockTime }
func (t *Transaction) SighashInputCount() int   { return len(t.inputs) }
func (t *Transaction) SighashOutputCount() int  { return len(t.outputs) }

func (t *Transaction) SighashInputPrevTxID(i int) [32]byte  { return t.inputs[i].PrevTxID() }
func (t *Transaction) SighashInputPrevIndex(i int) uint32   { return t.inputs[i].PrevOutIndex() }
func (t *Transaction) SighashInputSequence(i int) uint32    { return t.inputs[i].Sequence() }
func (t *Transaction) SighashOutputValue(i int) int64       { return t.outputs[i].Value }
func (t *Transaction) SighashOutputScript(i int) []byte     { return t.outputs[i].Script }

// Sign signs every input the given private keys can contribute to,
// per §4.4. Requires every non-null input to have its spent output
// attached; null (coinbase-style) inputs are skipped.
// Per-input signing failures across the whole key × input product are
// aggregated into one *multierror.Error rather than aborting early,
// matching the source's retry-loop posture of attempting every
// remaining input.
func (t *Transaction) Sign(privKeys []*btcec.PrivateKey, hashType sighash.Type, alg sighash.Algorithm) error {
	for i, in := range t.inputs {
		if in.Output() == nil && !in.IsNull() {
			return txerr.New(txerr.MissingUtxoInfo, "input %d has no attached spent output", i)
		}
	}

	if hashType == 0 {
		hashType = sighash.Default
	}
	if alg == "" {
		alg = sighash.ECDSA
	}

	cache := t.cache()
	var errs *multierror.Error

	for _, priv := range privKeys {
		pubKeyHash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
		for i, in := range t.inputs {
			if in.IsNull() {
				continue
			}
			sigs, err := in.GetSignatures(t, cache, i, priv, hashType, pubKeyHash, alg)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("input %d: %w", i, err))
				continue
			}
			for _, sig := range sigs {
				if err := t.ApplySignature(sig); err != nil {
					errs = multierror.Append(errs, fmt.Errorf("input %d: %w", i, err))
				}
			}
		}
	}

	return errs.ErrorOrNil()
}

// ApplySignature delegates to the variant at sig.InputIndex.
func (t *Transaction) ApplySignature(sig txinput.SignatureRecord) error {
	if sig.InputIndex < 0 || sig.InputIndex >= len(t.inputs) {
		return txerr.New(txerr.InvalidIndex, "signature input index %d out of range (have %d)", sig.InputIndex, len(t.inputs))
	}
	return t.inputs[sig.InputIndex].AddSignature(sig)
}

// IsFullySigned holds iff every input reports fully signed. An input
// whose variant can't answer (the Unknown variant) is treated as
// UnableToVerifySignature by VerifySignature, not silently true here:
// IsFullySigned itself still reports the variant's own (possibly
// presence-only) answer so building flows can poll progress.
func (t *Transaction) IsFullySigned() bool {
	for _, in := range t.inputs {
		if !in.IsFullySigned() {
			return false
		}
	}
	return true
}

// VerifySignature checks sig against input idx's spent output, via the
// sighash collaborator. Returns an error tagged UnableToVerifySignature
// when the input's variant cannot answer (the Unknown variant).
func (t *Transaction) VerifySignature(idx int, sig txinput.SignatureRecord) error {
	if idx < 0 || idx >= len(t.inputs) {
		return txerr.New(txerr.InvalidIndex, "input index %d out of range (have %d)", idx, len(t.inputs))
	}
	in := t.inputs[idx]
	if !in.IsValidSignatureKnown() {
		return txerr.New(txerr.UnableToVerifySignature, "input %d's script template is not recognized", idx)
	}
	if !in.IsValidSignature(t, t.cache(), idx, sig) {
		return txerr.New(txerr.MissingSignatures, "signature for input %d does not verify", idx)
	}
	return nil
}
