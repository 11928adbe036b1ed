package tx

import (
	"encoding/hex"
	"math"

	"github.com/VersoriumX/Bitcore-X/txerr"
)

// SerializeOptions controls which of Serialize's safety gates are
// bypassed, per §6.
type SerializeOptions struct {
	DisableMoreOutputThanInput bool
	DisableLargeFees           bool
	DisableSmallFees           bool
	DisableDustOutputs         bool
	DisableIsFullySigned       bool
	DisableAll                 bool
}

// Serialize performs the gate checks of §6 in order, then emits
// lowercase hex. Passing no options runs every gate.
func (t *Transaction) Serialize(opts ...SerializeOptions) (string, error) {
	var o SerializeOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	if !o.DisableAll {
		if err := t.checkGates(o); err != nil {
			return "", err
		}
	}

	raw, err := t.serializeRaw()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (t *Transaction) checkGates(o SerializeOptions) error {
	for i, out := range t.outputs {
		if !IsValidValue(out.Value) {
			return txerr.New(txerr.InvalidSatoshis, "output %d has invalid value %d", i, out.Value).WithDetail("index", i)
		}
	}

	// outputSum excludes the change output; the gate counts every output.
	unspent := t.inputSum() - t.outputSum()
	if t.changeIndex >= 0 && t.changeIndex < len(t.outputs) {
		unspent -= t.outputs[t.changeIndex].Value
	}

	if !o.DisableMoreOutputThanInput && unspent < 0 {
		return txerr.New(txerr.InvalidOutputAmountSum, "output sum exceeds input sum by %d", -unspent)
	}

	if t.feeOverride != nil {
		if *t.feeOverride != unspent {
			return txerr.New(txerr.FeeDifferent, "explicit fee %d does not match input-output difference %d", *t.feeOverride, unspent).
				WithDetail("explicitFee", *t.feeOverride).WithDetail("actual", unspent)
		}
	} else {
		estimated := t.estimateFee()
		maxFee := int64(math.Floor(float64(FeeSecurityMargin) * float64(estimated)))
		minFee := int64(math.Ceil(float64(estimated) / float64(FeeSecurityMargin)))

		if !o.DisableLargeFees && unspent > maxFee {
			if t.changeScript == nil {
				return txerr.New(txerr.ChangeAddressMissing, "unspent %d exceeds max fee %d and no change script is set", unspent, maxFee)
			}
			return txerr.New(txerr.FeeTooLarge, "unspent %d exceeds max fee %d", unspent, maxFee)
		}
		if !o.DisableSmallFees && unspent < minFee {
			return txerr.New(txerr.FeeTooSmall, "unspent %d is below min fee %d", unspent, minFee)
		}
	}

	if !o.DisableDustOutputs {
		for i, out := range t.outputs {
			if out.IsDust() {
				return txerr.New(txerr.DustOutputs, "output %d value %d is below dust threshold %d", i, out.Value, DustAmount).WithDetail("index", i)
			}
		}
	}

	if !o.DisableIsFullySigned && !t.IsFullySigned() {
		return txerr.New(txerr.MissingSignatures, "transaction is not fully signed")
	}

	return nil
}
