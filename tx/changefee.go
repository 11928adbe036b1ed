package tx

import (
	"github.com/VersoriumX/Bitcore-X/txlog"
	"github.com/VersoriumX/Bitcore-X/wirecodec"
)

// changeOutputSize returns the serialized size a change output would
// add, per §4.3 step 4.
func (t *Transaction) changeOutputSize() int {
	if t.changeScript == nil {
		return 0
	}
	return 8 + wirecodec.VarIntSize(uint64(len(*t.changeScript))) + len(*t.changeScript)
}

// feeForSize applies the builder's configured rate to a byte size:
// feePerKb when set (or the default when neither rate is set), and
// feePerByte only when feePerKb is unset, per §4.3 step 2.
func (t *Transaction) feeForSize(size int) int64 {
	if t.feePerByte != nil && t.feePerKb == nil {
		return ceilDiv(int64(size)*(*t.feePerByte), 1)
	}
	kb := int64(DefaultFeePerKB)
	if t.feePerKb != nil {
		kb = *t.feePerKb
	}
	return ceilDiv(int64(size)*kb, 1000)
}

// estimateFee implements §4.3's 5-step algorithm.
func (t *Transaction) estimateFee() int64 {
	estimatedSize := t.estimateSerializedSize()
	feeNoChange := t.feeForSize(estimatedSize)
	if t.changeScript == nil {
		return feeNoChange
	}

	feeWithChange := t.feeForSize(estimatedSize + t.changeOutputSize())
	available := t.inputSum() - t.outputSum()
	if available <= feeWithChange {
		return feeNoChange
	}
	return feeWithChange
}

func ceilDiv(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

// estimateSerializedSize sums a worst-case byte count over the
// transaction's current shape, using each input's worst-case
// EstimateSize() (accounting for not-yet-produced signatures).
func (t *Transaction) estimateSerializedSize() int {
	size := 4 + wirecodec.VarIntSize(uint64(len(t.inputs))) + wirecodec.VarIntSize(uint64(len(t.outputs))) + 4
	for _, in := range t.inputs {
		size += in.EstimateSize()
	}
	for _, o := range t.outputs {
		size += o.ByteSize()
	}
	return size
}

// GetFee returns the effective fee: 0 for coinbase, else the explicit
// override if set, else available when no change script is set, else
// the estimated fee.
func (t *Transaction) GetFee() int64 {
	if t.IsCoinbase() {
		return 0
	}
	if t.feeOverride != nil {
		return *t.feeOverride
	}
	if t.changeScript == nil {
		return t.inputSum() - t.outputSum()
	}
	return t.estimateFee()
}

// updateChangeOutput recomputes the change output per §4.3 and clears
// every input's signatures, since any change to the change output
// alters every signature's digest domain (§5's shared-resource policy).
func (t *Transaction) updateChangeOutput() error {
	defer t.clearAllSignatures()

	if t.changeIndex >= 0 && t.changeIndex < len(t.outputs) {
		t.outputs = append(t.outputs[:t.changeIndex], t.outputs[t.changeIndex+1:]...)
		t.changeIndex = -1
		t.invalidate()
	}

	if t.changeScript == nil {
		return nil
	}

	available := t.inputSum() - t.outputSum()
	feeTarget := t.estimateFee()
	if t.feeOverride != nil {
		feeTarget = *t.feeOverride
	}
	change := available - feeTarget

	if change >= DustAmount {
		t.outputs = append(t.outputs, &Output{Value: change, Script: *t.changeScript})
		t.changeIndex = len(t.outputs) - 1
	} else {
		txlog.L().Debug("change below dust threshold, folding into fee", "change", change)
	}
	t.invalidate()
	return nil
}
