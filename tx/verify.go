package tx

import "fmt"

// Verify runs the sanity checks of §4.6 in order, returning (true, "")
// on success or (false, reason) describing the first failure. This is
// a diagnostic, not a gate: Serialize's safe path runs its own,
// stricter gate checks (see serialize.go).
func (t *Transaction) Verify() (bool, string) {
	if len(t.inputs) == 0 {
		return false, "transaction has no inputs"
	}
	if len(t.outputs) == 0 {
		return false, "transaction has no outputs"
	}

	var runningTotal int64
	for i, o := range t.outputs {
		if !IsValidValue(o.Value) {
			return false, fmt.Sprintf("output %d has invalid value %d", i, o.Value)
		}
		runningTotal += o.Value
		if runningTotal > MaxMoney {
			return false, fmt.Sprintf("running output total exceeds MAX_MONEY at output %d", i)
		}
	}

	raw, err := t.serializeRaw()
	if err != nil {
		return false, fmt.Sprintf("failed to serialize transaction: %v", err)
	}
	if len(raw) > MaxBlockSize {
		return false, fmt.Sprintf("serialized size %d exceeds MAX_BLOCK_SIZE %d", len(raw), MaxBlockSize)
	}

	seen := make(map[[36]byte]bool)
	for i, in := range t.inputs {
		key := outpointKey(in.PrevTxID(), in.PrevOutIndex())
		if seen[key] {
			return false, fmt.Sprintf("duplicate (prevTxId, outputIndex) pair at input %d", i)
		}
		seen[key] = true
	}

	if t.IsCoinbase() {
		scriptLen := len(t.inputs[0].UnlockingScript())
		if scriptLen < 2 || scriptLen > 100 {
			return false, fmt.Sprintf("coinbase input script length %d not in [2, 100]", scriptLen)
		}
	} else {
		for i, in := range t.inputs {
			if in.IsNull() {
				return false, fmt.Sprintf("non-coinbase input %d is null", i)
			}
		}
	}

	return true, ""
}
