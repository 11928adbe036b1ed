package tx

import (
	"bytes"
	"sort"

	"github.com/VersoriumX/Bitcore-X/txerr"
	"github.com/VersoriumX/Bitcore-X/txinput"
)

// Sort applies BIP-69 deterministic ordering to both inputs and
// outputs.
func (t *Transaction) Sort() error {
	if err := t.SortInputs(defaultInputOrder); err != nil {
		return err
	}
	return t.SortOutputs(defaultOutputOrder)
}

func defaultInputOrder(inputs []txinput.Capability) []txinput.Capability {
	type indexed struct {
		in  txinput.Capability
		pos int
	}
	items := make([]indexed, len(inputs))
	for i, in := range inputs {
		items[i] = indexed{in, i}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].in, items[j].in
		aID, bID := a.PrevTxID(), b.PrevTxID()
		if c := bytes.Compare(aID[:], bID[:]); c != 0 {
			return c < 0
		}
		return a.PrevOutIndex() < b.PrevOutIndex()
	})
	out := make([]txinput.Capability, len(items))
	for i, it := range items {
		out[i] = it.in
	}
	return out
}

func defaultOutputOrder(outputs []*Output) []*Output {
	items := make([]*Output, len(outputs))
	copy(items, outputs)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return bytes.Compare(a.Script, b.Script) < 0
	})
	return items
}

// SortInputs reorders inputs via fn, which must return a permutation
// of the current input set. Clears all signatures, per §4.5.
func (t *Transaction) SortInputs(fn func([]txinput.Capability) []txinput.Capability) error {
	reordered := fn(t.inputs)
	if !isPermutation(t.inputs, reordered) {
		return txerr.New(txerr.InvalidSorting, "SortInputs callback did not return a permutation of the existing inputs")
	}
	t.inputs = reordered
	t.invalidate()
	t.clearAllSignatures()
	return nil
}

// SortOutputs reorders outputs via fn, which must return a permutation
// of the current output set. Rebinds the change index by identity.
func (t *Transaction) SortOutputs(fn func([]*Output) []*Output) error {
	var changeOutput *Output
	if t.changeIndex >= 0 && t.changeIndex < len(t.outputs) {
		changeOutput = t.outputs[t.changeIndex]
	}

	reordered := fn(t.outputs)
	if !isOutputPermutation(t.outputs, reordered) {
		return txerr.New(txerr.InvalidSorting, "SortOutputs callback did not return a permutation of the existing outputs")
	}
	t.outputs = reordered

	if changeOutput != nil {
		for i, o := range t.outputs {
			if o == changeOutput {
				t.changeIndex = i
				break
			}
		}
	}
	t.invalidate()
	return nil
}

func isPermutation(orig, reordered []txinput.Capability) bool {
	if len(orig) != len(reordered) {
		return false
	}
	seen := make(map[txinput.Capability]int)
	for _, in := range orig {
		seen[in]++
	}
	for _, in := range reordered {
		seen[in]--
		if seen[in] < 0 {
			return false
		}
	}
	return true
}

func isOutputPermutation(orig, reordered []*Output) bool {
	if len(orig) != len(reordered) {
		return false
	}
	seen := make(map[*Output]int)
	for _, o := range orig {
		seen[o]++
	}
	for _, o := range reordered {
		seen[o]--
		if seen[o] < 0 {
			return false
		}
	}
	return true
}
