package tx

import (
	"testing"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/txinput"
)

func TestSortInputsOrdersByPrevTxIDThenIndex(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)

	var idA, idB [32]byte
	idA[0] = 0x02
	idB[0] = 0x01
	txn.inputs = append(txn.inputs,
		txinput.NewUnknown(idA, 0, 0xFFFFFFFF, nil),
		txinput.NewUnknown(idB, 1, 0xFFFFFFFF, nil),
		txinput.NewUnknown(idB, 0, 0xFFFFFFFF, nil),
	)

	if err := txn.SortInputs(defaultInputOrder); err != nil {
		t.Fatalf("SortInputs: %v", err)
	}

	got := txn.Inputs()
	if got[0].PrevTxID() != idB || got[0].PrevOutIndex() != 0 {
		t.Errorf("first input should be (idB, 0)")
	}
	if got[1].PrevTxID() != idB || got[1].PrevOutIndex() != 1 {
		t.Errorf("second input should be (idB, 1)")
	}
	if got[2].PrevTxID() != idA {
		t.Errorf("third input should be idA")
	}
}

func TestSortOutputsOrdersByValueThenScript(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	txn.outputs = []*Output{
		{Value: 500, Script: scriptview.Script{0x02}},
		{Value: 100, Script: scriptview.Script{0x01}},
		{Value: 100, Script: scriptview.Script{0x00}},
	}

	if err := txn.SortOutputs(defaultOutputOrder); err != nil {
		t.Fatalf("SortOutputs: %v", err)
	}

	got := txn.Outputs()
	if got[0].Value != 100 || got[0].Script[0] != 0x00 {
		t.Errorf("first output should be value 100, script 0x00")
	}
	if got[1].Value != 100 || got[1].Script[0] != 0x01 {
		t.Errorf("second output should be value 100, script 0x01")
	}
	if got[2].Value != 500 {
		t.Errorf("third output should be value 500")
	}
}

func TestSortOutputsRebindsChangeIndexByIdentity(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	change := &Output{Value: 50, Script: scriptview.Script{0xff}}
	txn.outputs = []*Output{
		{Value: 900, Script: scriptview.Script{0x01}},
		change,
	}
	txn.changeIndex = 1

	if err := txn.SortOutputs(defaultOutputOrder); err != nil {
		t.Fatalf("SortOutputs: %v", err)
	}
	if txn.outputs[txn.changeIndex] != change {
		t.Errorf("changeIndex should still reference the original change output after reordering")
	}
}

func TestSortRejectsNonPermutation(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var id [32]byte
	txn.inputs = append(txn.inputs, txinput.NewUnknown(id, 0, 0xFFFFFFFF, nil))

	bogus := func([]txinput.Capability) []txinput.Capability {
		return []txinput.Capability{txinput.NewUnknown(id, 0, 0xFFFFFFFF, nil), txinput.NewUnknown(id, 1, 0xFFFFFFFF, nil)}
	}
	if err := txn.SortInputs(bogus); err == nil {
		t.Errorf("SortInputs should reject a callback returning a non-permutation")
	}
}

func TestSortClearsSignatures(t *testing.T) {
	priv := genPriv(t)
	txn := NewTransaction(chainparams.MainNet)
	var txID [32]byte
	txID[0] = 0xaa
	script := testPubKeyHashScript(t, priv)
	if err := txn.From(UnspentOutput{TxID: txID, OutputIndex: 0, Script: script, Value: 10000}); err != nil {
		t.Fatalf("From: %v", err)
	}
	pubKeyHash := scriptview.HashForPubKey(priv.PubKey())
	sigs, err := txn.Inputs()[0].GetSignatures(txn, txn.cache(), 0, priv, 0, pubKeyHash, "")
	if err != nil {
		t.Fatalf("GetSignatures: %v", err)
	}
	if len(sigs) == 0 {
		t.Fatalf("expected a signature")
	}
	if err := txn.Inputs()[0].AddSignature(sigs[0]); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}
	if !txn.Inputs()[0].IsFullySigned() {
		t.Fatalf("expected input to be signed before sorting")
	}

	if err := txn.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if txn.Inputs()[0].IsFullySigned() {
		t.Errorf("Sort should clear signatures")
	}
}
