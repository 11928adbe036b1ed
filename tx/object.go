package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/txerr"
	"github.com/VersoriumX/Bitcore-X/txinput"
)

// InputObject is the object-form projection of one input.
type InputObject struct {
	PrevTxID        string `json:"prevTxId"`
	OutputIndex     uint32 `json:"outputIndex"`
	Sequence        uint32 `json:"sequence"`
	UnlockingScript string `json:"unlockingScript"`
}

// OutputObject is the object-form projection of one output.
type OutputObject struct {
	Value     int64      `json:"value"`
	Script    string     `json:"script"`
	TokenData *TokenData `json:"tokenData,omitempty"`
}

// Object is the {hash, version, inputs[], outputs[], nLockTime,
// changeScript?, changeIndex?, fee?} projection of a Transaction, per
// §6's object form.
type Object struct {
	Hash         string         `json:"hash"`
	Version      int32          `json:"version"`
	Inputs       []InputObject  `json:"inputs"`
	Outputs      []OutputObject `json:"outputs"`
	NLockTime    uint32         `json:"nLockTime"`
	ChangeScript string         `json:"changeScript,omitempty"`
	ChangeIndex  *int           `json:"changeIndex,omitempty"`
	Fee          *int64         `json:"fee,omitempty"`
}

// ToObject emits the Transaction's object-form projection.
func (t *Transaction) ToObject() (*Object, error) {
	hash, err := t.Hash()
	if err != nil {
		return nil, err
	}

	obj := &Object{
		Hash:      hash,
		Version:   t.Version,
		NLockTime: t.LockTime,
	}
	for _, in := range t.inputs {
		prevID := in.PrevTxID()
		obj.Inputs = append(obj.Inputs, InputObject{
			PrevTxID:        reverseHex(prevID),
			OutputIndex:     in.PrevOutIndex(),
			Sequence:        in.Sequence(),
			UnlockingScript: hex.EncodeToString(in.UnlockingScript()),
		})
	}
	for _, o := range t.outputs {
		obj.Outputs = append(obj.Outputs, OutputObject{
			Value:     o.Value,
			Script:    hex.EncodeToString(o.Script),
			TokenData: o.TokenData,
		})
	}
	if t.changeScript != nil {
		obj.ChangeScript = hex.EncodeToString(*t.changeScript)
	}
	if t.changeIndex >= 0 {
		idx := t.changeIndex
		obj.ChangeIndex = &idx
	}
	if t.feeOverride != nil {
		fee := *t.feeOverride
		obj.Fee = &fee
	}
	return obj, nil
}

// ToJSON emits the Transaction's object-form projection as JSON.
func (t *Transaction) ToJSON() ([]byte, error) {
	obj, err := t.ToObject()
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// FromObject reconstructs a Transaction from its object-form
// projection. If obj.Hash is set, it must match the reconstructed id.
func FromObject(obj *Object, params chainparams.Params) (*Transaction, error) {
	t := NewTransaction(params)
	t.Version = obj.Version
	t.LockTime = obj.NLockTime
	t.changeIndex = -1

	for i, in := range obj.Inputs {
		reversedID, err := hex.DecodeString(in.PrevTxID)
		if err != nil || len(reversedID) != 32 {
			return nil, fmt.Errorf("tx: input %d has invalid prevTxId: %w", i, err)
		}
		var prevID [32]byte
		for j := range reversedID {
			prevID[j] = reversedID[len(reversedID)-1-j]
		}
		script, err := hex.DecodeString(in.UnlockingScript)
		if err != nil {
			return nil, fmt.Errorf("tx: input %d has invalid unlocking script: %w", i, err)
		}
		t.inputs = append(t.inputs, txinput.NewUnknown(prevID, in.OutputIndex, in.Sequence, script))
	}

	for i, o := range obj.Outputs {
		script, err := hex.DecodeString(o.Script)
		if err != nil {
			return nil, fmt.Errorf("tx: output %d has invalid script: %w", i, err)
		}
		t.outputs = append(t.outputs, &Output{Value: o.Value, Script: scriptview.Script(script), TokenData: o.TokenData})
	}

	if obj.ChangeScript != "" {
		script, err := hex.DecodeString(obj.ChangeScript)
		if err != nil {
			return nil, fmt.Errorf("tx: invalid changeScript: %w", err)
		}
		s := scriptview.Script(script)
		t.changeScript = &s
	}
	if obj.ChangeIndex != nil {
		t.changeIndex = *obj.ChangeIndex
	}
	if obj.Fee != nil {
		fee := *obj.Fee
		t.feeOverride = &fee
	}

	if obj.Hash != "" {
		actual, err := t.Hash()
		if err != nil {
			return nil, err
		}
		if actual != obj.Hash {
			return nil, txerr.New(txerr.InvalidArgument, "object hash %s does not match reconstructed id %s", obj.Hash, actual).
				WithDetail("expected", obj.Hash).WithDetail("actual", actual)
		}
	}

	return t, nil
}
