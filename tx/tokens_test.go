package tx

import (
	"testing"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/txinput"
)

func TestValidateTokensAcceptsBalancedFungibleTransfer(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var category [32]byte
	category[0] = 0xAB
	var parentTxID [32]byte
	parentTxID[0] = 0x01

	txn.inputs = append(txn.inputs, txinput.NewUnknown(parentTxID, 0, 0xFFFFFFFF, []byte{0x51}))
	txn.inputs[0].SetOutput(&txinput.SpentOutput{Value: 1000, Script: scriptview.Script{0x51}})
	txn.AssociateTokenInput(parentTxID, 0, &TokenData{Category: category, Amount: 500})

	txn.outputs = append(txn.outputs, &Output{
		Value:     1000,
		Script:    scriptview.Script{0x51},
		TokenData: &TokenData{Category: category, Amount: 500},
	})

	if err := txn.ValidateTokens(); err != nil {
		t.Errorf("ValidateTokens: %v", err)
	}
}

func TestValidateTokensRejectsOverspend(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var category [32]byte
	category[0] = 0xCD
	var parentTxID [32]byte
	parentTxID[0] = 0x02

	txn.inputs = append(txn.inputs, txinput.NewUnknown(parentTxID, 0, 0xFFFFFFFF, []byte{0x51}))
	txn.inputs[0].SetOutput(&txinput.SpentOutput{Value: 1000, Script: scriptview.Script{0x51}})
	txn.AssociateTokenInput(parentTxID, 0, &TokenData{Category: category, Amount: 100})

	txn.outputs = append(txn.outputs, &Output{
		Value:     1000,
		Script:    scriptview.Script{0x51},
		TokenData: &TokenData{Category: category, Amount: 500},
	})

	if err := txn.ValidateTokens(); err == nil {
		t.Errorf("ValidateTokens should reject sending more tokens than were supplied by inputs")
	}
}

// TestValidateTokensRequiresMintInputAtOutputIndexZero covers §4.7's
// minting-UTXO check: the minting input's own outpoint must reference
// outputIndex 0 of the genesis transaction, not position 0 among this
// transaction's own outputs.
func TestValidateTokensRequiresMintInputAtOutputIndexZero(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var category [32]byte
	category[0] = 0xEF

	txn.inputs = append(txn.inputs, txinput.NewUnknown(category, 1, 0xFFFFFFFF, []byte{0x51}))
	txn.inputs[0].SetOutput(&txinput.SpentOutput{Value: 1000, Script: scriptview.Script{0x51}})

	txn.outputs = append(txn.outputs,
		&Output{Value: 500, Script: scriptview.Script{0x51}, TokenData: &TokenData{Category: category, Amount: 10}},
	)

	if err := txn.ValidateTokens(); err == nil {
		t.Errorf("ValidateTokens should reject a minting input that doesn't spend outputIndex 0 of the genesis transaction")
	}
}

func TestValidateTokensAcceptsMintOutputAtIndexZero(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var category [32]byte
	category[0] = 0xFE

	txn.inputs = append(txn.inputs, txinput.NewUnknown(category, 0, 0xFFFFFFFF, []byte{0x51}))
	txn.inputs[0].SetOutput(&txinput.SpentOutput{Value: 1000, Script: scriptview.Script{0x51}})

	txn.outputs = append(txn.outputs,
		&Output{Value: 500, Script: scriptview.Script{0x51}, TokenData: &TokenData{Category: category, Amount: 10}},
	)

	if err := txn.ValidateTokens(); err != nil {
		t.Errorf("ValidateTokens: %v", err)
	}
}

// TestValidateTokensAcceptsMintOutputNotAtIndexZero exercises the
// distinction directly: a minted output placed at outputs[1] must still
// pass, since §4.7 constrains the minting *input's* outpoint, not the
// minted output's position.
func TestValidateTokensAcceptsMintOutputNotAtIndexZero(t *testing.T) {
	txn := NewTransaction(chainparams.MainNet)
	var category [32]byte
	category[0] = 0xFD

	txn.inputs = append(txn.inputs, txinput.NewUnknown(category, 0, 0xFFFFFFFF, []byte{0x51}))
	txn.inputs[0].SetOutput(&txinput.SpentOutput{Value: 1000, Script: scriptview.Script{0x51}})

	txn.outputs = append(txn.outputs,
		&Output{Value: 500, Script: scriptview.Script{0x51}},
		&Output{Value: 500, Script: scriptview.Script{0x51}, TokenData: &TokenData{Category: category, Amount: 10}},
	)

	if err := txn.ValidateTokens(); err != nil {
		t.Errorf("ValidateTokens: %v", err)
	}
}
