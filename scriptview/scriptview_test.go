package scriptview

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/chainparams"
)

func testPubKeys(t *testing.T, n int) [][]byte {
	t.Helper()
	keys := make([][]byte, n)
	for i := 0; i < n; i++ {
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			t.Fatalf("NewPrivateKey: %v", err)
		}
		keys[i] = priv.PubKey().SerializeCompressed()
	}
	return keys
}

func TestFromAddressAndPredicates(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}

	script, err := FromAddress(addr.EncodeAddress(), chainparams.MainNet)
	if err != nil {
		t.Fatalf("FromAddress: %v", err)
	}
	if !script.IsP2PKH() {
		t.Errorf("expected FromAddress(pubkeyhash) to produce a P2PKH script")
	}
	if !script.IsP2PKHLike() {
		t.Errorf("IsP2PKHLike should hold for a P2PKH script")
	}
	if script.IsP2SH() || script.IsMultisigOut() {
		t.Errorf("a P2PKH script should not classify as P2SH or multisig")
	}
}

func TestDataOut(t *testing.T) {
	script, err := DataOut([]byte("hello"))
	if err != nil {
		t.Fatalf("DataOut: %v", err)
	}
	if !script.IsDataOut() {
		t.Errorf("expected DataOut script to classify as data-out")
	}
}

func TestMultisigOutAndEscrow(t *testing.T) {
	keys := testPubKeys(t, 3)

	multisig, err := MultisigOut(2, keys)
	if err != nil {
		t.Fatalf("MultisigOut: %v", err)
	}
	if !multisig.IsMultisigOut() {
		t.Errorf("expected MultisigOut script to classify as multisig")
	}

	if _, err := MultisigOut(4, keys); err == nil {
		t.Errorf("threshold exceeding key count should fail")
	}

	reclaim := testPubKeys(t, 1)[0]
	redeem, err := EscrowRedeemScript(2, keys, reclaim)
	if err != nil {
		t.Fatalf("EscrowRedeemScript: %v", err)
	}
	if len(redeem) == 0 {
		t.Errorf("EscrowRedeemScript should not be empty")
	}

	out, err := EscrowOut(2, keys, reclaim)
	if err != nil {
		t.Fatalf("EscrowOut: %v", err)
	}
	if !out.IsP2SH() {
		t.Errorf("EscrowOut should produce a P2SH script")
	}
	if got := out.ScriptHash(); len(got) != 20 {
		t.Errorf("ScriptHash() = %d bytes, want 20", len(got))
	}
	if string(out.ScriptHash()) != string(Hash160OfRedeemScript(redeem)) {
		t.Errorf("EscrowOut's embedded hash should match Hash160OfRedeemScript(redeem)")
	}
}

func TestHashForPubKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	got := HashForPubKey(priv.PubKey())
	want := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	if string(got) != string(want) {
		t.Errorf("HashForPubKey mismatch")
	}
}

func mustScript(t *testing.T, b *txscript.ScriptBuilder) Script {
	t.Helper()
	s, err := b.Script()
	if err != nil {
		t.Fatalf("Script(): %v", err)
	}
	return Script(s)
}

func TestScriptEqual(t *testing.T) {
	a := mustScript(t, txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN))
	b := mustScript(t, txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN))
	c := mustScript(t, txscript.NewScriptBuilder().AddOp(txscript.OP_DUP))

	if !a.Equal(b) {
		t.Errorf("identical scripts should be Equal")
	}
	if a.Equal(c) {
		t.Errorf("different scripts should not be Equal")
	}
}
