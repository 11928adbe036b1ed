package tx

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
)

// IsZceSecured implements §4.8's Zero-Confirmation Escrow verification:
// given a companion reclaim transaction, the collateral amount it
// forfeits, and the minimum acceptable fee rate, reports whether this
// transaction is ZCE-secured against double-spend.
func (t *Transaction) IsZceSecured(reclaimTx *Transaction, escrowAmount int64, minFeeRate float64) bool {
	if len(t.inputs) > 65536 {
		return false
	}
	for _, in := range t.inputs {
		spent := in.Output()
		if spent == nil || !scriptview.Script(spent.Script).IsP2PKH() {
			return false
		}
	}

	if reclaimTx == nil || len(reclaimTx.inputs) == 0 {
		return false
	}
	myHash, err := t.Hash()
	if err != nil {
		return false
	}
	reclaimIn0 := reclaimTx.inputs[0]
	reclaimPrevHash := reverseHex(reclaimIn0.PrevTxID())
	if reclaimPrevHash != myHash {
		return false
	}
	escrowVout := reclaimIn0.PrevOutIndex()
	if int(escrowVout) >= len(t.outputs) {
		return false
	}
	escrowUTXO := t.outputs[escrowVout]

	myRaw, err := t.serializeRaw()
	if err != nil {
		return false
	}
	if float64(escrowUTXO.Value) < float64(escrowAmount)+float64(len(myRaw))*minFeeRate {
		return false
	}

	reclaimRaw, err := reclaimTx.serializeRaw()
	if err != nil {
		return false
	}
	reclaimFee := reclaimTx.GetFee()
	if float64(reclaimFee)/float64(len(reclaimRaw)) < minFeeRate {
		return false
	}

	disasm, err := txscript.DisasmString(reclaimIn0.UnlockingScript())
	if err != nil {
		return false
	}
	tokens := strings.Fields(disasm)
	if len(tokens) != 3 {
		return false
	}

	cosignerKeys := make([][]byte, 0, len(t.inputs))
	for _, in := range t.inputs {
		sig := extractFirstPush(in.UnlockingScript())
		pub := extractScriptSig(in.UnlockingScript())
		if sig == nil || pub == nil || !endsInSighashAllForkID(sig) {
			return false
		}
		cosignerKeys = append(cosignerKeys, pub)
	}

	reclaimSig, reclaimPub, redeemHex := tokens[0], tokens[1], tokens[2]
	reclaimPubBytes, err := hex.DecodeString(reclaimPub)
	if err != nil {
		return false
	}

	expectedRedeem, err := scriptview.EscrowRedeemScript(len(cosignerKeys), cosignerKeys, reclaimPubBytes)
	if err != nil {
		return false
	}
	expectedHash := scriptview.Hash160OfRedeemScript(expectedRedeem)

	escrowScriptHash := scriptview.Script(escrowUTXO.Script).ScriptHash()
	if escrowScriptHash == nil || !bytesEqual(escrowScriptHash, expectedHash) {
		return false
	}

	redeemBytes, err := hex.DecodeString(redeemHex)
	if err != nil {
		return false
	}
	if !bytesEqual(scriptview.Hash160OfRedeemScript(redeemBytes), expectedHash) {
		return false
	}

	reclaimSigBytes, err := hex.DecodeString(reclaimSig)
	if err != nil {
		return false
	}
	if !endsInSighashAllForkID(reclaimSigBytes) {
		return false
	}
	digest, err := sighash.Digest(reclaimTx.cache(), reclaimTx, 0, expectedRedeem, escrowUTXO.Value, sighash.HashType(reclaimSigBytes))
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(reclaimPubBytes)
	if err != nil {
		return false
	}
	if sighash.IsLikelySchnorr(reclaimSigBytes) {
		return sighash.VerifySchnorr(pub, digest, reclaimSigBytes)
	}
	return sighash.VerifyECDSA(pub, digest, reclaimSigBytes)
}

func reverseHex(h [32]byte) string {
	reversed := make([]byte, len(h))
	for i := range h {
		reversed[i] = h[len(h)-1-i]
	}
	return hex.EncodeToString(reversed)
}

// extractScriptSig pulls the public key out of a P2PKH unlocking
// script's <sig><pubkey> push sequence, the shape used to rebuild the
// cosigner key list for the expected escrow redeem script.
func extractScriptSig(unlocking []byte) []byte {
	tokenizer := txscript.MakeScriptTokenizer(0, unlocking)
	var last []byte
	for tokenizer.Next() {
		last = tokenizer.Data()
	}
	if tokenizer.Err() != nil {
		return nil
	}
	return last
}

// extractFirstPush returns the first data push of a <sig><pubkey>
// unlocking script, the signature blob §4.8 check #7 inspects for its
// trailing sighash-type byte.
func extractFirstPush(unlocking []byte) []byte {
	tokenizer := txscript.MakeScriptTokenizer(0, unlocking)
	if !tokenizer.Next() {
		return nil
	}
	if tokenizer.Err() != nil {
		return nil
	}
	return tokenizer.Data()
}

// endsInSighashAllForkID implements §4.8 check #7: every signature must
// end in the byte SIGHASH_ALL | SIGHASH_FORKID.
func endsInSighashAllForkID(sig []byte) bool {
	if len(sig) == 0 {
		return false
	}
	return sighash.Type(sig[len(sig)-1]) == sighash.Default
}
