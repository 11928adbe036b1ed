package sighash

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

// fakeView is a minimal TxView used to exercise Digest and Cache without
// depending on the transaction core.
type fakeView struct {
	version    int32
	lockTime   uint32
	prevTxID   [32]byte
	prevIndex  uint32
	sequence   uint32
	outValues  []int64
	outScripts [][]byte
}

func (f *fakeView) SighashVersion() int32           { return f.version }
func (f *fakeView) SighashLockTime() uint32          { return f.lockTime }
func (f *fakeView) SighashInputCount() int           { return 1 }
func (f *fakeView) SighashInputPrevTxID(i int) [32]byte {
	return f.prevTxID
}
func (f *fakeView) SighashInputPrevIndex(i int) uint32 { return f.prevIndex }
func (f *fakeView) SighashInputSequence(i int) uint32  { return f.sequence }
func (f *fakeView) SighashOutputCount() int            { return len(f.outValues) }
func (f *fakeView) SighashOutputValue(i int) int64     { return f.outValues[i] }
func (f *fakeView) SighashOutputScript(i int) []byte   { return f.outScripts[i] }

func newFakeView() *fakeView {
	v := &fakeView{
		version:   2,
		lockTime:  0,
		prevIndex: 0,
		sequence:  0xFFFFFFFF,
		outValues: []int64{1000, 2000},
		outScripts: [][]byte{
			{0x76, 0xa9},
			{0x51},
		},
	}
	v.prevTxID[0] = 0x01
	return v
}

func TestDigestDeterministic(t *testing.T) {
	view := newFakeView()
	cache := NewCache(view)
	subScript := []byte{0x76, 0xa9, 0x14}

	d1, err := Digest(cache, view, 0, subScript, 5000, Default)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, err := Digest(cache, view, 0, subScript, 5000, Default)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Errorf("Digest should be deterministic for identical inputs")
	}
	if len(d1) != 32 {
		t.Errorf("Digest should be 32 bytes, got %d", len(d1))
	}
}

func TestDigestVariesWithHashType(t *testing.T) {
	view := newFakeView()
	cache := NewCache(view)
	subScript := []byte{0x76, 0xa9, 0x14}

	all, err := Digest(cache, view, 0, subScript, 5000, All|ForkID)
	if err != nil {
		t.Fatalf("Digest(All): %v", err)
	}
	single, err := Digest(cache, view, 0, subScript, 5000, Single|ForkID)
	if err != nil {
		t.Fatalf("Digest(Single): %v", err)
	}
	if bytes.Equal(all, single) {
		t.Errorf("different hash types should produce different digests")
	}
}

func TestDigestRejectsOutOfRangeIndex(t *testing.T) {
	view := newFakeView()
	cache := NewCache(view)
	if _, err := Digest(cache, view, 5, nil, 0, Default); err == nil {
		t.Errorf("Digest should reject an out-of-range input index")
	}
}

func TestSignAndVerifyECDSA(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	view := newFakeView()
	cache := NewCache(view)
	digest, err := Digest(cache, view, 0, []byte{0x76, 0xa9}, 1000, Default)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	sig, err := SignECDSA(priv, digest, Default)
	if err != nil {
		t.Fatalf("SignECDSA: %v", err)
	}
	if !VerifyECDSA(priv.PubKey(), digest, sig) {
		t.Errorf("VerifyECDSA should accept a signature it just produced")
	}
	if HashType(sig) != Type(Default|ForkID) {
		t.Errorf("HashType(sig) = %v, want %v", HashType(sig), Default|ForkID)
	}
	if IsLikelySchnorr(sig) {
		t.Errorf("a DER ECDSA signature should not look like Schnorr")
	}

	other, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	if VerifyECDSA(other.PubKey(), digest, sig) {
		t.Errorf("VerifyECDSA should reject a signature from the wrong key")
	}
}

func TestSignAndVerifySchnorr(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	view := newFakeView()
	cache := NewCache(view)
	digest, err := Digest(cache, view, 0, []byte{0x76, 0xa9}, 1000, Default)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	sig, err := SignSchnorr(priv, digest, Default)
	if err != nil {
		t.Fatalf("SignSchnorr: %v", err)
	}
	if !IsLikelySchnorr(sig) {
		t.Errorf("a schnorr signature should be recognized as such by length")
	}
	if !VerifySchnorr(priv.PubKey(), digest, sig) {
		t.Errorf("VerifySchnorr should accept a signature it just produced")
	}
}

func TestCacheVariesWithShape(t *testing.T) {
	v1 := newFakeView()
	v2 := newFakeView()
	v2.outValues = []int64{9999}
	v2.outScripts = [][]byte{{0x51}}

	c1 := NewCache(v1)
	c2 := NewCache(v2)
	if c1.hashOutputs == c2.hashOutputs {
		t.Errorf("caches over different output shapes should diverge")
	}
}
