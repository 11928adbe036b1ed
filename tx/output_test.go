package tx

import (
	"bytes"
	"testing"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/wirecodec"
)

func TestIsValidValue(t *testing.T) {
	tests := []struct {
		value int64
		want  bool
	}{
		{-1, false},
		{0, true},
		{546, true},
		{MaxMoney, true},
		{MaxMoney + 1, false},
	}
	for _, tt := range tests {
		if got := IsValidValue(tt.value); got != tt.want {
			t.Errorf("IsValidValue(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestOutputIsDust(t *testing.T) {
	dataOut, err := DataOutput([]byte("payload"))
	if err != nil {
		t.Fatalf("DataOutput: %v", err)
	}
	if dataOut.IsDust() {
		t.Errorf("a zero-value data output should never be dust")
	}

	small := &Output{Value: DustAmount - 1, Script: scriptview.Script{0x76, 0xa9, 0x14}}
	if !small.IsDust() {
		t.Errorf("a value below DustAmount should be dust")
	}

	ok := &Output{Value: DustAmount, Script: scriptview.Script{0x76, 0xa9, 0x14}}
	if ok.IsDust() {
		t.Errorf("a value at DustAmount should not be dust")
	}
}

func TestOutputSerializeRoundTrip(t *testing.T) {
	out := &Output{Value: 12345, Script: scriptview.Script{0x76, 0xa9, 0x14, 0x01}}

	var buf bytes.Buffer
	w := wirecodec.NewWriter(&buf)
	if err := out.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	r := wirecodec.NewReader(&buf)
	got, err := ParseOutput(r)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if got.Value != out.Value {
		t.Errorf("Value = %d, want %d", got.Value, out.Value)
	}
	if !bytes.Equal(got.Script, out.Script) {
		t.Errorf("Script = %x, want %x", got.Script, out.Script)
	}
	if got.TokenData != nil {
		t.Errorf("expected no TokenData for a plain output")
	}
}

func TestOutputSerializeRoundTripWithTokenData(t *testing.T) {
	var category [32]byte
	category[0] = 0xaa

	out := &Output{
		Value:  5000,
		Script: scriptview.Script{0x76, 0xa9, 0x14, 0x02},
		TokenData: &TokenData{
			Category: category,
			Amount:   777,
			NFT: &NFTData{
				Capability: NFTMutable,
				Commitment: []byte{0x01, 0x02, 0x03},
			},
		},
	}

	var buf bytes.Buffer
	w := wirecodec.NewWriter(&buf)
	if err := out.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	r := wirecodec.NewReader(&buf)
	got, err := ParseOutput(r)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if got.TokenData == nil {
		t.Fatalf("expected TokenData to round-trip")
	}
	if got.TokenData.Category != category {
		t.Errorf("Category mismatch")
	}
	if got.TokenData.Amount != 777 {
		t.Errorf("Amount = %d, want 777", got.TokenData.Amount)
	}
	if got.TokenData.NFT == nil || got.TokenData.NFT.Capability != NFTMutable {
		t.Errorf("NFT capability did not round-trip")
	}
	if !bytes.Equal(got.TokenData.NFT.Commitment, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("commitment did not round-trip")
	}
	if !bytes.Equal(got.Script, out.Script) {
		t.Errorf("underlying script did not round-trip: got %x, want %x", got.Script, out.Script)
	}
}

func TestOutputByteSizeMatchesSerialize(t *testing.T) {
	out := &Output{Value: 999, Script: scriptview.Script{0x51, 0x52, 0x53}}

	var buf bytes.Buffer
	w := wirecodec.NewWriter(&buf)
	if err := out.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got, want := out.ByteSize(), buf.Len(); got != want {
		t.Errorf("ByteSize() = %d, want %d (actual serialized length)", got, want)
	}
}

func TestToAddressAndDataOutput(t *testing.T) {
	out, err := ToAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", 1000, chainparams.MainNet)
	if err != nil {
		t.Fatalf("ToAddress: %v", err)
	}
	if out.Value != 1000 {
		t.Errorf("ToAddress output value = %d, want 1000", out.Value)
	}
	if !out.Script.IsP2PKH() {
		t.Errorf("ToAddress should produce a P2PKH script")
	}

	data, err := DataOutput([]byte("hello"))
	if err != nil {
		t.Fatalf("DataOutput: %v", err)
	}
	if data.Value != 0 {
		t.Errorf("DataOutput value = %d, want 0", data.Value)
	}
	if !data.Script.IsDataOut() {
		t.Errorf("DataOutput should produce an OP_RETURN script")
	}
}
