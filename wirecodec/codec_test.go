package wirecodec

import (
	"bytes"
	"testing"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteInt32LE(-2); err != nil {
		t.Fatalf("WriteInt32LE: %v", err)
	}
	if err := w.WriteUint32LE(0xFFFFFFFE); err != nil {
		t.Fatalf("WriteUint32LE: %v", err)
	}
	if err := w.WriteInt64LE(90000); err != nil {
		t.Fatalf("WriteInt64LE: %v", err)
	}
	var hash [32]byte
	hash[0] = 0xaa
	if err := w.WriteHash(hash); err != nil {
		t.Fatalf("WriteHash: %v", err)
	}

	r := NewReader(&buf)
	i32, err := r.ReadInt32LE()
	if err != nil || i32 != -2 {
		t.Errorf("ReadInt32LE = %d, %v; want -2, nil", i32, err)
	}
	u32, err := r.ReadUint32LE()
	if err != nil || u32 != 0xFFFFFFFE {
		t.Errorf("ReadUint32LE = %d, %v; want 0xFFFFFFFE, nil", u32, err)
	}
	i64, err := r.ReadInt64LE()
	if err != nil || i64 != 90000 {
		t.Errorf("ReadInt64LE = %d, %v; want 90000, nil", i64, err)
	}
	gotHash, err := r.ReadHash()
	if err != nil || gotHash != hash {
		t.Errorf("ReadHash = %x, %v; want %x, nil", gotHash, err, hash)
	}
}

func TestVarIntSizes(t *testing.T) {
	tests := []struct {
		value    uint64
		wantSize int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, tt := range tests {
		if got := VarIntSize(tt.value); got != tt.wantSize {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, got, tt.wantSize)
		}

		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteVarInt(tt.value); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", tt.value, err)
		}
		if buf.Len() != tt.wantSize {
			t.Errorf("WriteVarInt(%d) produced %d bytes, want %d", tt.value, buf.Len(), tt.wantSize)
		}

		r := NewReader(&buf)
		got, err := r.ReadVarInt()
		if err != nil || got != tt.value {
			t.Errorf("ReadVarInt round-trip = %d, %v; want %d, nil", got, err, tt.value)
		}
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	if err := w.WriteVarBytes(payload); err != nil {
		t.Fatalf("WriteVarBytes: %v", err)
	}

	r := NewReader(&buf)
	got, err := r.ReadVarBytes()
	if err != nil {
		t.Fatalf("ReadVarBytes: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadVarBytes = %x, want %x", got, payload)
	}
}

func TestReadVarBytesRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteVarInt(MaxScriptSize + 1); err != nil {
		t.Fatalf("WriteVarInt: %v", err)
	}

	r := NewReader(&buf)
	if _, err := r.ReadVarBytes(); err == nil {
		t.Errorf("ReadVarBytes should reject a length exceeding MaxScriptSize")
	}
}
