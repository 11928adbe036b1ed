package tx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/txerr"
	"github.com/VersoriumX/Bitcore-X/wirecodec"
)

// NFTCapability is the derivation permission a CashToken NFT carries.
type NFTCapability string

const (
	NFTNone    NFTCapability = "none"
	NFTMutable NFTCapability = "mutable"
	NFTMinting NFTCapability = "minting"
)

// NFTData is the optional non-fungible payload of a token-bearing output.
type NFTData struct {
	Capability NFTCapability
	Commitment []byte
}

// TokenData is a CashTokens category attached to an output: a 32-byte
// category id, an optional fungible amount, and/or an optional NFT.
type TokenData struct {
	Category [32]byte
	Amount   uint64
	NFT      *NFTData
}

// tokenPrefixByte is the CashTokens PREFIX_BYTE (0xef) that marks an
// output script as token-bearing, per the 2023 CashTokens upgrade.
const tokenPrefixByte = 0xef

// CashTokens bitfield flags, packed into the byte following the category.
const (
	tokenBitfieldHasAmount     = 1 << 4
	tokenBitfieldHasNFT        = 1 << 5
	tokenBitfieldHasCommitment = 1 << 6
	tokenBitfieldCapMask       = 0x0f
)

const (
	capCodeNone = iota
	capCodeMutable
	capCodeMinting
)

// Output is {value, script, optional token-data}, the unit both the
// builder and the wire codec operate on.
type Output struct {
	Value     int64
	Script    scriptview.Script
	TokenData *TokenData
}

// IsValidValue reports whether v falls within the protocol's allowed
// output value range.
func IsValidValue(v int64) bool {
	return v >= 0 && v <= MaxMoney
}

// IsDust reports whether a non-data output's value sits below the
// economically spendable threshold.
func (o *Output) IsDust() bool {
	if o.Script.IsDataOut() {
		return false
	}
	return o.Value < DustAmount
}

// encodedScript returns the script bytes as they appear on the wire:
// the real locking script, prefixed with the CashTokens envelope when
// TokenData is set.
func (o *Output) encodedScript() ([]byte, error) {
	if o.TokenData == nil {
		return o.Script, nil
	}
	var buf bytes.Buffer
	buf.WriteByte(tokenPrefixByte)
	buf.Write(o.TokenData.Category[:])

	bitfield := byte(0)
	if o.TokenData.NFT != nil {
		bitfield |= tokenBitfieldHasNFT
		if len(o.TokenData.NFT.Commitment) > 0 {
			bitfield |= tokenBitfieldHasCommitment
		}
		switch o.TokenData.NFT.Capability {
		case NFTNone:
			bitfield |= capCodeNone
		case NFTMutable:
			bitfield |= capCodeMutable
		case NFTMinting:
			bitfield |= capCodeMinting
		default:
			return nil, fmt.Errorf("tx: invalid NFT capability %q", o.TokenData.NFT.Capability)
		}
	}
	if o.TokenData.Amount > 0 {
		bitfield |= tokenBitfieldHasAmount
	}
	buf.WriteByte(bitfield)

	if o.TokenData.NFT != nil && len(o.TokenData.NFT.Commitment) > 0 {
		w := wirecodec.NewWriter(&buf)
		if err := w.WriteVarBytes(o.TokenData.NFT.Commitment); err != nil {
			return nil, err
		}
	}
	if o.TokenData.Amount > 0 {
		w := wirecodec.NewWriter(&buf)
		if err := w.WriteVarInt(o.TokenData.Amount); err != nil {
			return nil, err
		}
	}
	buf.Write(o.Script)
	return buf.Bytes(), nil
}

// Serialize writes value and the (possibly token-prefixed) script to w.
func (o *Output) Serialize(w *wirecodec.Writer) error {
	if err := w.WriteInt64LE(o.Value); err != nil {
		return err
	}
	script, err := o.encodedScript()
	if err != nil {
		return err
	}
	return w.WriteVarBytes(script)
}

// ParseOutput reads an Output from r, recognizing and stripping a
// leading CashTokens envelope back into TokenData.
func ParseOutput(r *wirecodec.Reader) (*Output, error) {
	value, err := r.ReadInt64LE()
	if err != nil {
		return nil, fmt.Errorf("tx: reading output value: %w", err)
	}
	raw, err := r.ReadVarBytes()
	if err != nil {
		return nil, fmt.Errorf("tx: reading output script: %w", err)
	}
	out := &Output{Value: value}
	if len(raw) == 0 || raw[0] != tokenPrefixByte {
		out.Script = scriptview.Script(raw)
		return out, nil
	}

	body := bytes.NewReader(raw[1:])
	br := wirecodec.NewReader(body)
	var category [32]byte
	catBytes := make([]byte, 32)
	if _, err := io.ReadFull(body, catBytes); err != nil {
		return nil, fmt.Errorf("tx: truncated token category: %w", err)
	}
	copy(category[:], catBytes)

	bitfieldByte := make([]byte, 1)
	if _, err := io.ReadFull(body, bitfieldByte); err != nil {
		return nil, fmt.Errorf("tx: truncated token bitfield: %w", err)
	}
	bitfield := bitfieldByte[0]

	td := &TokenData{Category: category}
	if bitfield&tokenBitfieldHasNFT != 0 {
		nft := &NFTData{}
		switch bitfield & tokenBitfieldCapMask {
		case capCodeNone:
			nft.Capability = NFTNone
		case capCodeMutable:
			nft.Capability = NFTMutable
		case capCodeMinting:
			nft.Capability = NFTMinting
		default:
			return nil, txerr.New(txerr.InvalidArgument, "unrecognized token capability code %d", bitfield&tokenBitfieldCapMask)
		}
		if bitfield&tokenBitfieldHasCommitment != 0 {
			commitment, err := br.ReadVarBytes()
			if err != nil {
				return nil, fmt.Errorf("tx: reading token commitment: %w", err)
			}
			nft.Commitment = commitment
		}
		td.NFT = nft
	}
	if bitfield&tokenBitfieldHasAmount != 0 {
		amount, err := br.ReadVarInt()
		if err != nil {
			return nil, fmt.Errorf("tx: reading token amount: %w", err)
		}
		td.Amount = amount
	}

	rest := make([]byte, body.Len())
	if _, err := body.Read(rest); err != nil && len(rest) > 0 {
		return nil, fmt.Errorf("tx: reading token-wrapped script: %w", err)
	}
	out.Script = scriptview.Script(rest)
	out.TokenData = td
	return out, nil
}

// ByteSize returns the serialized size of the output in bytes.
func (o *Output) ByteSize() int {
	script, err := o.encodedScript()
	if err != nil {
		return 8 + 1 + len(o.Script)
	}
	return 8 + wirecodec.VarIntSize(uint64(len(script))) + len(script)
}

// ToAddress builds a plain pay-to-address output.
func ToAddress(address string, value int64, params chainparams.Params) (*Output, error) {
	script, err := scriptview.FromAddress(address, params)
	if err != nil {
		return nil, err
	}
	return &Output{Value: value, Script: script}, nil
}

// DataOutput builds a zero-value OP_RETURN output carrying payload.
func DataOutput(payload []byte) (*Output, error) {
	script, err := scriptview.DataOut(payload)
	if err != nil {
		return nil, err
	}
	return &Output{Value: 0, Script: script}, nil
}
