package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/VersoriumX/Bitcore-X/chainparams"
	"github.com/VersoriumX/Bitcore-X/scriptview"
	"github.com/VersoriumX/Bitcore-X/sighash"
	"github.com/VersoriumX/Bitcore-X/txerr"
	"github.com/VersoriumX/Bitcore-X/txinput"
	"github.com/VersoriumX/Bitcore-X/txlog"
	"github.com/VersoriumX/Bitcore-X/wirecodec"
)

// UnspentOutput normalizes a caller-supplied UTXO descriptor, the raw
// material From() turns into a signed input.
type UnspentOutput struct {
	TxID           [32]byte
	OutputIndex    uint32
	Script         scriptview.Script
	Value          int64
	SequenceNumber *uint32
	PublicKeys     [][]byte
	Threshold      int
}

// Transaction is the mutable transaction builder: an ordered sequence
// of inputs, an ordered sequence of outputs, version and locktime, and
// the change/fee policy knobs described in §3 of the original spec.
type Transaction struct {
	Version  int32
	LockTime uint32

	inputs  []txinput.Capability
	outputs []*Output

	changeScript *scriptview.Script
	changeIndex  int // -1 when absent

	feeOverride    *int64
	feePerKb       *int64
	feePerByte     *int64

	params chainparams.Params

	cachedInputSum  *int64
	cachedOutputSum *int64

	sighashCache *sighash.Cache

	spentTokenInfo map[parentKey]*parentInfo
}

// NewTransaction creates an empty transaction with default version and
// locktime, for the given network's address/script parameters.
func NewTransaction(params chainparams.Params) *Transaction {
	return &Transaction{
		Version:     CurrentVersion,
		LockTime:    DefaultNLockTime,
		changeIndex: -1,
		params:      params,
	}
}

// Copy produces an independent deep-enough copy: inputs and outputs are
// new slices, but each input retains its own Capability value (input
// variants are copied by the caller if independent mutation is needed).
func (t *Transaction) Copy() *Transaction {
	cp := *t
	cp.inputs = append([]txinput.Capability(nil), t.inputs...)
	cp.outputs = append([]*Output(nil), t.outputs...)
	cp.cachedInputSum = nil
	cp.cachedOutputSum = nil
	cp.sighashCache = nil
	return &cp
}

func (t *Transaction) invalidate() {
	t.cachedInputSum = nil
	t.cachedOutputSum = nil
	t.sighashCache = nil
}

func (t *Transaction) clearAllSignatures() {
	for _, in := range t.inputs {
		in.ClearSignatures()
	}
}

// Inputs returns the current input slice. Callers must not retain it
// across a mutating call.
func (t *Transaction) Inputs() []txinput.Capability { return t.inputs }

// Outputs returns the current output slice. Callers must not retain it
// across a mutating call.
func (t *Transaction) Outputs() []*Output { return t.outputs }

// selectVariant implements §4.2's from() selection table.
func selectVariant(u UnspentOutput, seq uint32) (txinput.Capability, error) {
	hasKeys := len(u.PublicKeys) > 0

	switch {
	case hasKeys && u.Threshold > 0 && u.Script.IsMultisigOut():
		if u.Threshold > len(u.PublicKeys) {
			return nil, txerr.New(txerr.InvalidArgument, "threshold %d exceeds %d public keys", u.Threshold, len(u.PublicKeys))
		}
		return txinput.NewMultiSig(u.TxID, u.OutputIndex, seq, u.PublicKeys, u.Threshold), nil

	case hasKeys && u.Threshold > 0 && u.Script.IsP2SHLike():
		if u.Threshold > len(u.PublicKeys) {
			return nil, txerr.New(txerr.InvalidArgument, "threshold %d exceeds %d public keys", u.Threshold, len(u.PublicKeys))
		}
		redeem, err := scriptview.MultisigOut(u.Threshold, u.PublicKeys)
		if err != nil {
			return nil, err
		}
		return txinput.NewMultiSigScriptHash(u.TxID, u.OutputIndex, seq, u.PublicKeys, u.Threshold, redeem), nil

	case !hasKeys && u.Script.IsP2PKHLike():
		return txinput.NewPublicKeyHash(u.TxID, u.OutputIndex, seq), nil

	case !hasKeys && u.Script.IsP2PK():
		return txinput.NewPublicKey(u.TxID, u.OutputIndex, seq), nil

	case len(u.PublicKeys) > 1:
		reclaim := u.PublicKeys[0]
		rest := u.PublicKeys[1:]
		threshold := u.Threshold
		if threshold <= 0 {
			threshold = len(rest)
		}
		redeem, err := scriptview.EscrowRedeemScript(threshold, rest, reclaim)
		if err != nil {
			return nil, err
		}
		return txinput.NewEscrow(u.TxID, u.OutputIndex, seq, rest, threshold, reclaim, redeem), nil

	default:
		return txinput.NewUnknown(u.TxID, u.OutputIndex, seq, nil), nil
	}
}

func outpointKey(txID [32]byte, index uint32) [36]byte {
	var k [36]byte
	copy(k[:32], txID[:])
	k[32] = byte(index)
	k[33] = byte(index >> 8)
	k[34] = byte(index >> 16)
	k[35] = byte(index >> 24)
	return k
}

func (t *Transaction) hasOutpoint(txID [32]byte, index uint32) bool {
	for _, in := range t.inputs {
		if in.PrevTxID() == txID && in.PrevOutIndex() == index {
			return true
		}
	}
	return false
}

// From adds one or more UTXOs as inputs, selecting each one's variant
// per §4.2's table. Duplicate (prevTxId, outputIndex) pairs are
// silently ignored.
func (t *Transaction) From(utxos ...UnspentOutput) error {
	for _, u := range utxos {
		if t.hasOutpoint(u.TxID, u.OutputIndex) {
			continue
		}
		seq := uint32(DefaultSeqNumber)
		if u.SequenceNumber != nil {
			seq = *u.SequenceNumber
		}
		variant, err := selectVariant(u, seq)
		if err != nil {
			return err
		}
		variant.SetOutput(&txinput.SpentOutput{Value: u.Value, Script: u.Script})
		t.inputs = append(t.inputs, variant)
	}
	t.invalidate()
	return t.updateChangeOutput()
}

// AssociateInputs replaces the spent-output info of existing inputs
// matching each utxo's outpoint, returning the per-utxo input index (or
// -1 if no matching input exists).
func (t *Transaction) AssociateInputs(utxos ...UnspentOutput) []int {
	indices := make([]int, len(utxos))
	for i, u := range utxos {
		indices[i] = -1
		for idx, in := range t.inputs {
			if in.PrevTxID() == u.TxID && in.PrevOutIndex() == u.OutputIndex {
				in.SetOutput(&txinput.SpentOutput{Value: u.Value, Script: u.Script})
				indices[i] = idx
				break
			}
		}
	}
	return indices
}

// To appends a pay-to-address output.
func (t *Transaction) To(address string, value int64) error {
	if value < 0 {
		return txerr.New(txerr.InvalidSatoshis, "output value %d must be non-negative", value)
	}
	out, err := ToAddress(address, value, t.params)
	if err != nil {
		return err
	}
	return t.AddOutput(out)
}

// AddData appends a zero-value OP_RETURN output carrying payload.
func (t *Transaction) AddData(payload []byte) error {
	out, err := DataOutput(payload)
	if err != nil {
		return err
	}
	return t.AddOutput(out)
}

// AddOutput appends a pre-built Output.
func (t *Transaction) AddOutput(out *Output) error {
	t.outputs = append(t.outputs, out)
	t.invalidate()
	return t.updateChangeOutput()
}

// ClearOutputs empties the output list, clears signatures and the
// change index.
func (t *Transaction) ClearOutputs() error {
	t.outputs = nil
	t.changeIndex = -1
	t.invalidate()
	return t.updateChangeOutput()
}

// RemoveOutput removes the output at index i.
func (t *Transaction) RemoveOutput(i int) error {
	if i < 0 || i >= len(t.outputs) {
		return txerr.New(txerr.InvalidIndex, "output index %d out of range (have %d)", i, len(t.outputs))
	}
	t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
	t.invalidate()
	return t.updateChangeOutput()
}

// RemoveInputAt removes the input at position i. Per Open Question #3
// this is distinct from RemoveInputByOutpoint rather than an
// overloaded single method.
func (t *Transaction) RemoveInputAt(i int) error {
	if i < 0 || i >= len(t.inputs) {
		return txerr.New(txerr.InvalidIndex, "input index %d out of range (have %d)", i, len(t.inputs))
	}
	t.inputs = append(t.inputs[:i], t.inputs[i+1:]...)
	t.invalidate()
	return t.updateChangeOutput()
}

// RemoveInputByOutpoint removes the input matching the given outpoint,
// if any.
func (t *Transaction) RemoveInputByOutpoint(txID [32]byte, vout uint32) error {
	for i, in := range t.inputs {
		if in.PrevTxID() == txID && in.PrevOutIndex() == vout {
			return t.RemoveInputAt(i)
		}
	}
	return nil
}

// Change sets the change script, deriving it from an address.
func (t *Transaction) Change(address string) error {
	script, err := scriptview.FromAddress(address, t.params)
	if err != nil {
		return err
	}
	t.changeScript = &script
	t.invalidate()
	return t.updateChangeOutput()
}

// Fee sets an explicit absolute fee override.
func (t *Transaction) Fee(v int64) error {
	t.feeOverride = &v
	t.invalidate()
	return t.updateChangeOutput()
}

// FeePerKb sets the fee rate in base units per 1000 bytes.
func (t *Transaction) FeePerKb(rate int64) error {
	t.feePerKb = &rate
	t.invalidate()
	return t.updateChangeOutput()
}

// FeePerByte sets the per-byte fee rate; ignored when FeePerKb is set.
func (t *Transaction) FeePerByte(rate int64) error {
	t.feePerByte = &rate
	t.invalidate()
	return t.updateChangeOutput()
}

// LockUntilDate sets the locktime from a UNIX-seconds timestamp. Per
// Open Question #1, a timestamp below NLockTimeBlockHeightLimit is
// rejected rather than silently reinterpreted as a block height.
func (t *Transaction) LockUntilDate(unixSeconds int64) error {
	if unixSeconds < NLockTimeBlockHeightLimit {
		return txerr.New(txerr.LockTimeTooEarly, "timestamp %d is below the block-height/timestamp boundary %d", unixSeconds, NLockTimeBlockHeightLimit)
	}
	if unixSeconds > NLockTimeMaxValue {
		return txerr.New(txerr.NLockTimeOutOfRange, "timestamp %d exceeds maximum locktime %d", unixSeconds, NLockTimeMaxValue)
	}
	t.setLockTime(uint32(unixSeconds))
	return nil
}

// LockUntilBlockHeight sets the locktime to a block height.
func (t *Transaction) LockUntilBlockHeight(height uint32) error {
	if height >= NLockTimeBlockHeightLimit {
		return txerr.New(txerr.BlockHeightTooHigh, "block height %d must be below %d", height, NLockTimeBlockHeightLimit)
	}
	t.setLockTime(height)
	return nil
}

func (t *Transaction) setLockTime(v uint32) {
	t.LockTime = v
	for _, in := range t.inputs {
		if in.Sequence() == DefaultSeqNumber {
			in.SetSequence(DefaultLockTimeSeqNumber)
		}
	}
}

// GetLockTime classifies the current locktime per §4.2's trichotomy.
func (t *Transaction) GetLockTime() (uint32, LockTimeKind) {
	if t.LockTime == 0 {
		return 0, LockTimeNone
	}
	if t.LockTime < NLockTimeBlockHeightLimit {
		return t.LockTime, LockTimeBlockHeight
	}
	return t.LockTime, LockTimeTimestamp
}

// Escrow builds a P2SH escrow output whose redeem script is threshold-
// of-len(pubKeys) multisig, with reclaimPubKey able to satisfy it alone
// (the ZCE-compatible template §4.8 later checks against). Per Open
// Question #5, this clears any explicit fee override when the
// resulting transaction ends up with no change output, matching the
// source's observed wire behavior.
func (t *Transaction) Escrow(pubKeys [][]byte, threshold int, reclaimPubKey []byte, value int64) error {
	script, err := scriptview.EscrowOut(threshold, pubKeys, reclaimPubKey)
	if err != nil {
		return err
	}
	if err := t.AddOutput(&Output{Value: value, Script: script}); err != nil {
		return err
	}
	if t.changeIndex < 0 {
		t.feeOverride = nil
		t.invalidate()
		return t.updateChangeOutput()
	}
	return nil
}

// inputSum returns the cached (or freshly computed) sum of attached
// input values.
func (t *Transaction) inputSum() int64 {
	if t.cachedInputSum != nil {
		return *t.cachedInputSum
	}
	var sum int64
	for _, in := range t.inputs {
		if o := in.Output(); o != nil {
			sum += o.Value
		}
	}
	t.cachedInputSum = &sum
	return sum
}

// outputSum returns the cached (or freshly computed) sum of output
// values, excluding the change output.
func (t *Transaction) outputSum() int64 {
	if t.cachedOutputSum != nil {
		return *t.cachedOutputSum
	}
	var sum int64
	for i, o := range t.outputs {
		if i == t.changeIndex {
			continue
		}
		sum += o.Value
	}
	t.cachedOutputSum = &sum
	return sum
}

// IsCoinbase reports whether this transaction has exactly one null
// input.
func (t *Transaction) IsCoinbase() bool {
	return len(t.inputs) == 1 && t.inputs[0].IsNull()
}

// cache lazily builds (or rebuilds) the sighash collaborator's
// per-transaction BIP-143 cache.
func (t *Transaction) cache() *sighash.Cache {
	if t.sighashCache == nil {
		t.sighashCache = sighash.NewCache(t)
	}
	return t.sighashCache
}

// Hash computes the transaction id: the reversed double-SHA256 over the
// serialized (unsafe) wire bytes.
func (t *Transaction) Hash() (string, error) {
	raw, err := t.serializeRaw()
	if err != nil {
		return "", err
	}
	h := chainhash.DoubleHashH(raw)
	reversed := make([]byte, len(h))
	for i := range h {
		reversed[i] = h[len(h)-1-i]
	}
	return hex.EncodeToString(reversed), nil
}

func (t *Transaction) serializeRaw() ([]byte, error) {
	var buf bytes.Buffer
	w := wirecodec.NewWriter(&buf)
	if err := w.WriteInt32LE(t.Version); err != nil {
		return nil, err
	}
	if err := w.WriteVarInt(uint64(len(t.inputs))); err != nil {
		return nil, err
	}
	for _, in := range t.inputs {
		prevID := in.PrevTxID()
		if err := w.WriteHash(prevID); err != nil {
			return nil, err
		}
		if err := w.WriteUint32LE(in.PrevOutIndex()); err != nil {
			return nil, err
		}
		if err := w.WriteVarBytes(in.UnlockingScript()); err != nil {
			return nil, err
		}
		if err := w.WriteUint32LE(in.Sequence()); err != nil {
			return nil, err
		}
	}
	if err := w.WriteVarInt(uint64(len(t.outputs))); err != nil {
		return nil, err
	}
	for _, o := range t.outputs {
		if err := o.Serialize(w); err != nil {
			return nil, err
		}
	}
	if err := w.WriteUint32LE(t.LockTime); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes parses a Transaction from its canonical wire form.
func FromBytes(raw []byte, params chainparams.Params) (*Transaction, error) {
	if len(raw) == 0 {
		return nil, txerr.New(txerr.NoData, "empty transaction buffer")
	}
	r := wirecodec.NewReader(bytes.NewReader(raw))
	t := NewTransaction(params)

	version, err := r.ReadInt32LE()
	if err != nil {
		return nil, fmt.Errorf("tx: reading version: %w", err)
	}
	t.Version = version

	numInputs, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("tx: reading input count: %w", err)
	}
	for i := uint64(0); i < numInputs; i++ {
		prevID, err := r.ReadHash()
		if err != nil {
			return nil, fmt.Errorf("tx: reading input %d prevTxId: %w", i, err)
		}
		index, err := r.ReadUint32LE()
		if err != nil {
			return nil, fmt.Errorf("tx: reading input %d index: %w", i, err)
		}
		script, err := r.ReadVarBytes()
		if err != nil {
			return nil, fmt.Errorf("tx: reading input %d script: %w", i, err)
		}
		seq, err := r.ReadUint32LE()
		if err != nil {
			return nil, fmt.Errorf("tx: reading input %d sequence: %w", i, err)
		}
		t.inputs = append(t.inputs, txinput.NewUnknown(prevID, index, seq, script))
	}

	numOutputs, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("tx: reading output count: %w", err)
	}
	for i := uint64(0); i < numOutputs; i++ {
		out, err := ParseOutput(r)
		if err != nil {
			return nil, fmt.Errorf("tx: reading output %d: %w", i, err)
		}
		t.outputs = append(t.outputs, out)
	}

	lockTime, err := r.ReadUint32LE()
	if err != nil {
		return nil, fmt.Errorf("tx: reading locktime: %w", err)
	}
	t.LockTime = lockTime

	txlog.L().Debug("parsed transaction", "inputs", len(t.inputs), "outputs", len(t.outputs))
	return t, nil
}

// FromHex parses a Transaction from its lowercase-hex wire form.
func FromHex(s string, params chainparams.Params) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("tx: invalid hex: %w", err)
	}
	return FromBytes(raw, params)
}
