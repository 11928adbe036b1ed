// Package tx implements the Output type and the Transaction core: the
// mutable builder that accepts unspent outputs and payment intents,
// computes change and fees, orchestrates signing across input variants
// from the txinput package, serializes to/from the canonical wire
// binary, and runs sanity, ZCE, and token-category verification.
//
// Grounded on the teacher's wallet/transaction.go (BuildTransaction's
// UTXO-to-signed-hex pipeline, fee estimation shape, error-wrapping
// idiom) generalized from a one-shot build function into a persistent,
// incrementally-mutable builder per the capability-contract design in
// txinput.
package tx

// Protocol-level constants, unchanged across networks.
const (
	CurrentVersion   = 2
	DefaultNLockTime = 0
	MaxBlockSize     = 1_000_000

	DustAmount        = 546
	FeeSecurityMargin = 150
	MaxMoney          = 21_000_000_000_000_000 // 21e15

	NLockTimeBlockHeightLimit = 500_000_000
	NLockTimeMaxValue         = 1<<32 - 1

	DefaultFeePerKB     = 100_000
	ChangeOutputMaxSize = 62
	MaximumExtraSize    = 26

	DefaultSeqNumber         = 0xFFFFFFFF
	DefaultLockTimeSeqNumber = 0xFFFFFFFE
)

// LockTimeKind classifies the value GetLockTime returns, per §4.2's
// getLockTime() null/height/timestamp trichotomy.
type LockTimeKind int

const (
	LockTimeNone LockTimeKind = iota
	LockTimeBlockHeight
	LockTimeTimestamp
)
