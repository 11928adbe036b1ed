package tx

import (
	"github.com/VersoriumX/Bitcore-X/txerr"
)

type parentKey struct {
	txID [32]byte
	vout uint32
}

type parentInfo struct {
	key        parentKey
	category   [32]byte
	amount     uint64
	capability NFTCapability
	commitment []byte
	hasNFT     bool
}

// ValidateTokens implements §4.7's CashToken category accounting check.
// Per Open Question #4, the unused-parents pool for a category is keyed
// by the (txID, vout) outpoint pair rather than pointer identity.
func (t *Transaction) ValidateTokens() error {
	categories := make(map[[32]byte]bool)
	for _, o := range t.outputs {
		if o.TokenData != nil {
			categories[o.TokenData.Category] = true
		}
	}

	for category := range categories {
		if err := t.validateCategory(category); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transaction) validateCategory(category [32]byte) error {
	var inputFungible uint64
	var mintingInputIndex = -1
	parents := make(map[parentKey]*parentInfo)

	for i, in := range t.inputs {
		spent := in.Output()
		if spent == nil {
			continue
		}
		key := parentKey{txID: in.PrevTxID(), vout: in.PrevOutIndex()}
		if key.txID == category {
			mintingInputIndex = i
		}
		// Parent token info, when this UTXO itself carried a token, is
		// not part of the SpentOutput; it comes only from what the
		// caller recorded with AssociateTokenInput. An input with no
		// such record contributes no fungible amount and no NFT parent.
		if pi, ok := t.spentTokenInfo[key]; ok && pi.category == category {
			inputFungible += pi.amount
			parents[key] = pi
		}
	}

	var mintedAmount uint64
	var sentAmount uint64

	for _, o := range t.outputs {
		if o.TokenData == nil || o.TokenData.Category != category {
			continue
		}
		if mintingInputIndex >= 0 {
			mintIn := t.inputs[mintingInputIndex]
			if mintIn.PrevOutIndex() != 0 {
				return txerr.New(txerr.InvalidArgument, "minting input for category %x must spend outputIndex 0 of the genesis transaction", category)
			}
			mintedAmount += o.TokenData.Amount
			continue
		}

		sentAmount += o.TokenData.Amount

		if o.TokenData.NFT != nil {
			matched := false
			for key, parent := range parents {
				if !parent.hasNFT {
					continue
				}
				ok := false
				if o.TokenData.NFT.Capability == NFTNone {
					ok = bytesEqual(parent.commitment, o.TokenData.NFT.Commitment) || parent.capability != NFTNone
				} else {
					ok = parent.capability != NFTNone
				}
				if !ok {
					continue
				}
				matched = true
				if parent.capability != NFTMinting {
					delete(parents, key)
				}
				break
			}
			if !matched {
				return txerr.New(txerr.InvalidArgument, "no eligible parent for NFT output in category %x", category)
			}
		}
	}

	if mintedAmount > (1<<63)-1 {
		return txerr.New(txerr.InvalidArgument, "minted amount for category %x exceeds 2^63-1", category)
	}
	if sentAmount > inputFungible {
		return txerr.New(txerr.InvalidArgument, "sent amount %d exceeds input fungible amount %d for category %x", sentAmount, inputFungible, category)
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AssociateTokenInput records the token metadata an input's spent
// output carried, the piece of UTXO-level information §4.7's category
// accounting needs but which a bare {value, script} SpentOutput doesn't
// capture. Call once per token-bearing input after From()/
// AssociateInputs().
func (t *Transaction) AssociateTokenInput(txID [32]byte, vout uint32, td *TokenData) {
	if t.spentTokenInfo == nil {
		t.spentTokenInfo = make(map[parentKey]*parentInfo)
	}
	key := parentKey{txID: txID, vout: vout}
	pi := &parentInfo{key: key}
	if td != nil {
		pi.category = td.Category
		pi.amount = td.Amount
		if td.NFT != nil {
			pi.hasNFT = true
			pi.capability = td.NFT.Capability
			pi.commitment = td.NFT.Commitment
		}
	}
	t.spentTokenInfo[key] = pi
}
