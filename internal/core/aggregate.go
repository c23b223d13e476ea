package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Keyed is a cleaned row that contributes a quantity to one wallet.
type Keyed interface {
	WalletKey() WalletKey
	Amount() decimal.Decimal
}

// Aggregate sums quantities per wallet key. The result holds one entry per
// distinct key, sorted by key.
func Aggregate[R Keyed](rows []R) []WalletAggregate {
	byKey := make(map[WalletKey]*WalletAggregate)
	for _, r := range rows {
		agg, ok := byKey[r.WalletKey()]
		if !ok {
			agg = &WalletAggregate{Key: r.WalletKey(), Balance: decimal.Zero}
			byKey[r.WalletKey()] = agg
		}
		agg.Balance = agg.Balance.Add(r.Amount())
		agg.Entries++
	}

	result := make([]WalletAggregate, 0, len(byKey))
	for _, agg := range byKey {
		result = append(result, *agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}
