package deal

import (
	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/pkg/money"
)

// NetPartExchange sums allowance minus settlement across the legacy single
// trade-in and every entry of the newer list. Deals written during the
// migration period may carry either or both; skipping one source undercounts
// the buyer's equity.
func NetPartExchange(legacy *entity.PartExchange, list []entity.PartExchange) decimal.Decimal {
	total := decimal.Zero
	if legacy != nil {
		total = total.Add(legacy.NetValue())
	}
	for _, px := range list {
		total = total.Add(px.NetValue())
	}
	return money.Round2(total)
}
