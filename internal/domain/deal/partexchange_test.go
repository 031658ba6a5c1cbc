package deal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motordesk/dealer-api/internal/domain/deal"
	"github.com/motordesk/dealer-api/internal/domain/entity"
)

func TestNetPartExchange_LegacyPlusList(t *testing.T) {
	// Legacy PX: allowance 3,000 / settlement 500. One list entry: allowance
	// 1,000 / settlement 0. Both sources count during the migration period.
	legacy := &entity.PartExchange{Allowance: dec("3000.00"), Settlement: dec("500.00")}
	list := []entity.PartExchange{{Allowance: dec("1000.00")}}

	net := deal.NetPartExchange(legacy, list)
	assert.True(t, net.Equal(dec("3500.00")), "pxNetValue = %s", net)
}

func TestNetPartExchange_LegacyOnly(t *testing.T) {
	legacy := &entity.PartExchange{Allowance: dec("3000.00"), Settlement: dec("500.00")}
	assert.True(t, deal.NetPartExchange(legacy, nil).Equal(dec("2500.00")))
}

func TestNetPartExchange_ListOnly(t *testing.T) {
	list := []entity.PartExchange{
		{Allowance: dec("2000.00"), Settlement: dec("1500.00")},
		{Allowance: dec("750.00")},
	}
	assert.True(t, deal.NetPartExchange(nil, list).Equal(dec("1250.00")))
}

func TestNetPartExchange_None(t *testing.T) {
	assert.True(t, deal.NetPartExchange(nil, nil).IsZero())
}

func TestNetPartExchange_SettlementExceedsAllowance_GoesNegative(t *testing.T) {
	// Negative equity on the trade-in increases what the buyer owes.
	legacy := &entity.PartExchange{Allowance: dec("1000.00"), Settlement: dec("4000.00")}
	assert.True(t, deal.NetPartExchange(legacy, nil).Equal(dec("-3000.00")))
}

func TestBalanceDue_Vector(t *testing.T) {
	// grandTotal 12,170.00 − paid 1,000.00 − pxNetValue 3,500.00 = 7,670.00
	due := deal.BalanceDue(dec("12170.00"), dec("1000.00"), dec("3500.00"))
	assert.True(t, due.Equal(dec("7670.00")), "balanceDue = %s", due)
}

func TestBalanceDue_FullySettledIsZero(t *testing.T) {
	assert.True(t, deal.BalanceDue(dec("12170.00"), dec("8670.00"), dec("3500.00")).IsZero())
}
