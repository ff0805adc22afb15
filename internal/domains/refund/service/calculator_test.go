package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderModel "bookstore-storefront/internal/domains/order/model"
	pricingModel "bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/internal/domains/refund/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s got %s", want, got.String())
}

// newOrder dựng đơn với các dòng có FinalPrice cho trước, total cho trước
func newOrder(method orderModel.PaymentMethod, total string, finals ...string) *orderModel.Order {
	o := &orderModel.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260101-ABCDEF12",
		UserID:        uuid.New(),
		PaymentMethod: method,
		PaymentStatus: method.InitialPaymentStatus(),
		Status:        orderModel.OrderStatusPlaced,
		Total:         d(total),
		RefundedTotal: decimal.Zero,
		Version:       1,
		CreatedAt:     time.Now(),
	}
	for _, f := range finals {
		o.Items = append(o.Items, orderModel.OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ProductID:       uuid.New(),
			Quantity:        1,
			Status:          orderModel.ItemStatusActive,
			DiscountedPrice: d(f),
			Breakdown:       pricingModel.PriceBreakdown{FinalPrice: d(f)},
			RefundedAmount:  decimal.Zero,
		})
	}
	return o
}

func itemReq(o *orderModel.Order, i int, event model.Event) model.Request {
	id := o.Items[i].ID
	return model.Request{OrderID: o.ID, Kind: model.KindIndividualItem, Event: event, ItemID: &id}
}

func TestCalculator_ScenarioA(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	r1 := calc.Calculate(itemReq(o, 0, model.EventCancellation), o)
	require.True(t, r1.Success)
	assertDec(t, "200", r1.Amount)

	r2 := calc.Calculate(itemReq(o, 1, model.EventCancellation), o)
	require.True(t, r2.Success)
	assertDec(t, "390", r2.Amount)

	assertDec(t, "590", r1.Amount.Add(r2.Amount))
}

func TestCalculator_ScenarioB_SingleItemGetsFullTotal(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	// breakdown 750 nhưng total gồm thuế 76.20
	o := newOrder(orderModel.PaymentMethodWallet, "826.20", "750")

	res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation}, o)
	require.True(t, res.Success)
	assertDec(t, "826.20", res.Amount)

	res = calc.Calculate(itemReq(o, 0, model.EventCancellation), o)
	assertDec(t, "826.20", res.Amount)
}

func TestCalculator_SingleItemFullTotalDisabled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.SingleItemFullTotal = false
	calc := NewCalculator(cfg)

	// weight duy nhất vẫn nhận toàn bộ total qua phép chia tỉ lệ
	o := newOrder(orderModel.PaymentMethodWallet, "826.20", "750")
	res := calc.Calculate(itemReq(o, 0, model.EventCancellation), o)
	assertDec(t, "826.20", res.Amount)
}

func TestCalculator_ConservationAcrossItems(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())

	cases := []struct {
		total  string
		finals []string
	}{
		{"100", []string{"33.33", "33.33", "33.34"}},
		{"1062", []string{"270", "630"}},
		{"117.99", []string{"10", "20", "30", "40.01"}},
		{"0.05", []string{"1", "1", "1"}},
	}

	for _, tc := range cases {
		o := newOrder(orderModel.PaymentMethodWallet, tc.total, tc.finals...)
		sum := decimal.Zero
		for i := range o.Items {
			res := calc.Calculate(itemReq(o, i, model.EventCancellation), o)
			sum = sum.Add(res.Amount)
			assert.True(t, res.Amount.Equal(res.Amount.Round(2)), "refund must be whole paisa")
		}
		assertDec(t, tc.total, sum)
	}
}

func TestCalculator_FindsItemByProductID(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	pid := o.Items[1].ProductID
	res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindIndividualItem, Event: model.EventReturn, ItemID: &pid}, o)
	require.True(t, res.Success)
	assertDec(t, "390", res.Amount)
	assert.Equal(t, o.Items[1].ID, res.Items[0].ItemID)
}

func TestCalculator_SubtractsAlreadyRefunded(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	o.Items[0].RefundedAmount = d("200")
	res := calc.Calculate(itemReq(o, 0, model.EventCancellation), o)
	assert.False(t, res.Success)
	assert.True(t, res.Amount.IsZero())
	assert.Contains(t, res.Reason, "already fully refunded")
}

func TestCalculator_RemainingOrder(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())

	t.Run("after one item was cancelled and refunded", func(t *testing.T) {
		o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
		o.Items[0].Status = orderModel.ItemStatusCancelled
		o.Items[0].RefundedAmount = d("200")

		res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation}, o)
		require.True(t, res.Success)
		assertDec(t, "390", res.Amount)
		require.Len(t, res.Items, 1)
		assert.Equal(t, o.Items[1].ID, res.Items[0].ItemID)
	})

	t.Run("cancelled item never refunded is still covered", func(t *testing.T) {
		o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
		o.Items[0].Status = orderModel.ItemStatusCancelled
		o.Items[1].Status = orderModel.ItemStatusCancelled

		res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation}, o)
		assertDec(t, "590", res.Amount)
	})

	t.Run("return covers only returned items", func(t *testing.T) {
		o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
		o.Items[0].Status = orderModel.ItemStatusDelivered
		o.Items[1].Status = orderModel.ItemStatusReturned

		res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventReturn}, o)
		assertDec(t, "390", res.Amount)
	})

	t.Run("nothing left", func(t *testing.T) {
		o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
		o.Items[0].RefundedAmount = d("200")
		o.Items[1].RefundedAmount = d("390")

		res := calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation}, o)
		assert.False(t, res.Success)
		assert.True(t, res.Amount.IsZero())
	})
}

func TestCalculator_InvalidInput(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	res := calc.Calculate(model.Request{Kind: model.KindIndividualItem, Event: model.EventCancellation}, nil)
	assert.False(t, res.Success)

	res = calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindIndividualItem, Event: model.EventCancellation}, o)
	assert.False(t, res.Success)

	missing := uuid.New()
	res = calc.Calculate(model.Request{OrderID: o.ID, Kind: model.KindIndividualItem, Event: model.EventCancellation, ItemID: &missing}, o)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "not found")

	o.Items[0].Status = orderModel.ItemStatusDelivered
	res = calc.Calculate(itemReq(o, 0, model.EventCancellation), o)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "not refundable")
}

func TestCalculator_UnknownKind(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	res := calc.Calculate(model.Request{OrderID: o.ID, Kind: "UNKNOWN", Event: model.EventCancellation}, o)
	assert.False(t, res.Success)
	assert.True(t, res.Amount.IsZero())
}

func TestCalculator_SettledOnly(t *testing.T) {
	calc := NewCalculator(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")

	remaining := func(event model.Event) model.Request {
		return model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: event, SettledOnly: true}
	}

	// đơn còn Active: không có gì đã huỷ để hoàn
	res := calc.Calculate(remaining(model.EventCancellation), o)
	assert.False(t, res.Success)
	assert.True(t, res.Amount.IsZero())

	o.Items[0].Status = orderModel.ItemStatusCancelled
	res = calc.Calculate(remaining(model.EventCancellation), o)
	require.True(t, res.Success)
	assertDec(t, "200", res.Amount)
	require.Len(t, res.Items, 1)
	assert.Equal(t, o.Items[0].ID, res.Items[0].ItemID)

	// Return Requested chưa được duyệt thì chưa hoàn
	o.Items[1].Status = orderModel.ItemStatusReturnRequested
	req := itemReq(o, 1, model.EventReturn)
	req.SettledOnly = true
	res = calc.Calculate(req, o)
	assert.False(t, res.Success)

	o.Items[1].Status = orderModel.ItemStatusReturned
	res = calc.Calculate(req, o)
	require.True(t, res.Success)
	assertDec(t, "390", res.Amount)
}
