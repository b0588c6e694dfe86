// orders_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeAdminProfit(t *testing.T) {
	assert.InDelta(t, 20.0, computeAdminProfit(100), 1e-9)
	assert.InDelta(t, 0.0, computeAdminProfit(0), 1e-9)
	assert.InDelta(t, 2.198, computeAdminProfit(10.99), 1e-9)
}

func TestOrderRef(t *testing.T) {
	id := primitive.NewObjectID()
	ref := orderRef(id)
	require.Len(t, ref, 8)
	assert.Equal(t, id.Hex()[16:], ref)
}

func TestStatusNoticeFor(t *testing.T) {
	tests := []struct {
		status   string
		wantType string
	}{
		{OrderPending, NotifOrderPlaced},
		{OrderProcessing, NotifOrderProcessing},
		{OrderShipped, NotifOrderShipped},
		{OrderOutForDelivery, NotifOrderShipped},
		{OrderDelivered, NotifOrderDelivered},
		{OrderCancelled, NotifOrderCancelled},
	}
	for _, tt := range tests {
		notice, found := statusNoticeFor(tt.status)
		require.True(t, found, "status %q should have a notice", tt.status)
		assert.Equal(t, tt.wantType, notice.Type)
		assert.NotEmpty(t, notice.Message)
	}
}

func TestStatusNoticeForUnknownStatus(t *testing.T) {
	_, found := statusNoticeFor("returned_to_sender")
	assert.False(t, found)
	_, found = statusNoticeFor("")
	assert.False(t, found)
}

func TestGroupItemsBySeller(t *testing.T) {
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	prod1 := primitive.NewObjectID()
	prod2 := primitive.NewObjectID()
	prod3 := primitive.NewObjectID()

	sellerOf := map[primitive.ObjectID]primitive.ObjectID{
		prod1: sellerA,
		prod2: sellerB,
		prod3: sellerA,
	}
	items := []OrderItem{
		{Product: prod1, Name: "Lamp", Quantity: 1},
		{Product: prod2, Name: "Rug", Quantity: 2},
		{Product: prod3, Name: "Chair", Quantity: 1},
	}

	groups := groupItemsBySeller(items, sellerOf)
	require.Len(t, groups, 2)
	assert.Len(t, groups[sellerA], 2)
	assert.Len(t, groups[sellerB], 1)
}

func TestGroupItemsBySellerSkipsUnresolvable(t *testing.T) {
	seller := primitive.NewObjectID()
	known := primitive.NewObjectID()
	unknown := primitive.NewObjectID()

	sellerOf := map[primitive.ObjectID]primitive.ObjectID{known: seller}
	items := []OrderItem{
		{Product: known, Name: "Lamp", Quantity: 1},
		{Product: unknown, Name: "Ghost", Quantity: 1},
	}

	groups := groupItemsBySeller(items, sellerOf)
	require.Len(t, groups, 1)
	assert.Len(t, groups[seller], 1)
	assert.Equal(t, "Lamp", groups[seller][0].Name)
}

func TestGroupItemsBySellerSingleSellerManyItems(t *testing.T) {
	seller := primitive.NewObjectID()
	sellerOf := map[primitive.ObjectID]primitive.ObjectID{}
	items := make([]OrderItem, 0, 5)
	for i := 0; i < 5; i++ {
		id := primitive.NewObjectID()
		sellerOf[id] = seller
		items = append(items, OrderItem{Product: id, Quantity: 1})
	}

	groups := groupItemsBySeller(items, sellerOf)
	require.Len(t, groups, 1)
	assert.Len(t, groups[seller], 5)
}

func TestItemNames(t *testing.T) {
	items := []OrderItem{
		{Name: "Lamp"},
		{Name: ""},
		{Name: "Rug"},
	}
	assert.Equal(t, "Lamp, Unknown Item, Rug", itemNames(items))
}

func TestRunSideEffectsContinuesPastFailures(t *testing.T) {
	ran := make([]string, 0)
	effects := []sideEffect{
		{name: "first", run: func() error { ran = append(ran, "first"); return assert.AnError }},
		{name: "second", run: func() error { ran = append(ran, "second"); return nil }},
		{name: "third", run: func() error { ran = append(ran, "third"); return assert.AnError }},
	}

	runSideEffects(effects)
	assert.Equal(t, []string{"first", "second", "third"}, ran)
}
