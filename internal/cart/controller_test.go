package cart

import (
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, products ...domain.Product) *Controller {
	t.Helper()
	c := NewController(NewStore(), products)
	t.Cleanup(c.Close)
	return c
}

func requireCard(t *testing.T, c *Controller, name string, mode CardMode, quantity int) {
	t.Helper()
	card, err := c.Card(name)
	require.NoError(t, err)
	assert.Equal(t, mode, card.Mode, "mode of %s", name)
	assert.Equal(t, quantity, card.Quantity, "quantity of %s", name)
	assert.Equal(t, c.Store().Quantity(name), card.Quantity, "card must mirror the store")
}

func TestController_WaffleScenario(t *testing.T) {
	w := product("Waffle", "6.50")
	c := newController(t, w)

	require.NoError(t, c.PressAdd("Waffle"))
	requireCard(t, c, "Waffle", CardActive, 1)
	assert.Equal(t, 1, c.Store().ItemCount())
	assert.Equal(t, "6.50", c.Store().OrderTotal().StringFixed(2))

	require.NoError(t, c.Increment("Waffle"))
	requireCard(t, c, "Waffle", CardActive, 2)
	assert.Equal(t, "13.00", c.Store().OrderTotal().StringFixed(2))

	require.NoError(t, c.Decrement("Waffle"))
	requireCard(t, c, "Waffle", CardActive, 1)

	require.NoError(t, c.Decrement("Waffle"))
	requireCard(t, c, "Waffle", CardIdle, 0)
	assert.Equal(t, 0, c.Store().Len())
}

func TestController_RemoveFromPanelResetsCard(t *testing.T) {
	c := newController(t, waffle, brulee)
	require.NoError(t, c.PressAdd(waffle.Name))
	require.NoError(t, c.Increment(waffle.Name))
	require.NoError(t, c.PressAdd(brulee.Name))

	require.NoError(t, c.RemoveFromPanel(waffle.Name))

	requireCard(t, c, waffle.Name, CardIdle, 0)
	requireCard(t, c, brulee.Name, CardActive, 1)
}

func TestController_StepperOnIdleCard(t *testing.T) {
	c := newController(t, waffle)

	assert.ErrorIs(t, c.Increment(waffle.Name), ErrNotInCart)
	assert.ErrorIs(t, c.Decrement(waffle.Name), ErrNotInCart)
	requireCard(t, c, waffle.Name, CardIdle, 0)
}

func TestController_UnknownProduct(t *testing.T) {
	c := newController(t, waffle)

	assert.ErrorIs(t, c.PressAdd("Nope"), ErrUnknownProduct)
	assert.ErrorIs(t, c.Increment("Nope"), ErrUnknownProduct)
	assert.ErrorIs(t, c.Decrement("Nope"), ErrUnknownProduct)
	assert.ErrorIs(t, c.RemoveFromPanel("Nope"), ErrUnknownProduct)
	_, err := c.Card("Nope")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestController_RemoveEntryNoLongerInCatalog(t *testing.T) {
	store := Restore([]domain.CartEntry{{Product: baklava, Quantity: 2}})
	c := NewController(store, []domain.Product{waffle})
	defer c.Close()

	require.NoError(t, c.RemoveFromPanel(baklava.Name))
	assert.Equal(t, 0, store.Len())
}

func TestController_CardsFollowRestoredStore(t *testing.T) {
	store := Restore([]domain.CartEntry{{Product: brulee, Quantity: 3}})
	c := NewController(store, []domain.Product{waffle, brulee})
	defer c.Close()

	cards := c.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, waffle.Name, cards[0].Product.Name)
	assert.Equal(t, CardIdle, cards[0].Mode)
	assert.Equal(t, CardActive, cards[1].Mode)
	assert.Equal(t, 3, cards[1].Quantity)
}

func TestController_DirectStoreMutationUpdatesCards(t *testing.T) {
	c := newController(t, waffle, brulee)
	require.NoError(t, c.PressAdd(waffle.Name))
	require.NoError(t, c.PressAdd(brulee.Name))

	c.Store().Clear()

	requireCard(t, c, waffle.Name, CardIdle, 0)
	requireCard(t, c, brulee.Name, CardIdle, 0)
}

func TestController_CloseStopsUpdates(t *testing.T) {
	store := NewStore()
	c := NewController(store, []domain.Product{waffle})
	c.Close()

	require.NoError(t, store.Add(waffle, 1))

	card, err := c.Card(waffle.Name)
	require.NoError(t, err)
	assert.Equal(t, CardIdle, card.Mode)
}

func TestController_ConcurrentIncrements(t *testing.T) {
	c := newController(t, waffle, brulee)
	require.NoError(t, c.PressAdd(waffle.Name))

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Increment(waffle.Name))
		}()
		go func() {
			defer wg.Done()
			_ = c.Cards()
		}()
	}
	wg.Wait()

	requireCard(t, c, waffle.Name, CardActive, 31)
}
