package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommercejockey/jockey/pkg/models"
)

func testProduct(sku string) *models.ShopifyProduct {
	return &models.ShopifyProduct{
		ID:    "sp-" + sku,
		Title: "Wrangler Tire",
		Variants: []*models.ShopifyVariant{{
			Title: models.DefaultVariantTitle,
			SKU:   sku,
			Price: 60.0,
		}},
	}
}

func TestProductNeedsPush(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	product := testProduct("GY-100")

	assert.True(t, store.ProductNeedsPush(product))

	store.MarkProductPushed(product)
	assert.False(t, store.ProductNeedsPush(product))

	product.Variants[0].Price = 72.0
	assert.True(t, store.ProductNeedsPush(product))

	store.MarkProductPushed(product)
	assert.False(t, store.ProductNeedsPush(product))
}

func TestProductWithoutSKUAlwaysNeedsPush(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	product := &models.ShopifyProduct{ID: "sp1", Title: "No variants yet"}

	assert.True(t, store.ProductNeedsPush(product))
	store.MarkProductPushed(product)
	assert.True(t, store.ProductNeedsPush(product))

	products, _ := store.Count()
	assert.Zero(t, products)
}

func TestCollectionNeedsPush(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	collection := &models.ShopifyCollection{ID: "c1", Title: "Wheels & Tires"}

	assert.True(t, store.CollectionNeedsPush(collection))
	store.MarkCollectionPushed(collection)
	assert.False(t, store.CollectionNeedsPush(collection))

	collection.Tags = []string{"category:wheels-tires"}
	assert.True(t, store.CollectionNeedsPush(collection))
}

func TestCollectionFingerprintIgnoresParent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	parent := &models.ShopifyCollection{ID: "c0", Title: "Wheels & Tires"}
	collection := &models.ShopifyCollection{ID: "c1", Title: "Wheels & Tires // Tires", Parent: parent}

	store.MarkCollectionPushed(collection)

	// Changes to the parent do not invalidate the child
	parent.Tags = []string{"category:wheels-tires"}
	assert.False(t, store.CollectionNeedsPush(collection))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store := NewStore(path)
	product := testProduct("GY-100")
	product.ProductID = 12345
	store.MarkProductPushed(product)
	store.MarkCollectionPushed(&models.ShopifyCollection{ID: "c1", Title: "Wheels & Tires"})
	store.AddHistory("push", "shopify", 2, "initial push")
	require.NoError(t, store.Save())

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())

	assert.False(t, reloaded.ProductNeedsPush(product))
	products, collections := reloaded.Count()
	assert.Equal(t, 1, products)
	assert.Equal(t, 1, collections)

	record, ok := reloaded.LastPush("GY-100")
	require.True(t, ok)
	assert.Equal(t, int64(12345), record.ShopifyID)
	assert.False(t, record.PushedAt.IsZero())

	history := reloaded.GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "push", history[0].Action)
	assert.Equal(t, "shopify", history[0].Source)
	assert.Equal(t, 2, history[0].Count)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, store.Load())

	products, collections := store.Count()
	assert.Zero(t, products)
	assert.Zero(t, collections)
	assert.Empty(t, store.GetHistory())
}

func TestRecentHistory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	store.AddHistory("import", "premier", 10, "")
	store.AddHistory("link", "postgres", 8, "")
	store.AddHistory("push", "shopify", 5, "")

	recent := store.GetRecentHistory(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "link", recent[0].Action)
	assert.Equal(t, "push", recent[1].Action)

	assert.Len(t, store.GetRecentHistory(10), 3)
}

func TestClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	store.MarkProductPushed(testProduct("GY-100"))
	store.AddHistory("push", "shopify", 1, "")

	store.Clear()

	products, collections := store.Count()
	assert.Zero(t, products)
	assert.Zero(t, collections)
	// History survives a clear
	assert.Len(t, store.GetHistory(), 1)
}
