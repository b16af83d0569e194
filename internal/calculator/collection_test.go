package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecommercejockey/jockey/pkg/models"
)

func testPath() *models.CategoryPath {
	root := &models.ShopifyCollection{ID: "c1", Title: "Wheels & Tires"}
	branch := &models.ShopifyCollection{ID: "c2", Title: "Wheels & Tires // Tires", Parent: root}
	leaf := &models.ShopifyCollection{ID: "c3", Title: "Wheels & Tires // Tires // All-Terrain", Parent: branch}

	return &models.CategoryPath{
		ID:                 "p1",
		SemaRootCategory:   &models.SemaCategory{CategoryID: 1, Name: "Wheels & Tires"},
		SemaBranchCategory: &models.SemaCategory{CategoryID: 2, Name: "Tires"},
		SemaLeafCategory:   &models.SemaCategory{CategoryID: 3, Name: "All-Terrain"},

		ShopifyRootCollection:   root,
		ShopifyBranchCollection: branch,
		ShopifyLeafCollection:   leaf,
	}
}

func TestCollectionCalculatorTitle(t *testing.T) {
	calc := NewCollection(testPath(), DefaultCollectionConfig())

	assert.Equal(t, "Wheels & Tires", calc.Title(1))
	assert.Equal(t, "Wheels & Tires // Tires", calc.Title(2))
	assert.Equal(t, "Wheels & Tires // Tires // All-Terrain", calc.Title(3))
}

func TestCollectionCalculatorTags(t *testing.T) {
	calc := NewCollection(testPath(), DefaultCollectionConfig())

	assert.Equal(t, []string{"category:wheels-tires"}, calc.Tags(1))
	assert.Equal(t, []string{
		"category:wheels-tires",
		"category:tires",
		"category:all-terrain",
	}, calc.Tags(3))
}

func TestCollectionCalculatorRules(t *testing.T) {
	calc := NewCollection(testPath(), DefaultCollectionConfig())

	rules := calc.Rules(2)
	assert.Len(t, rules, 1)
	assert.Equal(t, models.ShopifyCollectionRule{
		Column:    "tag",
		Relation:  "equals",
		Condition: "category:tires",
	}, rules[0])

	rules = calc.Rules(3)
	assert.Equal(t, "category:all-terrain", rules[0].Condition)
}

func TestCollectionCalculatorFamily(t *testing.T) {
	calc := NewCollection(testPath(), DefaultCollectionConfig())

	assert.Equal(t, "Wheels & Tires", calc.FamilyMetafieldValue(1))
	assert.Equal(t,
		"Wheels & Tires > Wheels & Tires // Tires > Wheels & Tires // Tires // All-Terrain",
		calc.FamilyMetafieldValue(3))
	assert.Empty(t, calc.FamilyMetafieldValue(4))
}

func TestCollectionCalculatorMissingLevels(t *testing.T) {
	path := testPath()
	path.SemaBranchCategory = nil
	calc := NewCollection(path, DefaultCollectionConfig())

	assert.Equal(t, "Wheels & Tires", calc.Title(1))
	assert.Empty(t, calc.Title(2))
	assert.Empty(t, calc.Tags(3))
	assert.Nil(t, calc.Rules(2))
}

func TestCollectionCalculatorApply(t *testing.T) {
	path := testPath()
	collection := &models.ShopifyCollection{
		ID: "c2",
		Metafields: []models.ShopifyMetafield{{
			MetafieldID:   42,
			OwnerResource: "collection",
			Namespace:     models.MetafieldNamespaceAdditional,
			ValueType:     models.MetafieldTypeString,
			Key:           models.MetafieldKeyCollectionFamily,
			Value:         "stale",
		}},
	}

	changed := NewCollection(path, DefaultCollectionConfig()).Apply(collection, 2)
	assert.Equal(t, []string{"title", "tags", "rules", "metafields"}, changed)

	assert.Equal(t, "Wheels & Tires // Tires", collection.Title)
	assert.Len(t, collection.Metafields, 1)
	assert.Equal(t, int64(42), collection.Metafields[0].MetafieldID)
	assert.Equal(t, "Wheels & Tires > Wheels & Tires // Tires", collection.Metafields[0].Value)

	changed = NewCollection(path, DefaultCollectionConfig()).Apply(collection, 2)
	assert.Empty(t, changed)
}
