package calculator

import (
	"strings"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// CollectionCalculator resolves storefront collection fields for one
// category path level.
type CollectionCalculator struct {
	path   *models.CategoryPath
	config CollectionConfig
}

// NewCollection creates a calculator for path with the given config.
func NewCollection(path *models.CategoryPath, config CollectionConfig) *CollectionCalculator {
	return &CollectionCalculator{path: path, config: config}
}

func (c *CollectionCalculator) categoryNames(level int) []string {
	var names []string
	categories := []*models.SemaCategory{
		c.path.SemaRootCategory,
		c.path.SemaBranchCategory,
		c.path.SemaLeafCategory,
	}
	for i := 0; i < level && i < len(categories); i++ {
		if categories[i] == nil {
			return nil
		}
		names = append(names, categories[i].Name)
	}
	return names
}

// Title resolves the collection title for the given tree level (1 = root,
// 2 = branch, 3 = leaf): the category names joined with " // ".
func (c *CollectionCalculator) Title(level int) string {
	switch c.config.TitleOption {
	case OptionSemaCategoryTags:
		return strings.Join(c.categoryNames(level), " // ")
	case OptionCustomTags:
		return c.config.CustomTitle
	default:
		return ""
	}
}

// Tags resolves the collection tags: one "category:" tag per level.
func (c *CollectionCalculator) Tags(level int) []string {
	switch c.config.TagsOption {
	case OptionSemaCategoryTags:
		var tags []string
		for _, name := range c.categoryNames(level) {
			tags = append(tags, "category:"+Slugify(name))
		}
		return tags
	case OptionCustomTags:
		return c.config.CustomTags
	default:
		return nil
	}
}

// Rules resolves the smart-collection membership rules: products are
// members when tagged with the leaf-most category tag.
func (c *CollectionCalculator) Rules(level int) []models.ShopifyCollectionRule {
	names := c.categoryNames(level)
	if len(names) == 0 {
		return nil
	}
	return []models.ShopifyCollectionRule{{
		Column:    "tag",
		Relation:  "equals",
		Condition: "category:" + Slugify(names[len(names)-1]),
	}}
}

// FamilyMetafieldValue resolves the collection-family metafield for the
// collection at the given level: the titles from root to that level joined
// with " > ".
func (c *CollectionCalculator) FamilyMetafieldValue(level int) string {
	switch c.config.FamilyOption {
	case OptionShopifyCollectionFamily:
		collections := []*models.ShopifyCollection{
			c.path.ShopifyRootCollection,
			c.path.ShopifyBranchCollection,
			c.path.ShopifyLeafCollection,
		}
		if level < 1 || level > len(collections) || collections[level-1] == nil {
			return ""
		}
		return strings.Join(collections[level-1].Family(), " > ")
	case OptionCustomMetafieldValue:
		return c.config.CustomFamily
	default:
		return ""
	}
}

// Apply writes the resolved values onto collection and returns the changed
// field names.
func (c *CollectionCalculator) Apply(collection *models.ShopifyCollection, level int) []string {
	var changed []string

	if title := c.Title(level); collection.Title != title {
		collection.Title = title
		changed = append(changed, "title")
	}
	if tags := c.Tags(level); !equalStrings(collection.Tags, tags) {
		collection.Tags = tags
		changed = append(changed, "tags")
	}
	if rules := c.Rules(level); !equalRules(collection.Rules, rules) {
		collection.Rules = rules
		changed = append(changed, "rules")
	}
	if value := c.FamilyMetafieldValue(level); value != "" {
		updated := upsertMetafield(collection.Metafields, models.ShopifyMetafield{
			OwnerResource: "collection",
			Namespace:     models.MetafieldNamespaceAdditional,
			ValueType:     models.MetafieldTypeString,
			Key:           models.MetafieldKeyCollectionFamily,
			Value:         value,
		})
		if !equalMetafields(collection.Metafields, updated) {
			collection.Metafields = updated
			changed = append(changed, "metafields")
		}
	}
	return changed
}

func equalRules(a, b []models.ShopifyCollectionRule) bool {
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

func upsertMetafield(fields []models.ShopifyMetafield, field models.ShopifyMetafield) []models.ShopifyMetafield {
	updated := make([]models.ShopifyMetafield, len(fields))
	copy(updated, fields)
	for i, existing := range updated {
		if existing.Namespace == field.Namespace && existing.Key == field.Key {
			field.MetafieldID = existing.MetafieldID
			updated[i] = field
			return updated
		}
	}
	return append(updated, field)
}
