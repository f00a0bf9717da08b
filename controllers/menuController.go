package controllers

import (
	"net/http"
	"sort"
	"strings"
	"unicode"

	"go-restaurant-ordering/models"
	"go-restaurant-ordering/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const searchLimit = 50

type categoryCount struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	ItemCount int    `json:"itemCount"`
}

func SearchMenu(menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusOK, gin.H{"items": []models.MenuItem{}, "categories": []categoryCount{}})
			return
		}
		items, err := menu.SearchMenuItems(ctx, query, searchLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "categories": countCategories(items)})
	}
}

func countCategories(items []models.MenuItem) []categoryCount {
	bySlug := map[string]*categoryCount{}
	result := []categoryCount{}
	for _, item := range items {
		if cc, ok := bySlug[item.Category.Slug]; ok {
			cc.ItemCount++
			continue
		}
		bySlug[item.Category.Slug] = &categoryCount{Title: item.Category.Title, Slug: item.Category.Slug, ItemCount: 1}
	}
	for _, cc := range bySlug {
		result = append(result, *cc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result
}

func GetMenu(menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := menu.ListMenuItems(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// GetMenuItem returns the item together with the option groups a shopper
// has to answer.
func GetMenuItem(menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			badRequest(c, "id", "invalid menu item id")
			return
		}
		item, err := menu.FindMenuItem(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		groups, err := menu.FindOptionGroups(ctx, item.OptionGroups)
		if err != nil {
			respondError(c, err)
			return
		}
		if groups == nil {
			groups = []models.OptionGroup{}
		}
		c.JSON(http.StatusOK, gin.H{"item": item, "optionGroups": groups})
	}
}

func CreateMenuItem(menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var item models.MenuItem
		if err := c.BindJSON(&item); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(item); err != nil {
			respondError(c, err)
			return
		}
		if len(item.OptionGroups) > 0 {
			groups, err := menu.FindOptionGroups(ctx, item.OptionGroups)
			if err != nil {
				respondError(c, err)
				return
			}
			if len(groups) != len(item.OptionGroups) {
				badRequest(c, "keuzemenus", "unknown option group")
				return
			}
		}
		if item.Slug == "" {
			item.Slug = slugify(item.Title)
		}
		item.ID = primitive.NilObjectID

		if err := menu.CreateMenuItem(ctx, &item); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func CreateOptionGroup(menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var group models.OptionGroup
		if err := c.BindJSON(&group); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(group); err != nil {
			respondError(c, err)
			return
		}
		seen := map[string]bool{}
		for _, q := range group.Questions {
			if seen[q.ID] {
				badRequest(c, "questions", "duplicate question id "+q.ID)
				return
			}
			seen[q.ID] = true
			if q.QuestionType != models.QuestionText && len(q.Options) == 0 {
				badRequest(c, "options", "question "+q.ID+" needs options")
				return
			}
		}
		group.ID = primitive.NilObjectID

		if err := menu.CreateOptionGroup(ctx, &group); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, group)
	}
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// GetDeliveryArea answers whether the restaurant delivers to a postal code.
func GetDeliveryArea(areas store.DeliveryAreaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		area, err := areas.FindActiveDeliveryArea(ctx, strings.TrimSpace(c.Param("postal_code")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, area)
	}
}

func CreateDeliveryArea(areas store.DeliveryAreaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var area models.DeliveryArea
		if err := c.BindJSON(&area); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		area.ZipCode = strings.TrimSpace(area.ZipCode)
		if err := validate.Struct(area); err != nil {
			respondError(c, err)
			return
		}
		if area.DeliveryTime != nil && *area.DeliveryTime <= 0 {
			badRequest(c, "deliveryTime", "delivery time must be positive")
			return
		}
		if err := areas.SaveDeliveryArea(ctx, &area); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, area)
	}
}
