package catalog

import (
	"fmt"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/validation"
)

// 商品フィールドのバリデーション境界値。
const (
	maxTitleLength    = 255
	maxCategoryLength = 255
	maxImageLength    = 255
	maxRatingRate     = 5.0
)

// ProductInput は商品の作成・部分更新の入力を表す。
// nilのフィールドは「未指定」を意味し、部分更新では既存値を維持する。
type ProductInput struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Image       *string
	Rating      *model.Rating
}

// validateProduct は商品入力のバリデーション違反を全件集約して返す。
// partialがtrueの場合は指定されたフィールドのみを検証する（部分更新）。
// falseの場合は必須フィールドの未指定も違反として扱う（新規作成）。
func validateProduct(input ProductInput, partial bool) error {
	var c validation.Collector

	switch {
	case input.Title == nil:
		if !partial {
			c.Add("title", "The product title is required.")
		}
	case *input.Title == "":
		c.Add("title", "The product title is required.")
	case len(*input.Title) > maxTitleLength:
		c.Add("title", fmt.Sprintf("The title field must not be greater than %d characters.", maxTitleLength))
	}

	if input.Description == nil {
		if !partial {
			c.Add("description", "The description field is required.")
		}
	} else if *input.Description == "" {
		c.Add("description", "The description field is required.")
	}

	if input.Price == nil {
		if !partial {
			c.Add("price", "The price field is required.")
		}
	} else if *input.Price < 0 {
		c.Add("price", "The price field must be at least 0.")
	}

	switch {
	case input.Category == nil:
		if !partial {
			c.Add("category", "The category field is required.")
		}
	case *input.Category == "":
		c.Add("category", "The category field is required.")
	case len(*input.Category) > maxCategoryLength:
		c.Add("category", fmt.Sprintf("The category field must not be greater than %d characters.", maxCategoryLength))
	}

	switch {
	case input.Image == nil:
		if !partial {
			c.Add("image", "The image field is required.")
		}
	case *input.Image == "":
		c.Add("image", "The image field is required.")
	case len(*input.Image) > maxImageLength:
		c.Add("image", fmt.Sprintf("The image field must not be greater than %d characters.", maxImageLength))
	}

	// ratingは作成・更新ともに任意
	if input.Rating != nil {
		if input.Rating.Rate < 0 || input.Rating.Rate > maxRatingRate {
			c.Add("rating.rate", fmt.Sprintf("The rating.rate field must be between 0 and %g.", maxRatingRate))
		}
		if input.Rating.Count < 0 {
			c.Add("rating.count", "The rating.count field must be at least 0.")
		}
	}

	return c.Err()
}
