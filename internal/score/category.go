package score

// Category is one of the six fixed quality dimensions.
type Category string

const (
	CategoryNaming        Category = "naming"
	CategoryModularity    Category = "modularity"
	CategoryComments      Category = "comments"
	CategoryFormatting    Category = "formatting"
	CategoryReusability   Category = "reusability"
	CategoryBestPractices Category = "best_practices"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryNaming,
	CategoryModularity,
	CategoryComments,
	CategoryFormatting,
	CategoryReusability,
	CategoryBestPractices,
}

// MaxTotal is the sum of all category maxima.
const MaxTotal = 100

func (c Category) Valid() bool {
	switch c {
	case CategoryNaming, CategoryModularity, CategoryComments,
		CategoryFormatting, CategoryReusability, CategoryBestPractices:
		return true
	}
	return false
}

// Max returns the points available in the category.
func (c Category) Max() int {
	switch c {
	case CategoryNaming:
		return 10
	case CategoryModularity, CategoryComments, CategoryBestPractices:
		return 20
	case CategoryFormatting, CategoryReusability:
		return 15
	default:
		return 0
	}
}

// Order returns the tie-break position of the category (lower first).
func (c Category) Order() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// Title returns a human-readable label.
func (c Category) Title() string {
	switch c {
	case CategoryNaming:
		return "Naming"
	case CategoryModularity:
		return "Modularity"
	case CategoryComments:
		return "Comments & documentation"
	case CategoryFormatting:
		return "Formatting"
	case CategoryReusability:
		return "Reusability"
	case CategoryBestPractices:
		return "Best practices"
	default:
		return string(c)
	}
}
