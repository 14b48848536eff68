package model

// Fixed category table shipped with the storefront; the API only carries
// numeric category ids.
var categories = map[int]string{
	1: "Smartphones",
	2: "Laptops",
	3: "Tablets",
	4: "Headphones",
	5: "Cameras",
	6: "Printers",
	7: "Monitors",
	8: "Storage",
	9: "Accessories",
}

// CategoryName resolves a category id to its display name, falling back to
// "Uncategorized" for unknown ids.
func CategoryName(id int) string {
	if name, ok := categories[id]; ok {
		return name
	}
	return "Uncategorized"
}
