package category

import "strings"

type Category struct {
	Name string
}

func (c Category) Code() string {
	return strings.ReplaceAll(strings.ToLower(c.Name), " ", "-")
}

func (c Category) Label() string {
	return c.Name
}

type Enum struct {
	Appetizers Category
	MainCourse Category
	Desserts   Category
	Beverages  Category
}

var Categories = Enum{
	Appetizers: Category{Name: "Appetizers"},
	MainCourse: Category{Name: "Main Course"},
	Desserts:   Category{Name: "Desserts"},
	Beverages:  Category{Name: "Beverages"},
}

var All = []Category{
	Categories.Appetizers,
	Categories.MainCourse,
	Categories.Desserts,
	Categories.Beverages,
}

// ByName resolves a category by display name or code, case-insensitively.
func ByName(name string) *Category {
	name = strings.TrimSpace(name)
	for _, c := range All {
		if strings.EqualFold(c.Name, name) || c.Code() == strings.ToLower(name) {
			return &c
		}
	}
	return nil
}
