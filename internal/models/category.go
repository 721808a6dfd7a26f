package models

// Category is one of the fixed catalog categories events are filed under
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories lists the catalog categories in display order
var Categories = []Category{
	{Key: "concert", Name: "Conciertos"},
	{Key: "sport", Name: "Deportes"},
	{Key: "family", Name: "Familiar"},
	{Key: "party", Name: "Fiestas"},
	{Key: "movies", Name: "Cine"},
	{Key: "workshop", Name: "Talleres"},
}

// CategoryByKey looks up a category by its key
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
