package ingredient

// DictionaryEntry is one curated dish and the ingredients it needs.
type DictionaryEntry struct {
	Dish        string
	Ingredients []string
}

// Dictionary is an ordered list of curated dishes. Lookups return the first
// equivalent entry.
type Dictionary []DictionaryEntry

// DefaultDictionary is the curated dish table shipped with the planner.
var DefaultDictionary = Dictionary{
	{Dish: "Ensalada", Ingredients: []string{"Lechuga", "Tomate"}},
	{Dish: "Ensalada de garbanzos", Ingredients: []string{"Garbanzos", "Cebolla", "Pimiento", "Atún"}},
	{Dish: "Ensalada Sergio", Ingredients: []string{"Queso Cottage", "Sardinas", "Huevos cocidos", "Lechuga", "Tomate"}},
	{Dish: "Ensalada de pasta", Ingredients: []string{"Macarrones", "jamón york", "Pepinillos", "Sardinas"}},
	{Dish: "Fajitas", Ingredients: []string{"Pan de fajita", "Carne picada", "Pimiento", "Cebolla"}},
	{Dish: "Tortilla de patata", Ingredients: []string{"Huevos", "Patatas", "Cebolla"}},
	{Dish: "Pizza casera", Ingredients: []string{"Masa de pizza", "Tomate frito", "Queso"}},
	{Dish: "Pizza", Ingredients: []string{"Pizza"}},
	{Dish: "Macarrones", Ingredients: []string{"Macarrones", "Tomate frito"}},
	{Dish: "Macarrones con pesto", Ingredients: []string{"Macarrones", "Pesto"}},
	{Dish: "Arroz", Ingredients: []string{"Arroz", "Tomate frito"}},
	{Dish: "Arroz con pollo", Ingredients: []string{"Arroz", "Pollo"}},
	{Dish: "Sopa", Ingredients: []string{"Sopa"}},
	{Dish: "Alubias", Ingredients: []string{"Alubias", "Zanahoria", "Carne"}},
	{Dish: "Huevos", Ingredients: []string{"Huevos"}},
	{Dish: "Patatas", Ingredients: []string{"Patatas"}},
}

// Lookup returns a copy of the ingredients of the first entry equivalent to name.
func (d Dictionary) Lookup(name string) ([]string, bool) {
	for _, entry := range d {
		if Equivalent(name, entry.Dish) {
			out := make([]string, len(entry.Ingredients))
			copy(out, entry.Ingredients)
			return out, true
		}
	}
	return nil, false
}

// Equivalent reports whether two names match ignoring case, diacritics and
// a trailing "s" or "es" on either side.
func Equivalent(a, b string) bool {
	x, y := Normalize(a), Normalize(b)
	switch {
	case x == y:
		return true
	case x == y+"s", y == x+"s":
		return true
	case x == y+"es", y == x+"es":
		return true
	}
	return false
}
