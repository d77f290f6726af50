package category

// pattern maps a category onto the phrases that indicate it.
type pattern struct {
	category string
	phrases  []string
}

var ingredientPatterns = []pattern{
	{"Italian", []string{"pasta", "spaghetti", "linguine", "penne", "fettuccine", "lasagna", "ravioli", "gnocchi", "parmesan", "mozzarella", "basil", "oregano", "marinara", "pesto", "prosciutto", "pancetta"}},
	{"Asian", []string{"soy sauce", "sesame oil", "ginger", "garlic", "rice vinegar", "miso", "wasabi", "nori", "tofu", "bok choy", "shiitake", "teriyaki", "sriracha", "fish sauce", "coconut milk", "lemongrass"}},
	{"Mexican", []string{"cumin", "chili powder", "paprika", "cilantro", "lime", "jalapeño", "chipotle", "avocado", "black beans", "corn", "tortilla", "salsa", "queso", "chorizo", "poblano"}},
	{"Indian", []string{"curry", "turmeric", "cardamom", "coriander", "cumin", "garam masala", "ghee", "basmati", "naan", "paneer", "lentils", "chickpeas", "coconut", "tamarind"}},
	{"Desserts", []string{"sugar", "flour", "butter", "eggs", "vanilla", "chocolate", "cocoa", "cream", "milk", "honey", "cinnamon", "nutmeg", "frosting", "icing", "caramel", "strawberry", "blueberry"}},
	{"Salads", []string{"lettuce", "spinach", "arugula", "kale", "cucumber", "tomato", "carrot", "bell pepper", "onion", "vinaigrette", "dressing", "olive oil", "lemon juice", "feta", "croutons"}},
	{"Soups", []string{"broth", "stock", "water", "onion", "celery", "carrot", "potato", "cream", "milk", "herbs", "bay leaf", "thyme", "parsley", "salt", "pepper"}},
	{"Seafood", []string{"fish", "salmon", "tuna", "cod", "shrimp", "crab", "lobster", "scallops", "mussels", "clams", "oysters", "calamari", "anchovy", "sea bass", "halibut"}},
	{"Vegetarian", []string{"vegetables", "beans", "lentils", "quinoa", "tofu", "tempeh", "nuts", "seeds", "mushrooms", "eggplant", "zucchini", "bell pepper", "broccoli", "cauliflower"}},
	{"Breakfast", []string{"eggs", "bacon", "sausage", "pancakes", "waffles", "toast", "cereal", "oatmeal", "yogurt", "fruit", "coffee", "orange juice", "syrup", "jam"}},
}

var methodPatterns = []pattern{
	{"Baked", []string{"bake", "baked", "baking", "oven", "roast", "roasted", "roasting", "broil", "broiled"}},
	{"Grilled", []string{"grill", "grilled", "grilling", "barbecue", "bbq", "charcoal", "gas grill"}},
	{"Fried", []string{"fry", "fried", "frying", "deep fry", "pan fry", "sauté", "sautéed", "stir fry", "stir-fry"}},
	{"Slow Cooked", []string{"slow cook", "slow cooker", "crockpot", "braised", "braising", "simmer", "simmered"}},
	{"No-Cook", []string{"no cook", "no-cook", "raw", "fresh", "uncooked", "cold", "refrigerate", "chill"}},
	{"One-Pot", []string{"one pot", "one-pot", "single pot", "skillet", "casserole", "dutch oven"}},
}

var mealtimePatterns = []pattern{
	{"Breakfast", []string{"breakfast", "morning", "brunch", "cereal", "pancake", "waffle", "toast", "coffee", "juice"}},
	{"Lunch", []string{"lunch", "midday", "sandwich", "wrap", "salad", "soup", "light meal"}},
	{"Dinner", []string{"dinner", "evening", "main course", "entree", "supper", "family meal"}},
	{"Snacks", []string{"snack", "appetizer", "finger food", "party food", "quick bite", "nibble"}},
	{"Dessert", []string{"dessert", "sweet", "cake", "pie", "cookie", "ice cream", "pudding", "treat"}},
}

// commonCategories are scored by the keyword pass.
var commonCategories = []string{
	"Italian", "Asian", "Mexican", "Indian", "American", "French",
	"Breakfast", "Lunch", "Dinner", "Desserts", "Appetizers",
	"Vegetarian", "Vegan", "Seafood", "Chicken", "Beef", "Pork",
	"Salads", "Soups", "Pasta", "Rice", "Bread", "Healthy",
}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"about", "above", "after", "again", "against", "all", "and", "any", "are", "because",
		"been", "before", "being", "below", "between", "both", "but", "can", "did", "does",
		"doing", "down", "during", "each", "few", "for", "from", "further", "had", "has",
		"have", "having", "her", "here", "hers", "herself", "him", "himself", "his", "how",
		"into", "its", "itself", "just", "more", "most", "myself", "nor", "not", "now",
		"off", "once", "only", "other", "our", "ours", "ourselves", "out", "over", "own",
		"same", "she", "should", "some", "such", "than", "that", "the", "their", "theirs",
		"them", "themselves", "then", "there", "these", "they", "this", "those", "through",
		"too", "under", "until", "very", "was", "were", "what", "when", "where", "which",
		"while", "who", "whom", "why", "will", "with", "you", "your", "yours", "yourself",
	} {
		stopwords[w] = struct{}{}
	}
}
