package services

import (
	"regexp"
	"sort"
	"strings"
)

// wordSet is a read-only lookup table built once at init
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// Preparation verbs and filler that never identify a product
var prepWords = newWordSet(
	"chopped", "diced", "minced", "grated", "shredded", "sliced", "peeled",
	"seeded", "fresh", "frozen", "dried", "cooked", "uncooked", "raw", "cut",
	"halved", "quartered", "whole", "boneless", "skinless", "pounded", "melted",
	"softened", "beaten", "sifted", "trimmed", "cubed", "julienned", "rough",
	"finely", "thinly", "thickly", "smashed", "mashed", "pureed", "blanched",
	"toasted", "grilled", "fried", "divided", "room", "temperature", "more",
	"taste", "needed", "rinsed", "drained", "patted", "dry", "squeezed", "stem",
	"removed", "deveined", "gutted", "scaled", "pitted", "cored", "ribbed",
	"scrubbed", "washed", "soaked", "rehydrated", "thawed", "defrosted",
	"crumbled", "flaked", "torn", "pulled", "stripped", "and",
)

// Grocery brands stripped from names so searches stay brand-neutral
var brandNames = []string{
	"King Arthur", "McCormick", "Kraft", "Barilla", "Rao's", "Trader Joe's",
	"Swanson", "Hunt's", "De Cecco", "Dole", "Sargento", "Applegate", "Bertolli",
	"Galbani", "San Marzano", "Kerrygold", "Land O Lakes", "Philadelphia",
	"Hellmann's", "French's", "Heinz", "Kikkoman", "Lee Kum Kee", "Grey Poupon",
	"Tabasco", "Frank's", "Cholula", "Sriracha", "Huy Fong", "Bob's Red Mill",
	"Ghirardelli", "Callebaut", "Valrhona", "Penzeys", "Simply Organic",
	"Morton", "Diamond Crystal",
}

var sizeWords = newWordSet(
	"small", "medium", "large", "extra large", "extra-large", "xl", "jumbo",
	"baby", "mini", "giant", "big", "little", "tiny", "petite", "young",
	"mature", "thick", "thin", "wide", "narrow",
)

var colorWords = newWordSet(
	"green", "red", "yellow", "orange", "purple", "white", "black",
)

// Nouns for which a leading color is only a descriptor (green bell pepper -> bell pepper)
var colorDescriptorNouns = newWordSet(
	"pepper", "peppers", "bell", "cabbage", "squash",
)

// Words that look like preparation but name a distinct product (ground beef, crushed tomatoes)
var productDescriptors = newWordSet(
	"ground", "crushed", "marinated", "roasted", "smoked", "pickled", "cured",
	"aged", "fermented",
)

var qualityWords = newWordSet(
	"fresh", "organic", "free-range", "free range", "grass-fed", "grass fed",
	"wild-caught", "wild caught", "cage-free", "cage free", "extra virgin",
	"extra-virgin", "virgin", "extra", "pure", "natural", "premium", "select",
	"choice", "prime", "quality", "good", "best", "favorite", "favourite",
	"homemade", "store-bought", "high-quality", "high quality", "artisan",
	"artisanal", "certified", "authentic", "traditional", "classic",
	"old-fashioned", "full", "fat", "full fat", "whole", "skim", "low-fat",
	"low fat", "reduced", "reduced-fat", "nonfat", "non-fat", "sweet", "ripe",
	"unripe", "mature", "young", "salted", "unsalted", "lightly salted", "very",
	"cold", "hot", "warm", "cool", "dry", "wet", "moist", "canned", "fine",
	"coarse", "coarsely", "preferably", "freshly", "freshly-ground",
)

// Boilerplate headings that introduce an ingredient block but are not sections
var genericHeaders = newWordSet(
	"ingredients", "you will need", "you'll need", "what you need",
	"shopping list", "supplies", "grocery list", "directions", "instructions",
	"steps", "method", "preparation",
)

// Single-word ingredients common enough to trust without context
var commonIngredients = newWordSet(
	"salt", "pepper", "sugar", "flour", "butter", "milk", "water", "eggs", "egg",
	"garlic", "onion", "tomato", "cheese", "rice", "oil", "vinegar", "lemon",
	"lime", "parsley", "basil", "oregano", "chicken", "beef", "pork", "fish",
	"salmon", "shrimp", "bacon", "pasta", "bread", "potato", "carrot", "celery",
	"spinach",
)

// Unit spellings grouped by kind; matched case-insensitively
var measurementUnits = [][]string{
	// Volume
	{
		"cup", "cups", "c", "c.",
		"tablespoon", "tablespoons", "tbsp", "tbs", "T", "Tbsp", "Tbs",
		"teaspoon", "teaspoons", "tsp", "t", "Tsp",
		"fluid ounce", "fluid ounces", "fl oz", "fl. oz.", "fl oz.", "fl.oz.",
		"pint", "pints", "pt", "quart", "quarts", "qt", "gallon", "gallons", "gal",
		"milliliter", "milliliters", "millilitre", "millilitres", "ml", "mL",
		"liter", "liters", "litre", "litres", "l", "L",
	},
	// Weight
	{
		"ounce", "ounces", "oz", "oz.",
		"pound", "pounds", "lb", "lbs", "lb.", "lbs.",
		"gram", "grams", "g", "g.",
		"kilogram", "kilograms", "kg", "kilo", "kilos",
	},
	// Count
	{
		"clove", "cloves", "sprig", "sprigs", "bunch", "bunches", "head", "heads",
		"stalk", "stalks", "rib", "ribs", "slice", "slices", "piece", "pieces",
		"leaf", "leaves", "stem", "stems",
	},
	// Container
	{
		"can", "cans", "jar", "jars", "box", "boxes", "package", "packages", "pkg",
		"bag", "bags", "container", "containers", "carton", "cartons", "bottle",
		"bottles", "pouch", "pouches", "tin", "tins",
	},
}

// Leading list markers, applied in order
var bulletPatterns = []*regexp.Regexp{
	// Checkbox glyphs
	regexp.MustCompile(`^\s*[\x{25A2}\x{25A1}\x{25A0}\x{2610}\x{2611}\x{2612}\x{2713}\x{2714}\x{2715}\x{2716}\x{2717}\x{2718}]\s*`),
	// Bullet glyphs
	regexp.MustCompile(`^\s*[•◦▪▫⦿⦾○●]\s*`),
	// Dashes and asterisks
	regexp.MustCompile(`^\s*[*+\-–—]\s*`),
	// Numbered list prefix
	regexp.MustCompile(`^\s*\d+[.)\-]\s*`),
}

// unitAlternation returns every unit spelling joined for use in a regexp,
// longest first so "tbsp" wins over "t" and "fl oz" over "fl".
func unitAlternation() string {
	var units []string
	for _, group := range measurementUnits {
		units = append(units, group...)
	}
	sort.SliceStable(units, func(i, j int) bool {
		return len(units[i]) > len(units[j])
	})

	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return strings.Join(quoted, "|")
}

// brandAlternation joins brand names for a single whole-word pattern
func brandAlternation() string {
	brands := append([]string(nil), brandNames...)
	sort.SliceStable(brands, func(i, j int) bool {
		return len(brands[i]) > len(brands[j])
	})

	quoted := make([]string, len(brands))
	for i, b := range brands {
		quoted[i] = regexp.QuoteMeta(b)
	}
	return strings.Join(quoted, "|")
}
