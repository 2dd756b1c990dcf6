package benchmark

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// MainCategory identifies a top-level industry taxonomy node. The set is
// closed; display labels live with presentation, not here.
type MainCategory string

const (
	CategoryRestaurant MainCategory = "restaurant"
	CategoryCafe       MainCategory = "cafe"
	CategoryFastfood   MainCategory = "fastfood"
	CategoryPub        MainCategory = "pub"
	CategoryRetail     MainCategory = "retail"
	CategoryOther      MainCategory = "other"
)

// MainCategories lists every top-level node in a fixed order. The order
// is load-bearing: radar axes are built per category in this order.
var MainCategories = []MainCategory{
	CategoryRestaurant,
	CategoryCafe,
	CategoryFastfood,
	CategoryPub,
	CategoryRetail,
}

// SubIndustry is one leaf taxonomy node. Aliases are alternative
// spellings accepted from upstream data (localized labels included).
type SubIndustry struct {
	ID      string   `yaml:"id"`
	Aliases []string `yaml:"aliases"`
}

// Taxonomy is the two-level industry hierarchy used to resolve which
// cohort applies to a business. A leaf always maps to exactly one main
// category.
type Taxonomy struct {
	Subs map[MainCategory][]SubIndustry `yaml:"industries"`

	// byKey indexes normalized sub IDs and aliases to their parent.
	byKey map[string]MainCategory
}

// DefaultTaxonomy returns the built-in industry hierarchy.
func DefaultTaxonomy() *Taxonomy {
	t := &Taxonomy{Subs: map[MainCategory][]SubIndustry{
		CategoryRestaurant: {
			{ID: "korean", Aliases: []string{"한식", "한정식", "백반/가정식"}},
			{ID: "western", Aliases: []string{"양식", "스테이크"}},
			{ID: "japanese", Aliases: []string{"일식당", "일식"}},
			{ID: "chinese", Aliases: []string{"중식당", "중식"}},
			{ID: "asian", Aliases: []string{"동남아/인도음식"}},
			{ID: "snack", Aliases: []string{"분식", "도시락"}},
		},
		CategoryCafe: {
			{ID: "coffee", Aliases: []string{"카페", "커피전문점", "테이크아웃커피"}},
			{ID: "bakery", Aliases: []string{"베이커리", "도너츠"}},
			{ID: "dessert", Aliases: []string{"아이스크림/빙수", "마카롱", "와플/크로플"}},
		},
		CategoryFastfood: {
			{ID: "chicken", Aliases: []string{"치킨"}},
			{ID: "pizza", Aliases: []string{"피자"}},
			{ID: "burger", Aliases: []string{"햄버거", "샌드위치/토스트"}},
		},
		CategoryPub: {
			{ID: "beer-hall", Aliases: []string{"호프/맥주"}},
			{ID: "gastro-pub", Aliases: []string{"요리주점", "이자카야"}},
			{ID: "wine-bar", Aliases: []string{"와인바"}},
			{ID: "street-bar", Aliases: []string{"포장마차"}},
		},
		CategoryRetail: {
			{ID: "grocery", Aliases: []string{"식료품", "농산물", "청과물"}},
			{ID: "butcher", Aliases: []string{"축산물"}},
			{ID: "seafood", Aliases: []string{"수산물", "건어물"}},
			{ID: "liquor", Aliases: []string{"주류", "와인샵"}},
			{ID: "health-food", Aliases: []string{"건강식품", "인삼제품"}},
		},
		CategoryOther: {
			{ID: "food-manufacturing", Aliases: []string{"식품 제조"}},
		},
	}}
	t.index()
	return t
}

// LoadTaxonomy reads a custom taxonomy from a YAML file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: read %s", path)
	}
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrapf(err, "taxonomy: parse %s", path)
	}
	if len(t.Subs) == 0 {
		return nil, eris.Errorf("taxonomy: %s defines no industries", path)
	}
	t.index()
	return &t, nil
}

func (t *Taxonomy) index() {
	t.byKey = make(map[string]MainCategory)
	for main, subs := range t.Subs {
		for _, sub := range subs {
			t.byKey[normalizeKey(sub.ID)] = main
			for _, alias := range sub.Aliases {
				t.byKey[normalizeKey(alias)] = main
			}
		}
	}
}

// Resolve maps an industry code to its main category. Resolution is a
// fallback chain: exact main-category ID, then sub-industry ID or alias,
// then CategoryOther. Never errors on unknown codes.
func (t *Taxonomy) Resolve(code string) MainCategory {
	key := normalizeKey(code)
	if key == string(CategoryOther) {
		return CategoryOther
	}
	for _, main := range MainCategories {
		if key == string(main) {
			return main
		}
	}
	if main, ok := t.byKey[key]; ok {
		return main
	}
	return CategoryOther
}

// normalizeKey folds an industry code for matching: NFKC normalization,
// lowercase, letters and digits only. Mirrors how upstream labels arrive
// with inconsistent punctuation and width.
func normalizeKey(s string) string {
	folded := norm.NFKC.String(s)
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
