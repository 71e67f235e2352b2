package spatial

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CategoryOther collects usage texts that match no rule and empty
// construction types.
const CategoryOther = "その他"

// UsageRule assigns a category when the free-text usage field contains any of
// the keywords. Rules are evaluated in order; the first match wins, so a text
// naming both a residence and a shop classifies by whichever rule comes first.
type UsageRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules returns the built-in usage taxonomy in its fixed evaluation
// order: residential, commercial, business, industrial, public.
func DefaultRules() []UsageRule {
	return []UsageRule{
		{Category: "住宅", Keywords: []string{"住宅", "居住", "共同住宅", "専用住宅"}},
		{Category: "商業", Keywords: []string{"店舗", "商業", "飲食", "物販"}},
		{Category: "業務", Keywords: []string{"事務所", "業務", "オフィス"}},
		{Category: "工業", Keywords: []string{"工場", "倉庫", "作業所"}},
		{Category: "公共", Keywords: []string{"学校", "病院", "庁舎", "公民館", "公共"}},
	}
}

// Categorize returns the category of the first rule whose keyword appears in
// the usage text, or CategoryOther when none matches.
func Categorize(usage string, rules []UsageRule) string {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(usage, kw) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// LoadRules reads an ordered taxonomy from a YAML file so the rule set is
// swappable without a rebuild.
func LoadRules(path string) ([]UsageRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: read taxonomy file")
	}

	var rules []UsageRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, eris.Wrap(err, "spatial: parse taxonomy file")
	}
	if len(rules) == 0 {
		return nil, eris.New("spatial: taxonomy file has no rules")
	}
	return rules, nil
}
