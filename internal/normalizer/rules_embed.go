package normalizer

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed data/tag_rules.yaml
var tagRulesYAML []byte

// LabelPattern một pattern nhận diện dòng nhãn trong mô tả ("Thể loại: ...")
type LabelPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// MinerRules cấu hình rule cho DescriptionTagMiner, load từ embedded YAML
type MinerRules struct {
	LabelPatterns []LabelPattern `yaml:"label_patterns"`
	Separators    []string       `yaml:"separators"`
	DatePatterns  []string       `yaml:"date_patterns"`
	StopWords     []string       `yaml:"stop_words"`
}

// LoadMinerRules load rule miner từ embedded YAML
func LoadMinerRules() (*MinerRules, error) {
	rules := &MinerRules{}
	if err := yaml.Unmarshal(tagRulesYAML, rules); err != nil {
		return nil, err
	}
	return rules, nil
}
