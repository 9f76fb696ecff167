package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScoringCfg trọng số chấm điểm tương đồng
type ScoringCfg struct {
	JaccardWeight    float64 `yaml:"jaccard_weight" json:"jaccard_weight"`
	PopularityWeight float64 `yaml:"popularity_weight" json:"popularity_weight"`
	PopularityCap    float64 `yaml:"popularity_cap" json:"popularity_cap"`
	PopularityDamp   float64 `yaml:"popularity_damp" json:"popularity_damp"`
	ScoreDecimals    int     `yaml:"score_decimals" json:"score_decimals"`
}

// CacheCfg TTL cho dictionary snapshot và result cache
type CacheCfg struct {
	DictionaryTTLSeconds int `yaml:"dictionary_ttl_seconds" json:"dictionary_ttl_seconds"`
	ResultTTLSeconds     int `yaml:"result_ttl_seconds" json:"result_ttl_seconds"`
	ResultCacheSize      int `yaml:"result_cache_size" json:"result_cache_size"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" json:"sweep_interval_seconds"`
}

// MatchingCfg cấu hình resolve tag: blacklist, negation, sensitive key
type MatchingCfg struct {
	Blacklist        []string `yaml:"blacklist" json:"blacklist"`
	NegationMarkers  []string `yaml:"negation_markers" json:"negation_markers"`
	SensitiveKeys    []string `yaml:"sensitive_keys" json:"sensitive_keys"`
	MinContainKeyLen int      `yaml:"min_contain_key_len" json:"min_contain_key_len"`
	MinTokenLen      int      `yaml:"min_token_len" json:"min_token_len"`
}

// EngineCfg cấu hình tĩnh của engine, load một lần lúc khởi động
type EngineCfg struct {
	Scoring  ScoringCfg  `yaml:"scoring" json:"scoring"`
	Cache    CacheCfg    `yaml:"cache" json:"cache"`
	Matching MatchingCfg `yaml:"matching" json:"matching"`
}

var C EngineCfg

// Default cấu hình mặc định compile sẵn
func Default() EngineCfg {
	return EngineCfg{
		Scoring: ScoringCfg{
			JaccardWeight:    0.9,
			PopularityWeight: 0.1,
			PopularityCap:    0.1,
			PopularityDamp:   20,
			ScoreDecimals:    4,
		},
		Cache: CacheCfg{
			DictionaryTTLSeconds: 300,
			ResultTTLSeconds:     120,
			ResultCacheSize:      1000,
			SweepIntervalSeconds: 60,
		},
		Matching: MatchingCfg{
			// Từ chung chung/branding không mang tín hiệu phân biệt
			Blacklist: []string{
				"truyen", "novel", "light novel", "fic", "fanfic",
				"edit", "beta", "hoan", "full", "convert", "wattpad", "wordpress",
				"truyen dai", "chinh van",
			},
			NegationMarkers: []string{
				"khong co", "khong", "chua", "no", "not", "without", "non",
			},
			SensitiveKeys: []string{
				"ntr", "ngoai tinh", "np", "cam sung",
			},
			MinContainKeyLen: 3,
			MinTokenLen:      2,
		},
	}
}

// Load load cấu hình từ file YAML, merge lên defaults.
// Lỗi cấu hình fail fast trước khi serve traffic
func Load(path string) error {
	C = Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("lỗi đọc config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &C); err != nil {
			return fmt.Errorf("lỗi parse config %s: %w", path, err)
		}
	}

	return C.Validate()
}

// Validate kiểm tra cấu hình hợp lệ
func (c *EngineCfg) Validate() error {
	if c.Scoring.JaccardWeight <= 0 || c.Scoring.PopularityWeight < 0 {
		return fmt.Errorf("scoring weights không hợp lệ: jaccard=%v popularity=%v",
			c.Scoring.JaccardWeight, c.Scoring.PopularityWeight)
	}
	if c.Scoring.PopularityDamp <= 0 {
		return fmt.Errorf("popularity_damp phải > 0, nhận %v", c.Scoring.PopularityDamp)
	}
	if c.Scoring.ScoreDecimals < 0 || c.Scoring.ScoreDecimals > 10 {
		return fmt.Errorf("score_decimals ngoài khoảng [0,10]: %d", c.Scoring.ScoreDecimals)
	}
	if c.Cache.DictionaryTTLSeconds <= 0 || c.Cache.ResultTTLSeconds <= 0 {
		return fmt.Errorf("cache TTL phải > 0")
	}
	if c.Cache.ResultCacheSize <= 0 {
		return fmt.Errorf("result_cache_size phải > 0, nhận %d", c.Cache.ResultCacheSize)
	}
	if c.Matching.MinContainKeyLen < 1 || c.Matching.MinTokenLen < 1 {
		return fmt.Errorf("độ dài key/token tối thiểu phải >= 1")
	}
	for _, marker := range c.Matching.NegationMarkers {
		if marker == "" {
			return fmt.Errorf("negation marker rỗng")
		}
	}
	return nil
}

// DictionaryTTL TTL của dictionary snapshot
func (c *EngineCfg) DictionaryTTL() time.Duration {
	return time.Duration(c.Cache.DictionaryTTLSeconds) * time.Second
}

// ResultTTL TTL của result cache
func (c *EngineCfg) ResultTTL() time.Duration {
	return time.Duration(c.Cache.ResultTTLSeconds) * time.Second
}

// SweepInterval chu kỳ quét dọn result cache
func (c *EngineCfg) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalSeconds) * time.Second
}
