package workload

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

type Strategy string

const (
	BST Strategy = "bst"
	AVL Strategy = "avl"
	RB  Strategy = "rb"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case BST, AVL, RB:
		return st, nil
	default:
	}
	return "", fmt.Errorf("unknown tree strategy %q, expected one of bst, avl, rb", s)
}

type Config struct {
	Strategy Strategy
	// Keys bounds the key space [1, Keys], a small space yields
	// more duplicates and hits.
	Keys int
	Ops  int
	Seed int64
	// Readers is the size of the reader pool, 0 disables the readers.
	Readers int
	// ValidateEvery runs the full invariant check every n mutations,
	// 0 checks at the end only.
	ValidateEvery int
	// InsertRatio is the share of inserts among the mutations.
	InsertRatio float64
}

func DefaultConfig() Config {
	return Config{
		Strategy:      RB,
		Keys:          1 << 14,
		Ops:           1 << 16,
		Seed:          1,
		Readers:       4,
		ValidateEvery: 1 << 12,
		InsertRatio:   0.6,
	}
}

func (cfg *Config) Validate() (merr error) {
	if _, err := ParseStrategy(string(cfg.Strategy)); err != nil {
		merr = multierr.Append(merr, err)
	}
	if cfg.Keys <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("keys must be positive, got %d", cfg.Keys))
	}
	if cfg.Ops < 0 {
		merr = multierr.Append(merr, fmt.Errorf("ops must not be negative, got %d", cfg.Ops))
	}
	if cfg.Readers < 0 {
		merr = multierr.Append(merr, fmt.Errorf("readers must not be negative, got %d", cfg.Readers))
	}
	if cfg.ValidateEvery < 0 {
		merr = multierr.Append(merr, fmt.Errorf("validate every must not be negative, got %d", cfg.ValidateEvery))
	}
	if cfg.InsertRatio < 0 || cfg.InsertRatio > 1 {
		merr = multierr.Append(merr, fmt.Errorf("insert ratio must be in [0, 1], got %v", cfg.InsertRatio))
	}
	return merr
}
