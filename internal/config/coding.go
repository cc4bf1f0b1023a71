package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/spf13/viper"
)

// Default coding limits.
const (
	DefaultMaxFirstOrderLength = 300
	DefaultMaxCategoryLength   = 100
	DefaultMinSentenceLength   = 3
)

// CodingConfig holds the size limits applied to codes and sentences.
type CodingConfig struct {
	// MaxFirstOrderLength is the longest first-order content accepted, in runes.
	MaxFirstOrderLength int
	// MaxCategoryLength is the longest second/third-order name accepted, in runes.
	MaxCategoryLength int
	// MinSentenceLength drops segmented fragments shorter than this, in runes.
	MinSentenceLength int
}

// DefaultCodingConfig returns the stock limits.
func DefaultCodingConfig() CodingConfig {
	return CodingConfig{
		MaxFirstOrderLength: DefaultMaxFirstOrderLength,
		MaxCategoryLength:   DefaultMaxCategoryLength,
		MinSentenceLength:   DefaultMinSentenceLength,
	}
}

// Validate checks that every limit is usable.
func (c CodingConfig) Validate() error {
	if c.MaxFirstOrderLength <= 0 {
		return fmt.Errorf("%w: max first-order length must be positive, got %d", common.ErrInvalidConfig, c.MaxFirstOrderLength)
	}
	if c.MaxCategoryLength <= 0 {
		return fmt.Errorf("%w: max category length must be positive, got %d", common.ErrInvalidConfig, c.MaxCategoryLength)
	}
	if c.MinSentenceLength < 0 {
		return fmt.Errorf("%w: min sentence length cannot be negative, got %d", common.ErrInvalidConfig, c.MinSentenceLength)
	}
	return nil
}

// LoadCodingConfig loads coding limits from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or GROUNDWORK_ env vars)
// 2. Direct environment variables (CODING_*)
// 3. Default values
func LoadCodingConfig() (*CodingConfig, error) {
	config := DefaultCodingConfig()

	if v := viper.GetInt("coding.max_first_order_length"); v != 0 {
		config.MaxFirstOrderLength = v
	} else if v, ok := envInt("CODING_MAX_FIRST_ORDER_LENGTH"); ok {
		config.MaxFirstOrderLength = v
	}

	if v := viper.GetInt("coding.max_category_length"); v != 0 {
		config.MaxCategoryLength = v
	} else if v, ok := envInt("CODING_MAX_CATEGORY_LENGTH"); ok {
		config.MaxCategoryLength = v
	}

	if viper.IsSet("segmentation.min_sentence_length") {
		config.MinSentenceLength = viper.GetInt("segmentation.min_sentence_length")
	} else if v, ok := envInt("CODING_MIN_SENTENCE_LENGTH"); ok {
		config.MinSentenceLength = v
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
