package categorizer

import (
	"fmt"
	"regexp"
	"time"

	"github.com/patrickmn/go-cache"

	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/pkg/logger"
)

// Statement descriptions repeat heavily across months (the same payroll
// deposit, the same card merchants), so categorization results are memoized
// by normalized description.

// Categorization is the category assignment for one transaction description
type Categorization struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
}

// categoryRule maps a description pattern to its categorization. Rules are
// an ordered table; the first match wins, so more specific patterns sit
// before general ones.
type categoryRule struct {
	name        string
	pattern     *regexp.Regexp
	category    string
	subcategory string
	confidence  float64
}

var categoryRules = []categoryRule{
	{
		name:        "zelle_transfer",
		pattern:     regexp.MustCompile(`(?i)\bzelle\b`),
		category:    "transfer",
		subcategory: "zelle",
		confidence:  0.9,
	},
	{
		name:        "payroll_deposit",
		pattern:     regexp.MustCompile(`(?i)direct\s+dep(?:osit)?|payroll|\bdes:payroll\b`),
		category:    "income",
		subcategory: "payroll",
		confidence:  0.9,
	},
	{
		name:        "interest_earned",
		pattern:     regexp.MustCompile(`(?i)\binterest\s+(?:earned|paid|payment)\b`),
		category:    "income",
		subcategory: "interest",
		confidence:  0.9,
	},
	{
		name:        "wire_transfer",
		pattern:     regexp.MustCompile(`(?i)\bwire\s+(?:type|out|in|transfer)\b`),
		category:    "transfer",
		subcategory: "wire",
		confidence:  0.9,
	},
	{
		name:        "online_banking",
		pattern:     regexp.MustCompile(`(?i)online\s+banking\s+(?:payment|transfer)`),
		category:    "transfer",
		subcategory: "online_banking",
		confidence:  0.8,
	},
	{
		name:        "atm_cash",
		pattern:     regexp.MustCompile(`(?i)\batm\b|\bcash\s+withdrawal\b`),
		category:    "cash",
		subcategory: "atm",
		confidence:  0.9,
	},
	{
		// Must run before the bare check rule so card purchases do not land
		// in the check category
		name:        "card_purchase",
		pattern:     regexp.MustCompile(`(?i)\bcheckcard\b|\bdebit\s+card\b|\bpos\s+(?:purchase|debit)\b`),
		category:    "purchase",
		subcategory: "card",
		confidence:  0.8,
	},
	{
		name:        "check_payment",
		pattern:     regexp.MustCompile(`(?i)\bcheck\s*#?\s*\d+\b|\bcheck\s+paid\b`),
		category:    "payment",
		subcategory: "check",
		confidence:  0.7,
	},
	{
		name:        "service_fee",
		pattern:     regexp.MustCompile(`(?i)\bfee\b|\bservice\s+charge\b`),
		category:    "fees",
		subcategory: "service_fee",
		confidence:  0.85,
	},
	{
		name:        "mobile_deposit",
		pattern:     regexp.MustCompile(`(?i)mobile\s+(?:check\s+)?deposit`),
		category:    "income",
		subcategory: "mobile_deposit",
		confidence:  0.8,
	},
}

// uncategorized is the fallback for descriptions no rule recognizes
var uncategorized = Categorization{Category: "uncategorized"}

// Config holds categorizer cache behavior
type Config struct {
	// CacheTTL is how long memoized categorizations stay valid
	CacheTTL time.Duration `json:"cache_ttl"`

	// CacheCleanupInterval is how often expired entries are purged
	CacheCleanupInterval time.Duration `json:"cache_cleanup_interval"`
}

// DefaultConfig returns cache settings sized for a batch extraction run
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:             30 * time.Minute,
		CacheCleanupInterval: 10 * time.Minute,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.CacheCleanupInterval <= 0 {
		return fmt.Errorf("cache cleanup interval must be positive")
	}
	return nil
}

// Categorizer assigns spending categories to transactions
type Categorizer struct {
	config *Config
	cache  *cache.Cache
	logger logger.Logger
}

// NewCategorizer creates a categorizer with the given configuration
func NewCategorizer(config *Config) (*Categorizer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid categorizer configuration: %w", err)
	}

	return &Categorizer{
		config: config,
		cache:  cache.New(config.CacheTTL, config.CacheCleanupInterval),
		logger: logger.GetGlobalLogger().WithComponent("categorizer"),
	}, nil
}

// Categorize returns the categorization for a transaction description
func (c *Categorizer) Categorize(description string) Categorization {
	key := models.NormalizeDescription(description)
	if key == "" {
		return uncategorized
	}

	if cached, found := c.cache.Get(key); found {
		return cached.(Categorization)
	}

	result := uncategorized
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(description) {
			result = Categorization{
				Category:    rule.category,
				Subcategory: rule.subcategory,
				Confidence:  rule.confidence,
			}
			break
		}
	}

	c.cache.Set(key, result, cache.DefaultExpiration)
	return result
}

// CategorizeTransaction assigns category fields on the transaction in place
func (c *Categorizer) CategorizeTransaction(transaction *models.Transaction) {
	if transaction == nil {
		return
	}

	result := c.Categorize(transaction.Description)
	transaction.Category = result.Category
	transaction.Subcategory = result.Subcategory
	transaction.CategoryConfidence = result.Confidence
}

// CategorizeStatement assigns categories to every transaction in the
// statement
func (c *Categorizer) CategorizeStatement(statement *models.ParsedStatement) {
	if statement == nil {
		return
	}

	for _, transaction := range statement.Transactions {
		c.CategorizeTransaction(transaction)
	}

	c.logger.WithFields(logger.Fields{
		"transactions": len(statement.Transactions),
		"cached":       c.cache.ItemCount(),
	}).Debug("Categorized statement transactions")
}

// CachedDescriptions reports how many distinct descriptions are memoized
func (c *Categorizer) CachedDescriptions() int {
	return c.cache.ItemCount()
}
