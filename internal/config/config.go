package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

type Config struct {
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	HTTPPort      string `mapstructure:"HTTP_PORT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	AdminToken    string `mapstructure:"ADMIN_TOKEN"`

	CartReclaimInterval time.Duration `mapstructure:"CART_RECLAIM_INTERVAL"`

	MonerisVerifyURL string        `mapstructure:"MONERIS_VERIFY_URL"`
	MonerisStoreID   string        `mapstructure:"MONERIS_STORE_ID"`
	MonerisHPPKey    string        `mapstructure:"MONERIS_HPP_KEY"`
	MonerisReferer   string        `mapstructure:"MONERIS_REFERER"`
	MonerisTimeout   time.Duration `mapstructure:"MONERIS_TIMEOUT"`

	RequireBillingAddress  bool   `mapstructure:"REQUIRE_BILLING_ADDRESS"`
	RequireShippingAddress bool   `mapstructure:"REQUIRE_SHIPPING_ADDRESS"`
	CollectNoteRequired    bool   `mapstructure:"COLLECT_NOTE_REQUIRED"`
	SkipUserValidation     bool   `mapstructure:"SKIP_USER_VALIDATION"`
	MinimumCharge          int64  `mapstructure:"MINIMUM_CHARGE"`
	AllowFreeOrders        bool   `mapstructure:"ALLOW_FREE_ORDERS"`
	PaymentProviders       string `mapstructure:"PAYMENT_PROVIDERS"`
	OtherPaymentProviders  string `mapstructure:"OTHER_PAYMENT_PROVIDERS"`
	TaxRates               string `mapstructure:"TAX_RATES"`
	ObfuscateOrderIDs      bool   `mapstructure:"OBFUSCATE_ORDER_IDS"`
	Currency               string `mapstructure:"CURRENCY"`
	StripeConnectEnabled   bool   `mapstructure:"STRIPE_CONNECT_ENABLED"`

	MailerSendReceiptToAdmin  bool   `mapstructure:"MAILER_SEND_RECEIPT_TO_ADMIN"`
	MailerSendReceiptToBuyer  bool   `mapstructure:"MAILER_SEND_RECEIPT_TO_BUYER"`
	MailerSendReceiptToSeller bool   `mapstructure:"MAILER_SEND_RECEIPT_TO_SELLER"`
	MailerSubjectPrefix       string `mapstructure:"MAILER_SUBJECT_PREFIX"`
}

var defaults = map[string]any{
	"DATABASE_URL":   "",
	"MIGRATIONS_DIR": "internal/migrations",
	"REDIS_ADDR":     "",
	"KAFKA_BROKERS":  "",
	"KAFKA_TOPIC":    "order-notifications",
	"HTTP_PORT":      "8080",
	"LOG_LEVEL":      "info",
	"ADMIN_TOKEN":    "",

	"CART_RECLAIM_INTERVAL": time.Hour,

	"MONERIS_VERIFY_URL": "https://esqa.moneris.com/HPPDP/verifyTxn.php",
	"MONERIS_STORE_ID":   "",
	"MONERIS_HPP_KEY":    "",
	"MONERIS_REFERER":    "",
	"MONERIS_TIMEOUT":    10 * time.Second,

	"REQUIRE_BILLING_ADDRESS":  true,
	"REQUIRE_SHIPPING_ADDRESS": false,
	"COLLECT_NOTE_REQUIRED":    false,
	"SKIP_USER_VALIDATION":     false,
	"MINIMUM_CHARGE":           0,
	"ALLOW_FREE_ORDERS":        true,
	"PAYMENT_PROVIDERS":        "moneris,cheque",
	"OTHER_PAYMENT_PROVIDERS":  "admin,free,pretend,refund",
	"TAX_RATES":                "",
	"OBFUSCATE_ORDER_IDS":      true,
	"CURRENCY":                 "CAD",
	"STRIPE_CONNECT_ENABLED":   false,

	"MAILER_SEND_RECEIPT_TO_ADMIN":  true,
	"MAILER_SEND_RECEIPT_TO_BUYER":  true,
	"MAILER_SEND_RECEIPT_TO_SELLER": true,
	"MAILER_SUBJECT_PREFIX":         "",
}

// Load reads the optional config file at path, then lets environment variables
// override every key.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("v.Unmarshal: %w", err)
	}

	return cfg, nil
}

// Brokers splits KAFKA_BROKERS. An empty list disables notifications.
func (c Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// Settings builds the order settings shared by carts and orders.
func (c Config) Settings() (domain.Settings, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("currency[%s]: %w", c.Currency, err)
	}

	taxes, err := ParseTaxTable(c.TaxRates)
	if err != nil {
		return domain.Settings{}, err
	}

	s := domain.Settings{
		RequireBillingAddress:  c.RequireBillingAddress,
		RequireShippingAddress: c.RequireShippingAddress,
		CollectNoteRequired:    c.CollectNoteRequired,
		SkipUserValidation:     c.SkipUserValidation,
		AllowFreeOrders:        c.AllowFreeOrders,
		PaymentProviders:       domain.ProviderSet(splitList(c.PaymentProviders)...),
		OtherPaymentProviders:  domain.ProviderSet(splitList(c.OtherPaymentProviders)...),
		TaxRates:               taxes,
		ObfuscateIDs:           c.ObfuscateOrderIDs,
		Currency:               unit,
		StripeConnectEnabled:   c.StripeConnectEnabled,
		Mailer: domain.MailerSettings{
			SendOrderReceiptToAdmin:  c.MailerSendReceiptToAdmin,
			SendOrderReceiptToBuyer:  c.MailerSendReceiptToBuyer,
			SendOrderReceiptToSeller: c.MailerSendReceiptToSeller,
			SubjectPrefix:            c.MailerSubjectPrefix,
		},
	}
	if c.MinimumCharge > 0 {
		minimum := c.MinimumCharge
		s.MinimumCharge = &minimum
	}

	return s, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
