package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultPort               = "8080"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultCurrency           = "RON"
	defaultSeasonalDiscount   = 0.0
	defaultOrdersCollection   = "orders"
	defaultCouponsCollection  = "coupons"
	defaultFiscalEventsTopic  = "fiscal-documents"
	defaultCheckoutSuccessURL = "https://hudemas.ro/comanda/succes"
	defaultCheckoutCancelURL  = "https://hudemas.ro/cos"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firebase  FirebaseConfig
	Firestore FirestoreConfig
	PSP       PSPConfig
	Pricing   PricingConfig
	Supplier  SupplierConfig
	PubSub    PubSubConfig
	Checkout  CheckoutConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID         string
	EmulatorHost      string
	OrdersCollection  string
	CouponsCollection string
}

// PSPConfig collects secrets for the payment provider.
type PSPConfig struct {
	StripeAPIKey        string
	StripeWebhookSecret string
}

// PricingConfig carries storefront pricing parameters.
type PricingConfig struct {
	Currency             string
	SeasonalDiscountRate float64
}

// SupplierConfig is the seller's fiscal identity printed on invoices, AWB
// labels, and accounting exports.
type SupplierConfig struct {
	LegalName       string
	TradeRegisterNo string
	TaxID           string
	ShareCapital    string
	Address         string
	City            string
	County          string
	BankName        string
	IBAN            string
	Email           string
	Phone           string
}

// PubSubConfig configures asynchronous fiscal event publication.
type PubSubConfig struct {
	ProjectID         string
	FiscalEventsTopic string
	EmulatorHost      string
}

// CheckoutConfig holds the hosted payment page redirect targets.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = ctx

	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "HUDEMAS_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "HUDEMAS_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "HUDEMAS_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "HUDEMAS_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "HUDEMAS_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "HUDEMAS_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:         stringWithDefault(lookup, "HUDEMAS_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:      stringWithDefault(lookup, "HUDEMAS_FIRESTORE_EMULATOR_HOST", ""),
			OrdersCollection:  stringWithDefault(lookup, "HUDEMAS_FIRESTORE_ORDERS_COLLECTION", defaultOrdersCollection),
			CouponsCollection: stringWithDefault(lookup, "HUDEMAS_FIRESTORE_COUPONS_COLLECTION", defaultCouponsCollection),
		},
		PSP: PSPConfig{
			StripeAPIKey:        stringWithDefault(lookup, "HUDEMAS_PSP_STRIPE_API_KEY", ""),
			StripeWebhookSecret: stringWithDefault(lookup, "HUDEMAS_PSP_STRIPE_WEBHOOK_SECRET", ""),
		},
		Pricing: PricingConfig{
			Currency:             stringWithDefault(lookup, "HUDEMAS_PRICING_CURRENCY", defaultCurrency),
			SeasonalDiscountRate: floatWithDefault(lookup, "HUDEMAS_PRICING_SEASONAL_DISCOUNT_RATE", defaultSeasonalDiscount),
		},
		Supplier: SupplierConfig{
			LegalName:       stringWithDefault(lookup, "HUDEMAS_SUPPLIER_LEGAL_NAME", ""),
			TradeRegisterNo: stringWithDefault(lookup, "HUDEMAS_SUPPLIER_TRADE_REGISTER_NO", ""),
			TaxID:           stringWithDefault(lookup, "HUDEMAS_SUPPLIER_TAX_ID", ""),
			ShareCapital:    stringWithDefault(lookup, "HUDEMAS_SUPPLIER_SHARE_CAPITAL", ""),
			Address:         stringWithDefault(lookup, "HUDEMAS_SUPPLIER_ADDRESS", ""),
			City:            stringWithDefault(lookup, "HUDEMAS_SUPPLIER_CITY", ""),
			County:          stringWithDefault(lookup, "HUDEMAS_SUPPLIER_COUNTY", ""),
			BankName:        stringWithDefault(lookup, "HUDEMAS_SUPPLIER_BANK_NAME", ""),
			IBAN:            stringWithDefault(lookup, "HUDEMAS_SUPPLIER_IBAN", ""),
			Email:           stringWithDefault(lookup, "HUDEMAS_SUPPLIER_EMAIL", ""),
			Phone:           stringWithDefault(lookup, "HUDEMAS_SUPPLIER_PHONE", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:         stringWithDefault(lookup, "HUDEMAS_PUBSUB_PROJECT_ID", ""),
			FiscalEventsTopic: stringWithDefault(lookup, "HUDEMAS_PUBSUB_FISCAL_EVENTS_TOPIC", defaultFiscalEventsTopic),
			EmulatorHost:      stringWithDefault(lookup, "HUDEMAS_PUBSUB_EMULATOR_HOST", ""),
		},
		Checkout: CheckoutConfig{
			SuccessURL: stringWithDefault(lookup, "HUDEMAS_CHECKOUT_SUCCESS_URL", defaultCheckoutSuccessURL),
			CancelURL:  stringWithDefault(lookup, "HUDEMAS_CHECKOUT_CANCEL_URL", defaultCheckoutCancelURL),
		},
	}

	// Firestore and Pub/Sub projects default to the Firebase project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firebase.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Firebase.ProjectID == "" {
		missing = append(missing, "Firebase.ProjectID")
	}
	if cfg.Firestore.ProjectID == "" {
		missing = append(missing, "Firestore.ProjectID")
	}
	if cfg.Firestore.OrdersCollection == "" {
		missing = append(missing, "Firestore.OrdersCollection")
	}
	if cfg.Firestore.CouponsCollection == "" {
		missing = append(missing, "Firestore.CouponsCollection")
	}
	if cfg.Pricing.Currency == "" {
		missing = append(missing, "Pricing.Currency")
	}
	if cfg.Pricing.SeasonalDiscountRate < 0 || cfg.Pricing.SeasonalDiscountRate > 1 {
		missing = append(missing, "Pricing.SeasonalDiscountRate")
	}
	if cfg.Supplier.LegalName == "" {
		missing = append(missing, "Supplier.LegalName")
	}
	if cfg.Supplier.TaxID == "" {
		missing = append(missing, "Supplier.TaxID")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}
