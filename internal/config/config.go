package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/finboard/warehouse-etl/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every configuration value used by the pipeline. Only this
// struct may be consulted; no package reads env, ini or any other config
// source directly. Threshold orderings are validated at Load so a bad
// configuration fails startup, never a run.
type Config struct {
	AppEnv       string `env:"APP_ENV" default:"dev"`
	AppName      string `env:"APP_NAME" default:"warehouse_etl"`
	AppDebug     bool   `env:"APP_DEBUG" default:"1"`
	PipelineName string `env:"PIPELINE_NAME" default:"financial_etl_pipeline"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	PromNamespace   string `env:"PROM_NAMESPACE" default:"warehouse_etl"`
	PromListenAddr  string `env:"PROM_LISTEN_ADDR" default:":9100"`
	PromMetricsPath string `env:"PROM_METRICS_URI" default:"/metrics"`

	// Calendar derivation zone. Explicit so derived fields never depend on
	// the host's ambient zone.
	PipelineTimezone string `env:"PIPELINE_TIMEZONE" default:"UTC"`

	AmountLowerBound string        `env:"AMOUNT_LOWER_BOUND" default:"0.01"`
	AmountUpperBound string        `env:"AMOUNT_UPPER_BOUND" default:"1000000"`
	MaxRecordAgeDays int           `env:"MAX_RECORD_AGE_DAYS" default:"730"`
	AmountBuckets    string        `env:"AMOUNT_BUCKETS" default:"50,200,500,1000"`
	RiskThresholds   string        `env:"RISK_LEVEL_THRESHOLDS" default:"25,50,75"`
	ValidatorWorkers int           `env:"VALIDATOR_WORKERS" default:"1"`
	LoadTimeout      time.Duration `env:"LOAD_TIMEOUT" default:"30s"`

	QualityMinRows           int     `env:"QUALITY_MIN_ROWS" default:"1"`
	QualityMaxDuplicateRatio float64 `env:"QUALITY_MAX_DUPLICATE_RATIO" default:"0.01"`
	QualityMinPassRatio      float64 `env:"QUALITY_MIN_PASS_RATIO" default:"0.5"`

	LogLevel []string `env:"LOG_LEVEL"`

	// resolved at Load from the raw threshold strings above
	location        *time.Location
	amountMin       decimal.Decimal
	amountMax       decimal.Decimal
	bucketBounds    []decimal.Decimal
	riskLevelBounds []float64
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	if err := c.applyDefaults(); err != nil {
		return err
	}
	if err := c.resolve(); err != nil {
		return err
	}

	config = c
	return nil
}

// applyDefaults fills every field whose env variable is unset from its
// `default` tag. Runs after the environment is unmarshaled so a variable
// published by the env file or the process always wins over the tag.
func (c *Config) applyDefaults() error {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		def := field.Tag.Get(ConfigDefaultTagName)
		if def == "" {
			continue
		}
		name := strings.Split(field.Tag.Get(ConfigTagName), ",")[0]
		if name != "" {
			if _, set := os.LookupEnv(name); set {
				continue
			}
		}

		fv := v.Field(i)
		switch {
		case fv.Kind() == reflect.String:
			fv.SetString(def)
		case fv.Kind() == reflect.Bool:
			b, err := strconv.ParseBool(def)
			if err != nil {
				return errors.Wrap(err, "invalid default for "+field.Name)
			}
			fv.SetBool(b)
		case fv.Type() == reflect.TypeOf(time.Duration(0)):
			d, err := time.ParseDuration(def)
			if err != nil {
				return errors.Wrap(err, "invalid default for "+field.Name)
			}
			fv.SetInt(int64(d))
		case fv.Kind() == reflect.Int:
			n, err := strconv.Atoi(def)
			if err != nil {
				return errors.Wrap(err, "invalid default for "+field.Name)
			}
			fv.SetInt(int64(n))
		case fv.Kind() == reflect.Float64:
			f, err := strconv.ParseFloat(def, 64)
			if err != nil {
				return errors.Wrap(err, "invalid default for "+field.Name)
			}
			fv.SetFloat(f)
		}
	}
	return nil
}

func (c *Config) resolve() error {
	loc, err := time.LoadLocation(c.PipelineTimezone)
	if err != nil {
		return errors.Wrap(err, "invalid PIPELINE_TIMEZONE")
	}
	c.location = loc

	if c.amountMin, err = decimal.NewFromString(c.AmountLowerBound); err != nil {
		return errors.Wrap(err, "invalid AMOUNT_LOWER_BOUND")
	}
	if c.amountMax, err = decimal.NewFromString(c.AmountUpperBound); err != nil {
		return errors.Wrap(err, "invalid AMOUNT_UPPER_BOUND")
	}
	if !c.amountMin.LessThan(c.amountMax) {
		return errors.New("AMOUNT_LOWER_BOUND must be below AMOUNT_UPPER_BOUND")
	}

	c.bucketBounds = nil
	for _, part := range strings.Split(c.AmountBuckets, ",") {
		d, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil {
			return errors.Wrap(err, "invalid AMOUNT_BUCKETS")
		}
		if n := len(c.bucketBounds); n > 0 && !c.bucketBounds[n-1].LessThan(d) {
			return errors.New("AMOUNT_BUCKETS must be strictly increasing")
		}
		c.bucketBounds = append(c.bucketBounds, d)
	}
	if len(c.bucketBounds) != 4 {
		return errors.New("AMOUNT_BUCKETS must define exactly 4 thresholds")
	}

	c.riskLevelBounds = nil
	for _, part := range strings.Split(c.RiskThresholds, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return errors.Wrap(err, "invalid RISK_LEVEL_THRESHOLDS")
		}
		if n := len(c.riskLevelBounds); n > 0 && c.riskLevelBounds[n-1] >= f {
			return errors.New("RISK_LEVEL_THRESHOLDS must be strictly increasing")
		}
		c.riskLevelBounds = append(c.riskLevelBounds, f)
	}
	if len(c.riskLevelBounds) != 3 {
		return errors.New("RISK_LEVEL_THRESHOLDS must define exactly 3 thresholds")
	}
	if c.riskLevelBounds[2] > 100 {
		return errors.New("RISK_LEVEL_THRESHOLDS must stay within the [0,100] score range")
	}

	if c.ValidatorWorkers < 1 {
		c.ValidatorWorkers = 1
	}
	return nil
}

// Location is the fixed reference zone for calendar derivation.
func (c *Config) Location() *time.Location { return c.location }

// AmountMin and AmountMax are the validator's sanity bounds: an amount must
// satisfy min <= amount <= max.
func (c *Config) AmountMin() decimal.Decimal { return c.amountMin }

func (c *Config) AmountMax() decimal.Decimal { return c.amountMax }

// BucketBounds returns the four strictly increasing amount-category
// thresholds: micro < b0 <= small < b1 <= medium < b2 <= large < b3 <= very_large.
func (c *Config) BucketBounds() []decimal.Decimal { return c.bucketBounds }

// RiskLevelBounds returns the three strictly increasing score thresholds
// separating low, medium, high and critical.
func (c *Config) RiskLevelBounds() []float64 { return c.riskLevelBounds }

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the package configuration. Intended for tests.
func Set(c *Config) error {
	if err := c.resolve(); err != nil {
		return err
	}
	config = c
	return nil
}

// Default returns a Config populated with the documented defaults without
// touching the environment.
func Default() *Config {
	c := &Config{
		AppEnv:                   "dev",
		AppName:                  "warehouse_etl",
		PipelineName:             "financial_etl_pipeline",
		PipelineTimezone:         "UTC",
		AmountLowerBound:         "0.01",
		AmountUpperBound:         "1000000",
		MaxRecordAgeDays:         730,
		AmountBuckets:            "50,200,500,1000",
		RiskThresholds:           "25,50,75",
		ValidatorWorkers:         1,
		LoadTimeout:              30 * time.Second,
		QualityMinRows:           1,
		QualityMaxDuplicateRatio: 0.01,
		QualityMinPassRatio:      0.5,
	}
	if err := c.resolve(); err != nil {
		logger.Panic("default config invalid", "error", err)
	}
	return c
}
