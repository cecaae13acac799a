package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from a JSON file; INBOUND_* environment variables override
// file values. Secrets only come from the environment.
type Config struct {
	Port      string `json:"port" env:"INBOUND_PORT" env-default:"8080"`
	LogLevel  string `json:"logLevel" env:"INBOUND_LOG_LEVEL" env-default:"info"`
	LogFormat string `json:"logFormat" env:"INBOUND_LOG_FORMAT" env-default:"console"`

	// Timezone used for timestamps and report date ranges.
	Timezone    string `json:"timezone" env:"INBOUND_TIMEZONE" env-default:"UTC"`
	DefaultUser string `json:"defaultUser" env:"INBOUND_DEFAULT_USER" env-default:"unknown"`

	Store   StoreConfig   `json:"store"`
	Storage StorageConfig `json:"storage"`
	Barcode BarcodeConfig `json:"barcode"`
	Chrome  ChromeConfig  `json:"chrome"`

	// ReceivingFolder is the root that holds Verification_Labels.
	ReceivingFolder string `json:"receivingFolder" env:"INBOUND_RECEIVING_FOLDER" env-default:"Receiving"`
	// ReportsFolder is where reports land when no route matches.
	ReportsFolder string `json:"reportsFolder" env:"INBOUND_REPORTS_FOLDER" env-default:"Reports"`
	// ReportFolders routes "<type>/<frequency>" keys to folders.
	ReportFolders map[string]string `json:"reportFolders" env:"INBOUND_REPORT_FOLDERS"`

	UOMAliasFile string `json:"uomAliasFile" env:"INBOUND_UOM_ALIAS_FILE"`
}

type StoreConfig struct {
	Backend      string `json:"backend" env:"INBOUND_STORE_BACKEND" env-default:"xlsx"`
	WorkbookPath string `json:"workbookPath" env:"INBOUND_WORKBOOK_PATH" env-default:"./inbound.xlsx"`
	SQLitePath   string `json:"sqlitePath" env:"INBOUND_SQLITE_PATH" env-default:"./inbound.db"`
}

type StorageConfig struct {
	Provider  string `json:"provider" env:"INBOUND_STORAGE_PROVIDER" env-default:"local"`
	LocalRoot string `json:"localRoot" env:"INBOUND_STORAGE_LOCAL_ROOT" env-default:"./output"`
	// BaseURL prefixes returned file URLs for the local provider.
	BaseURL string `json:"baseURL" env:"INBOUND_STORAGE_BASE_URL" env-default:"/files"`

	GCSBucket          string `json:"gcsBucket" env:"INBOUND_GCS_BUCKET"`
	GCSCredentialsFile string `json:"-" env:"INBOUND_GCS_CREDENTIALS_FILE"`

	MinIOEndpoint  string `json:"minioEndpoint" env:"INBOUND_MINIO_ENDPOINT"`
	MinIOBucket    string `json:"minioBucket" env:"INBOUND_MINIO_BUCKET"`
	MinIOUseSSL    bool   `json:"minioUseSSL" env:"INBOUND_MINIO_USE_SSL" env-default:"false"`
	MinIOAccessKey string `json:"-" env:"INBOUND_MINIO_ACCESS_KEY"`
	MinIOSecretKey string `json:"-" env:"INBOUND_MINIO_SECRET_KEY"`
}

type BarcodeConfig struct {
	// Provider is "service" (remote image URLs) or "image" (inline PNG).
	Provider   string `json:"provider" env:"INBOUND_BARCODE_PROVIDER" env-default:"image"`
	ServiceURL string `json:"serviceURL" env:"INBOUND_BARCODE_SERVICE_URL" env-default:"https://bwipjs-api.metafloor.com/"`
}

type ChromeConfig struct {
	BinPath        string `json:"binPath" env:"INBOUND_CHROME_BIN"`
	Headless       bool   `json:"headless" env:"INBOUND_CHROME_HEADLESS" env-default:"true"`
	TimeoutSeconds int    `json:"timeoutSeconds" env:"INBOUND_CHROME_TIMEOUT" env-default:"60"`
}

var (
	cfg            Config
	configFilePath = DefaultPath
	mu             sync.RWMutex
)

// DefaultPath is used when no path is given to LoadConfig.
const DefaultPath = "./inbound_config.json"

// LoadConfig reads path (env only when the file does not exist), applies
// defaults and makes the result the current config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	var tempCfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &tempCfg); err != nil {
			return Config{}, fmt.Errorf("LoadConfig: read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&tempCfg); err != nil {
			return Config{}, fmt.Errorf("LoadConfig: read env: %w", err)
		}
	} else {
		return Config{}, fmt.Errorf("LoadConfig: %w", err)
	}

	if err := tempCfg.Validate(); err != nil {
		return Config{}, err
	}

	mu.Lock()
	defer mu.Unlock()
	cfg = tempCfg
	configFilePath = path
	return cfg, nil
}

// SaveConfig validates newCfg, writes it to the loaded path and makes it
// current. Secrets held by the current config are kept.
func SaveConfig(newCfg Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	newCfg.Storage.GCSCredentialsFile = cfg.Storage.GCSCredentialsFile
	newCfg.Storage.MinIOAccessKey = cfg.Storage.MinIOAccessKey
	newCfg.Storage.MinIOSecretKey = cfg.Storage.MinIOSecretKey

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Validate checks the values the services cannot start without.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Backend {
	case "xlsx", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be xlsx or sqlite, got %q", c.Store.Backend))
	}
	switch c.Storage.Provider {
	case "local", "gcs", "minio":
	default:
		problems = append(problems, fmt.Sprintf("storage.provider must be local, gcs or minio, got %q", c.Storage.Provider))
	}
	switch c.Barcode.Provider {
	case "service", "image":
	default:
		problems = append(problems, fmt.Sprintf("barcode.provider must be service or image, got %q", c.Barcode.Provider))
	}
	if strings.TrimSpace(c.ReceivingFolder) == "" {
		problems = append(problems, "receivingFolder is required")
	}
	if strings.TrimSpace(c.ReportsFolder) == "" {
		problems = append(problems, "reportsFolder is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("timezone %q: %v", c.Timezone, err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ChromeTimeout is the PDF render deadline.
func (c Config) ChromeTimeout() time.Duration {
	if c.Chrome.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Chrome.TimeoutSeconds) * time.Second
}
