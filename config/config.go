package config

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyImportMergePolicy = "import.merge_policy"
	KeyImportDateOrder   = "import.date_order"
	KeyImportHeaderDepth = "import.header_depth"
	KeyStorageDBPath     = "storage.db_path"
	KeyExportFolder      = "export.folder"
	KeyUploadFolder      = "upload.folder"
	KeyWebListen         = "web.listen"
)

type Config struct {
	Import  ImportConfig  `mapstructure:"import"`
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Web     WebConfig     `mapstructure:"web"`
}

type ImportConfig struct {
	// MergePolicy decides how a re-imported (employee, date) pair combines
	// with the stored record: "or" never clears a recorded flag, "replace"
	// is last-write-wins.
	MergePolicy string `mapstructure:"merge_policy" validate:"oneof=or replace"`
	// DateOrder fixes the locale of ambiguous numeric dates per deployment.
	DateOrder   string `mapstructure:"date_order" validate:"oneof=dmy mdy"`
	HeaderDepth int    `mapstructure:"header_depth" validate:"min=0,max=2"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

type ExportConfig struct {
	Folder string `mapstructure:"folder" validate:"required"`
}

type UploadConfig struct {
	Folder string `mapstructure:"folder" validate:"required"`
}

type WebConfig struct {
	Listen string `mapstructure:"listen" validate:"required"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# pointage configuration
import:
  # or: a flag stays set once any import has set it (recommended)
  # replace: the latest import overwrites the stored flags
  merge_policy: "or"
  # dmy reads 03/04/2024 as 3 April; mdy as 4 March
  date_order: "dmy"
  # 0 = detect, 1 = single header row, 2 = date band + status labels
  header_depth: 0

storage:
  db_path: "./pointage.db"

export:
  folder: "./exports"

upload:
  folder: "./uploads"

web:
  listen: "127.0.0.1:8321"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyImportMergePolicy, "or")
	v.SetDefault(KeyImportDateOrder, "dmy")
	v.SetDefault(KeyImportHeaderDepth, 0)
	v.SetDefault(KeyStorageDBPath, "./pointage.db")
	v.SetDefault(KeyExportFolder, "./exports")
	v.SetDefault(KeyUploadFolder, "./uploads")
	v.SetDefault(KeyWebListen, "127.0.0.1:8321")
}
