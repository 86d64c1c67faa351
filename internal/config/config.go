// Package config loads CLI settings from flags, environment, .env files and
// an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"

	"inscricoes/internal/types"
)

// EnvPrefix prefixes environment overrides: INSCRICOES_COMPARE_OUTPUT etc.
const EnvPrefix = "INSCRICOES"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	ConfigFile string

	// Column holds the identifier in every table.
	Column string
	// Charset of input files; "auto" detects it.
	Charset string

	Compare   CompareConfig
	Correct   CorrectConfig
	Shapefile ShapefileConfig
	Database  DatabaseConfig

	// Logging configuration
	Verbose   bool
	Quiet     bool
	LogLevel  string
	LogFormat string
	LogOutput string
	// EnvLogLevel is LOG_LEVEL, which ranks below -v and -q.
	EnvLogLevel string
}

// CompareConfig configures the reconciliation pipeline.
type CompareConfig struct {
	Complete         string
	Corrected        string
	Output           string
	Report           string
	NormalizedColumn string
	FlagColumn       string
	Review           bool
	FollowUp         string
}

// CorrectConfig configures the correction pipeline.
type CorrectConfig struct {
	Input     string
	Output    string
	Report    string
	OnInvalid string
	// Delimiter of the input; "" or "auto" sniffs it.
	Delimiter string
}

// ShapefileConfig configures shapefile inputs.
type ShapefileConfig struct {
	Fields  map[string]string
	Charset string
}

// DatabaseConfig configures oracle: inputs.
type DatabaseConfig struct {
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
	Timeout        time.Duration
}

// Defaults reproduce the file names the municipal workflow has always used.
var defaults = map[string]any{
	"column":                    types.IdentifierColumn,
	"charset":                   "auto",
	"compare.complete":          "LauroMullerCompleto.csv",
	"compare.corrected":         "LauroMullerCorrigido.csv",
	"compare.output":            "inscricoes_faltantes.csv",
	"compare.report":            "",
	"compare.normalized_column": "inscricao_normalizada",
	"compare.flag_column":       "esta_no_imoveis",
	"compare.review":            false,
	"compare.follow_up":         "pendencias.txt",
	"correct.input":             "lauroMuller.csv",
	"correct.output":            "LauroMullerCorrigido.csv",
	"correct.report":            "",
	"correct.on_invalid":        "error",
	"correct.delimiter":         "auto",
	"shapefile.charset":         "auto",
	"database.port":             "1521",
	"database.timeout":          10 * time.Second,
	"verbose":                   false,
	"quiet":                     false,
	"log.level":                 "",
	"log.format":                "auto",
	"log.output":                "stderr",
}

// dbEnv keeps the connection variable names the cadastre tooling already
// uses.
var dbEnv = map[string]string{
	"database.host":            "DB_HOST",
	"database.port":            "DB_PORT",
	"database.service":         "DB_SERVICE",
	"database.username":        "DB_USERNAME",
	"database.password":        "DB_PASSWORD",
	"database.wallet_location": "DB_WALLET_LOCATION",
}

// LoadEnvFiles loads .env then .env.local from the working directory.
// Variables already set in the environment are never overridden.
func LoadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// Load builds the configuration from v. Flags must already be bound to v
// under the keys above. configFile, when set, must exist; otherwise
// .inscricoes.yaml is looked up in the working and home directories.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range dbEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".inscricoes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Column:     norm.NFC.String(strings.TrimSpace(v.GetString("column"))),
		Charset:    v.GetString("charset"),
		Compare: CompareConfig{
			Complete:         v.GetString("compare.complete"),
			Corrected:        v.GetString("compare.corrected"),
			Output:           v.GetString("compare.output"),
			Report:           v.GetString("compare.report"),
			NormalizedColumn: v.GetString("compare.normalized_column"),
			FlagColumn:       v.GetString("compare.flag_column"),
			Review:           v.GetBool("compare.review"),
			FollowUp:         v.GetString("compare.follow_up"),
		},
		Correct: CorrectConfig{
			Input:     v.GetString("correct.input"),
			Output:    v.GetString("correct.output"),
			Report:    v.GetString("correct.report"),
			OnInvalid: v.GetString("correct.on_invalid"),
			Delimiter: v.GetString("correct.delimiter"),
		},
		Shapefile: ShapefileConfig{
			Fields:  v.GetStringMapString("shapefile.fields"),
			Charset: v.GetString("shapefile.charset"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("database.host"),
			Port:           v.GetString("database.port"),
			Service:        v.GetString("database.service"),
			Username:       v.GetString("database.username"),
			Password:       v.GetString("database.password"),
			WalletLocation: v.GetString("database.wallet_location"),
			Timeout:        v.GetDuration("database.timeout"),
		},
		Verbose:   v.GetBool("verbose"),
		Quiet:     v.GetBool("quiet"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
	}
	if cfg.Column == "" {
		return nil, fmt.Errorf("configuration: identifier column must not be empty")
	}
	return cfg, nil
}

// ParseDelimiter turns a configured delimiter into a rune. "", "auto"
// select sniffing (0); "tab" and "\t" mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "comma":
		return ',', nil
	case "pipe":
		return '|', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	return r[0], nil
}
