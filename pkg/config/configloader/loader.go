package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

// Defaulter is implemented by configs that seed values before any source is loaded.
type Defaulter interface {
	Defaults() map[string]any
}

// Load builds a T from, in increasing priority: T's defaults, the YAML file,
// the .env file in the working directory and the process environment.
// Environment keys are prefixed with <APPNAME>_ and use "_" as the path delimiter,
// so STOREFRONT_CLIENT_BASEURL sets client.baseurl.
//
// A missing YAML or .env file is not an error; a malformed YAML file is.
func Load[T Validator](appName, configFile string) (T, error) {
	var cfg T
	k := koanf.New(".")
	prefix := strings.ToUpper(appName) + "_"
	keyOf := envKey(prefix)

	if d, ok := any(cfg).(Defaulter); ok {
		if err := k.Load(confmap.Provider(d.Defaults(), "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading defaults: %w", err)
		}
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("error loading YAML config file '%s': %w", configFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARN: cannot read config file '%s': %v", configFile, err)
		}
	}

	if err := loadDotEnv(k, prefix, keyOf); err != nil {
		log.Printf("WARN: %v", err)
	}

	// The process environment has the highest priority.
	if err := k.Load(env.Provider(prefix, ".", keyOf), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps PREFIX_SECTION_KEY to section.key.
func envKey(prefix string) func(string) string {
	lower := strings.ToLower(prefix)
	return func(key string) string {
		key = strings.TrimPrefix(strings.ToLower(key), lower)
		return strings.ReplaceAll(key, "_", ".")
	}
}

// loadDotEnv loads the prefixed variables of ./.env, if the file exists.
func loadDotEnv(k *koanf.Koanf, prefix string, keyOf func(string) string) error {
	vars, err := godotenv.Read(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	values := make(map[string]any, len(vars))
	for key, value := range vars {
		if strings.HasPrefix(strings.ToUpper(key), prefix) {
			values[keyOf(key)] = value
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("error loading .env config: %w", err)
	}
	return nil
}
