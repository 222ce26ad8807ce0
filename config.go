package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultConfigFile = "conf/config.json"

type Config struct {
	Unsplash struct {
		AccessKey string        `mapstructure:"access"`
		Endpoint  string        `mapstructure:"endpoint"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"unsplash"`
	Gallery struct {
		Count int    `mapstructure:"count"`
		Query string `mapstructure:"query"`
	} `mapstructure:"gallery"`
	Server struct {
		Listen string `mapstructure:"listen"`
	} `mapstructure:"server"`
	Debug struct {
		PrettyJson bool   `mapstructure:"prettyJson"`
		Verbose    bool   `mapstructure:"verbose"`
		LogFile    string `mapstructure:"logFile"`
	} `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("unsplash.endpoint", DefaultUnsplashEndpoint)
	v.SetDefault("unsplash.timeout", time.Duration(0))
	v.SetDefault("gallery.count", 10)
	v.SetDefault("gallery.query", "nature")
	v.SetDefault("server.listen", ":8081")
	v.SetDefault("debug.prettyJson", false)
}

// loadConfig layers flags (already bound to v), GALLERY_* environment
// variables and the optional JSON config file over the defaults. The access
// key is never compiled in; it must come from one of those sources.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("gallery")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("unsplash.access", "GALLERY_UNSPLASH_ACCESS", "UNSPLASH_ACCESS_KEY"); err != nil {
		return nil, fmt.Errorf("error binding env: %w", err)
	}

	explicit := file != ""
	if !explicit {
		file = defaultConfigFile
	}
	v.SetConfigFile(file)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		switch {
		case errors.As(err, &pathErr) && !explicit:
			// no config file is fine, env and flags are enough
		case errors.As(err, &pathErr):
			return nil, fmt.Errorf("unable to open configuration file: %w", err)
		default:
			return nil, describeConfigError(file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if cfg.Gallery.Count < 1 {
		return nil, fmt.Errorf("gallery.count must be positive, got %d", cfg.Gallery.Count)
	}
	return &cfg, nil
}

// describeConfigError adds the line and column of a JSON syntax error.
func describeConfigError(file string, err error) error {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return fmt.Errorf("unable to decode configuration file: %w", err)
	}
	f, openErr := os.Open(file)
	if openErr != nil {
		return fmt.Errorf("unable to decode configuration file: %w", err)
	}
	defer f.Close()
	pos := findPos(bufio.NewReader(f), int(syntaxErr.Offset))
	return fmt.Errorf("unable to decode configuration file (Line: %d, Pos: %d): %w", pos.line, pos.pos, err)
}

type FilePos struct {
	line int
	pos  int
}

// findPos converts a byte offset into a 1-based line and the offset within
// that line.
func findPos(file *bufio.Reader, offset int) FilePos {
	p := FilePos{line: 1, pos: offset}
	for {
		line, _ := file.ReadBytes('\n')
		if len(line) == 0 || p.pos < len(line) || line[len(line)-1] != '\n' {
			return p
		}
		p.line++
		p.pos -= len(line)
	}
}
