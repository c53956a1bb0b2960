// Package config loads the storage kernel's configuration: data directory,
// buffer pool capacity, and the page-id bit partition (spec §6 "Page id
// encoding").
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the kernel's YAML-configurable surface. Page size, the page-id
// bit partition actually used for encoding (pageid.PageBits), slot encoding
// and TID encoding are compile-time constants per spec §3/§6, not runtime
// knobs.
type Config struct {
	Storage struct {
		// DataDir is the directory holding one file per segment (spec §6
		// "Segment files").
		DataDir string `mapstructure:"data_dir"`
		// PoolCapacity is N, the buffer manager's fixed frame count
		// (spec §4.1 "Maintains an in-memory pool of at most N frames").
		PoolCapacity int `mapstructure:"pool_capacity"`
		// PageBits records the low-bit width of the page offset within a
		// page id (spec §3/§6, default 32). It is only read into the
		// config; page ids are always encoded with the compile-time
		// pageid.PageBits, whatever this field holds.
		PageBits uint `mapstructure:"page_bits"`
	} `mapstructure:"storage"`
}

// Default returns the configuration used when no file is supplied:
// a 64-frame pool and the spec's default 32-bit page offset.
func Default() Config {
	var c Config
	c.Storage.PoolCapacity = 64
	c.Storage.PageBits = 32
	return c
}

// Load reads a YAML configuration file at path, same as the teacher's
// viper-backed loader, now covering the storage kernel's own knobs rather
// than a server/storage-mode pair.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
