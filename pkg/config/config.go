// Package config holds the settings for a modelfix run. They come from
// a TOML file, if there is one, on top of the defaults here. Command
// line flags go on top of that.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is read if no file is named and it exists.
const DefaultFile = "modelfix.toml"

// Config is everything a run can be told.
type Config struct {
	AddMissingAtoms bool   `toml:"add_missing_atoms"`
	PDBIdentifier   string `toml:"pdb_identifier"` // default is the structure file's stem
	Refinement      string `toml:"refinement"`     // none, very_fast, fast, slow, very_slow, slow_large
	Python          string `toml:"python"`         // interpreter with MODELLER installed
	WorkDir         string `toml:"work_dir"`       // "" means a fresh temporary directory
	KeepWorkDir     bool   `toml:"keep_work_dir"`
	CleanWorkDir    bool   `toml:"clean_work_dir"` // empty an existing work_dir first
	WorkTemplate    string `toml:"work_template"`  // copied into a new or cleaned work dir
	OutDir          string `toml:"out_dir"`
	LogFile         string `toml:"log_file"` // stdout, stderr or a file name, "" leaves stderr
	Verbose         bool   `toml:"verbose"`
}

// Default returns the settings used when nothing else is said.
func Default() Config {
	return Config{
		Refinement: "very_fast",
		Python:     "python3",
		OutDir:     ".",
	}
}

// Load reads fname over the defaults. Keys we do not know are an
// error. If fname is "", DefaultFile is used if it is there, and if it
// is not, the defaults come back.
func Load(fname string) (Config, error) {
	cfg := Default()
	if fname == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		fname = DefaultFile
	}
	raw, err := os.ReadFile(fname)
	if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var smerr *toml.StrictMissingError
		if errors.As(err, &smerr) {
			return cfg, fmt.Errorf("%s: %s", fname, smerr.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("%s line %d column %d: %w", fname, row, col, err)
		}
		return cfg, fmt.Errorf("%s: %w", fname, err)
	}
	return cfg, nil
}

// Save writes cfg to fname as TOML.
func Save(cfg Config, fname string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, data, 0644)
}
