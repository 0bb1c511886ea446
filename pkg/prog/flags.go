package prog

import (
	"flag"
	"fmt"
	"strconv"

	"src.rook.sh/pkg/env"
)

// FlagSet wraps a [flag.FlagSet]. Flags shared by several subprograms are
// registered through its methods, so that they are registered only once.
type FlagSet struct {
	*flag.FlagSet
	session *SessionFlags
	json    *bool
	code    *bool
}

// SessionFlags are the flags that configure an interpreter session.
type SessionFlags struct {
	Seed string
	DB   string
	NoRC bool
}

// Session registers the session flags and returns the struct they are
// parsed into.
func (fs *FlagSet) Session() *SessionFlags {
	if fs.session == nil {
		var sf SessionFlags
		fs.StringVar(&sf.Seed, "seed", "",
			"run deterministically with the given random seed")
		fs.StringVar(&sf.DB, "db", "",
			"path to the history database")
		fs.BoolVar(&sf.NoRC, "norc", false,
			"do not read config.yaml or rc.rook")
		fs.session = &sf
	}
	return fs.session
}

// JSON registers the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"show the output from -buildinfo, -compileonly or -transpile in JSON")
		fs.json = &json
	}
	return fs.json
}

// Code registers the -c flag.
func (fs *FlagSet) Code() *bool {
	if fs.code == nil {
		var code bool
		fs.BoolVar(&code, "c", false,
			"take the first argument as code instead of a file name")
		fs.code = &code
	}
	return fs.code
}

// Settings builds the session settings. Flags take precedence over the
// environment, which takes precedence over the config file.
func (sf *SessionFlags) Settings() (env.Settings, error) {
	configPath := ""
	if !sf.NoRC {
		p, err := env.ConfigPath()
		if err != nil {
			logger.Println("no config file:", err)
		} else {
			configPath = p
		}
	}
	s, err := env.Load(configPath)
	if err != nil {
		return s, err
	}
	if sf.Seed != "" {
		seed, err := strconv.ParseUint(sf.Seed, 10, 64)
		if err != nil {
			return s, BadUsage(fmt.Sprintf("bad value for -seed: %v", err))
		}
		s.Seed, s.Deterministic = seed, true
	}
	if sf.DB != "" {
		s.HistoryDB = sf.DB
	}
	return s, nil
}
