package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultTasksKey       = "tasks"
	DefaultThemeKey       = "color-scheme"
	DefaultFilter         = "All tasks"
	DefaultTheme          = "light"

	appDir    = "mytasks"
	envConfig = "MYTASKS_CONFIG"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Delete         string `toml:"delete"`
	Edit           string `toml:"edit"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Filter         string `toml:"filter"`
	DoneFirst      string `toml:"done_first"`
	DoingFirst     string `toml:"doing_first"`
	NotDoneFirst   string `toml:"not_done_first"`
	SortDeadline   string `toml:"sort_deadline"`
	ToggleTheme    string `toml:"toggle_theme"`
	ToggleThemeAlt string `toml:"toggle_theme_alt"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	TasksKey      string `toml:"tasks_key"`
	ThemeKey      string `toml:"theme_key"`
	DefaultFilter string `toml:"default_filter"`
	Theme         string `toml:"theme"`
	LogFile       string `toml:"log_file"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns $MYTASKS_CONFIG if set, otherwise config.toml
// under the user config directory. It falls back to the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDir, DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist. A relative db_path is resolved against the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(filepath.Dir(path), cfg.DBPath)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.TasksKey == "" {
		c.TasksKey = d.TasksKey
	}
	if c.ThemeKey == "" {
		c.ThemeKey = d.ThemeKey
	}
	if c.DefaultFilter == "" {
		c.DefaultFilter = d.DefaultFilter
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	k, dk := &c.Keys, d.Keys
	for _, f := range []struct {
		v   *string
		def string
	}{
		{&k.Quit, dk.Quit},
		{&k.Add, dk.Add},
		{&k.Up, dk.Up},
		{&k.Down, dk.Down},
		{&k.Delete, dk.Delete},
		{&k.Edit, dk.Edit},
		{&k.Confirm, dk.Confirm},
		{&k.Cancel, dk.Cancel},
		{&k.Filter, dk.Filter},
		{&k.DoneFirst, dk.DoneFirst},
		{&k.DoingFirst, dk.DoingFirst},
		{&k.NotDoneFirst, dk.NotDoneFirst},
		{&k.SortDeadline, dk.SortDeadline},
		{&k.ToggleTheme, dk.ToggleTheme},
		{&k.ToggleThemeAlt, dk.ToggleThemeAlt},
	} {
		if *f.v == "" {
			*f.v = f.def
		}
	}
}

func Default() Config {
	return Config{
		DBPath:        DefaultDBName,
		TasksKey:      DefaultTasksKey,
		ThemeKey:      DefaultThemeKey,
		DefaultFilter: DefaultFilter,
		Theme:         DefaultTheme,
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Delete:         "d",
			Edit:           "e",
			Confirm:        "enter",
			Cancel:         "esc",
			Filter:         "f",
			DoneFirst:      "1",
			DoingFirst:     "2",
			NotDoneFirst:   "3",
			SortDeadline:   "s",
			ToggleTheme:    "ctrl+j",
			ToggleThemeAlt: "t",
		},
	}
}
