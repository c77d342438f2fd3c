package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"bwtui/internal/generate"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config is the session-scoped copy of user preferences. It is always replaced as a
// whole; callers never patch individual fields of a live config.
type Config struct {
	AutoLockHours         float64         `yaml:"auto_lock_hours" json:"autoLockHours"`
	MaxVisibleEntries     int             `yaml:"max_visible_entries" json:"maxVisibleEntries"`
	ClipboardClearSeconds int             `yaml:"clipboard_clear_seconds" json:"clipboardClearSeconds"`
	TOTPWarningSeconds    int             `yaml:"totp_warning_seconds" json:"totpWarningSeconds"`
	Generator             GeneratorConfig `yaml:"generator" json:"generator"`
	Shortcuts             []Shortcut      `yaml:"shortcuts" json:"shortcuts"`
}

type GeneratorConfig struct {
	// Type is "password" or "passphrase".
	Type      string `yaml:"type" json:"type"`
	Length    int    `yaml:"length" json:"length"`
	Uppercase bool   `yaml:"uppercase" json:"uppercase"`
	Lowercase bool   `yaml:"lowercase" json:"lowercase"`
	Numbers   bool   `yaml:"numbers" json:"numbers"`
	Symbols   bool   `yaml:"symbols" json:"symbols"`

	Words         int    `yaml:"words" json:"words"`
	Separator     string `yaml:"separator" json:"separator"`
	Capitalize    bool   `yaml:"capitalize" json:"capitalize"`
	IncludeNumber bool   `yaml:"include_number" json:"includeNumber"`
}

// Shortcut pre-fills the search query when its key is pressed in shortcut mode.
type Shortcut struct {
	Key         string `yaml:"key" json:"key"`
	Search      string `yaml:"search" json:"search"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

const (
	GeneratorPassword   = "password"
	GeneratorPassphrase = "passphrase"
)

func DefaultConfig() Config {
	return Config{
		AutoLockHours:         4,
		MaxVisibleEntries:     30,
		ClipboardClearSeconds: 30,
		TOTPWarningSeconds:    5,
		Generator:             DefaultGeneratorConfig(),
		Shortcuts:             []Shortcut{},
	}
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Type:          GeneratorPassword,
		Length:        20,
		Uppercase:     true,
		Lowercase:     true,
		Numbers:       true,
		Symbols:       false,
		Words:         4,
		Separator:     "-",
		Capitalize:    true,
		IncludeNumber: false,
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests away from the real config dir).
	if v := strings.TrimSpace(os.Getenv("BWTUI_CONFIG_DIR")); v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bwtui"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config at path merged over DefaultConfig.
//
// The returned config is always usable. A missing file is created with defaults; a
// malformed file yields defaults; invalid fields keep their default individually. err
// reports whatever was recovered from so callers can log it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if werr := SaveConfig(path, cfg); werr != nil {
				return cfg, fmt.Errorf("create default config: %w", werr)
			}
			return cfg, nil
		}
		return cfg, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML over the defaults field by field.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(string(b)) == "" {
		return cfg, nil
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	var errs []error
	field := func(key string, dst any, ok func() bool) {
		n, present := raw[key]
		if !present {
			return
		}
		if err := n.Decode(dst); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		if ok != nil && !ok() {
			errs = append(errs, fmt.Errorf("%s: invalid value", key))
		}
	}

	var hours float64
	field("auto_lock_hours", &hours, func() bool { return hours >= 0 })
	if _, ok := raw["auto_lock_hours"]; ok && hours >= 0 && !hasErr(errs, "auto_lock_hours") {
		cfg.AutoLockHours = hours
	}

	var maxVisible int
	field("max_visible_entries", &maxVisible, func() bool { return maxVisible > 0 })
	if _, ok := raw["max_visible_entries"]; ok && !hasErr(errs, "max_visible_entries") {
		cfg.MaxVisibleEntries = maxVisible
	}

	var clearSecs int
	field("clipboard_clear_seconds", &clearSecs, func() bool { return clearSecs >= 0 })
	if _, ok := raw["clipboard_clear_seconds"]; ok && !hasErr(errs, "clipboard_clear_seconds") {
		cfg.ClipboardClearSeconds = clearSecs
	}

	var warnSecs int
	field("totp_warning_seconds", &warnSecs, func() bool { return warnSecs >= 0 && warnSecs < 60 })
	if _, ok := raw["totp_warning_seconds"]; ok && !hasErr(errs, "totp_warning_seconds") {
		cfg.TOTPWarningSeconds = warnSecs
	}

	if n, ok := raw["generator"]; ok {
		gen, gerrs := parseGenerator(&n)
		cfg.Generator = gen
		errs = append(errs, gerrs...)
	}

	if n, ok := raw["shortcuts"]; ok {
		sc, serrs := parseShortcuts(&n)
		cfg.Shortcuts = sc
		errs = append(errs, serrs...)
	}

	return cfg, errors.Join(errs...)
}

func hasErr(errs []error, key string) bool {
	for _, e := range errs {
		if strings.HasPrefix(e.Error(), key+":") {
			return true
		}
	}
	return false
}

func parseGenerator(n *yaml.Node) (GeneratorConfig, []error) {
	gen := DefaultGeneratorConfig()
	var raw map[string]yaml.Node
	if err := n.Decode(&raw); err != nil {
		return gen, []error{fmt.Errorf("generator: %w", err)}
	}
	var errs []error
	decode := func(key string, dst any) bool {
		v, ok := raw[key]
		if !ok {
			return false
		}
		if err := v.Decode(dst); err != nil {
			errs = append(errs, fmt.Errorf("generator.%s: %w", key, err))
			return false
		}
		return true
	}
	invalid := func(key string) {
		errs = append(errs, fmt.Errorf("generator.%s: invalid value", key))
	}

	var typ string
	if decode("type", &typ) {
		switch t := strings.ToLower(strings.TrimSpace(typ)); t {
		case GeneratorPassword, GeneratorPassphrase:
			gen.Type = t
		default:
			invalid("type")
		}
	}
	var length int
	if decode("length", &length) {
		if length >= generate.MinLength && length <= generate.MaxLength {
			gen.Length = length
		} else {
			invalid("length")
		}
	}
	for key, dst := range map[string]*bool{
		"uppercase":      &gen.Uppercase,
		"lowercase":      &gen.Lowercase,
		"numbers":        &gen.Numbers,
		"symbols":        &gen.Symbols,
		"capitalize":     &gen.Capitalize,
		"include_number": &gen.IncludeNumber,
	} {
		var b bool
		if decode(key, &b) {
			*dst = b
		}
	}
	if !gen.Uppercase && !gen.Lowercase && !gen.Numbers && !gen.Symbols {
		invalid("charset")
		d := DefaultGeneratorConfig()
		gen.Uppercase, gen.Lowercase, gen.Numbers, gen.Symbols = d.Uppercase, d.Lowercase, d.Numbers, d.Symbols
	}
	var words int
	if decode("words", &words) {
		if words >= generate.MinWords && words <= generate.MaxWords {
			gen.Words = words
		} else {
			invalid("words")
		}
	}
	var sep string
	if decode("separator", &sep) {
		if utf8.RuneCountInString(sep) <= 1 {
			gen.Separator = sep
		} else {
			invalid("separator")
		}
	}
	return gen, errs
}

func parseShortcuts(n *yaml.Node) ([]Shortcut, []error) {
	var nodes []yaml.Node
	if err := n.Decode(&nodes); err != nil {
		return []Shortcut{}, []error{fmt.Errorf("shortcuts: %w", err)}
	}
	out := []Shortcut{}
	var errs []error
	for i := range nodes {
		var sc Shortcut
		if err := nodes[i].Decode(&sc); err != nil {
			errs = append(errs, fmt.Errorf("shortcuts[%d]: %w", i, err))
			continue
		}
		sc.Key = strings.TrimSpace(sc.Key)
		sc.Search = strings.TrimSpace(sc.Search)
		sc.Description = strings.TrimSpace(sc.Description)
		if utf8.RuneCountInString(sc.Key) != 1 || sc.Search == "" {
			errs = append(errs, fmt.Errorf("shortcuts[%d]: key must be one character and search non-empty", i))
			continue
		}
		out = append(out, sc)
	}
	return out, errs
}

// FindShortcut matches key case-insensitively against the configured shortcuts.
func (c Config) FindShortcut(key string) (Shortcut, bool) {
	for _, sc := range c.Shortcuts {
		if strings.EqualFold(sc.Key, key) {
			return sc, true
		}
	}
	return Shortcut{}, false
}

func SaveConfig(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, configFileName+".*.tmp", path, b, 0o600)
}
