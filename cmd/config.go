package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/config"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(ptr func(*config.Config) *string, validate func(string) error) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *ptr(c) },
		set: func(c *config.Config, v string) error {
			if validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*ptr(c) = v
			return nil
		},
		writable: true,
	}
}

func boolAccessor(key string, ptr func(*config.Config) *bool) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *ptr(c) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be true or false", key, v)
			}
			*ptr(c) = b
			return nil
		},
		writable: true,
	}
}

func keywordsAccessor(ptr func(*config.Config) *[]string) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *ptr(c) },
		set: func(c *config.Config, v string) error {
			var words []string
			for _, w := range strings.Split(v, ",") {
				if w = strings.TrimSpace(w); w != "" {
					words = append(words, w)
				}
			}
			*ptr(c) = words
			return nil
		},
		writable: true,
	}
}

func durationValidator(key string) func(string) error {
	return func(v string) error {
		if err := config.ValidateDuration(key, v); err != nil {
			return clierr.New(clierr.InvalidInput, err.Error())
		}
		return nil
	}
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"dir": {
			get: func(c *config.Config) any { return c.Dir() },
		},
		"storage.backend": stringAccessor(func(c *config.Config) *string { return &c.Storage.Backend }, nil),
		"storage.path":    stringAccessor(func(c *config.Config) *string { return &c.Storage.Path }, nil),
		"pomodoro.focus": stringAccessor(func(c *config.Config) *string { return &c.Pomodoro.Focus },
			durationValidator("pomodoro.focus")),
		"pomodoro.short_break": stringAccessor(func(c *config.Config) *string { return &c.Pomodoro.ShortBreak },
			durationValidator("pomodoro.short_break")),
		"pomodoro.long_break": stringAccessor(func(c *config.Config) *string { return &c.Pomodoro.LongBreak },
			durationValidator("pomodoro.long_break")),
		"pomodoro.long_break_after": {
			get: func(c *config.Config) any { return c.Pomodoro.LongBreakAfter },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					return clierr.Newf(clierr.InvalidInput,
						"invalid pomodoro.long_break_after %q: must be a non-negative integer", v)
				}
				c.Pomodoro.LongBreakAfter = n
				return nil
			},
			writable: true,
		},
		"pomodoro.auto_start_break": boolAccessor("pomodoro.auto_start_break",
			func(c *config.Config) *bool { return &c.Pomodoro.AutoStartBreak }),
		"pomodoro.auto_start_focus": boolAccessor("pomodoro.auto_start_focus",
			func(c *config.Config) *bool { return &c.Pomodoro.AutoStartFocus }),
		"priority.disabled": boolAccessor("priority.disabled",
			func(c *config.Config) *bool { return &c.Priority.Disabled }),
		"priority.high_keywords":   keywordsAccessor(func(c *config.Config) *[]string { return &c.Priority.HighKeywords }),
		"priority.medium_keywords": keywordsAccessor(func(c *config.Config) *[]string { return &c.Priority.MediumKeywords }),
		"defaults.filter": stringAccessor(func(c *config.Config) *string { return &c.Defaults.Filter },
			func(v string) error {
				_, err := store.ParseFilter(v)
				return err
			}),
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"dir",
		"storage.backend",
		"storage.path",
		"pomodoro.focus",
		"pomodoro.short_break",
		"pomodoro.long_break",
		"pomodoro.long_break_after",
		"pomodoro.auto_start_break",
		"pomodoro.auto_start_focus",
		"priority.disabled",
		"priority.high_keywords",
		"priority.medium_keywords",
		"defaults.filter",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-26s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	val := configAccessors()[key].get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": val})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(val))
	return nil
}

// setConfigValue applies value to key and validates the result.
func setConfigValue(cfg *config.Config, key, value string) error {
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		if len(v) == 0 {
			return "--"
		}
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
