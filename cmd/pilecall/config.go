package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/pilecall/internal/caller"
)

// configKind is the value type a config key accepts.
type configKind int

const (
	kindString configKind = iota
	kindBool
	kindInt
	kindProbability
)

// configKeys lists the persistable settings; each mirrors a call flag.
var configKeys = map[string]configKind{
	"probability":    kindProbability,
	"use-quality":    kindBool,
	"sample":         kindString,
	"fai":            kindString,
	"output-format":  kindString,
	"workers":        kindInt,
	"variants-only":  kindBool,
	"skip-malformed": kindBool,
	"db":             kindString,
}

// configKeyNames returns the config keys in sorted order.
func configKeyNames() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func knownKeys() string {
	return strings.Join(configKeyNames(), ", ")
}

// parseConfigValue converts raw to the type expected by key.
func parseConfigValue(key, raw string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		return nil, &usageError{fmt.Errorf("unknown config key %q (known: %s)", key, knownKeys())}
	}

	switch kind {
	case kindBool:
		switch strings.ToLower(raw) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, &usageError{fmt.Errorf("%s expects a boolean, got %q", key, raw)}
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &usageError{fmt.Errorf("%s expects a non-negative integer, got %q", key, raw)}
		}
		return n, nil
	case kindProbability:
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(p > 0 && p < 1) {
			return nil, &usageError{fmt.Errorf("%s: %w, got %q", key, caller.ErrInvalidProbability, raw)}
		}
		return p, nil
	}

	if key == "output-format" && raw != "vcf" && raw != "tab" {
		return nil, &usageError{fmt.Errorf("output-format expects vcf or tab, got %q", raw)}
	}
	return raw, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change default call settings",
		Long: `Persist defaults for the call command in ~/.pilecall.yaml (or --config).

Keys: ` + knownKeys() + `.
Flags and PILECALL_* environment variables override stored values.`,
		Example: `  pilecall config                          # show stored settings
  pilecall config set probability 0.99     # default correctness probability
  pilecall config set output-format tab
  pilecall config get use-quality`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a default call setting",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1], cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a call setting",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0], cmd.OutOrStdout())
		},
	})

	return cmd
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No settings stored. Config file: ~/.pilecall.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// configPath returns the file that "config set" writes to.
func configPath() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		return f, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".pilecall.yaml"), nil
}

func runConfigSet(key, raw string, w io.Writer) error {
	value, err := parseConfigValue(key, raw)
	if err != nil {
		return err
	}
	viper.Set(key, value)

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(w, "%s = %v (%s)\n", key, value, path)
	return nil
}

func runConfigGet(key string, w io.Writer) error {
	if _, ok := configKeys[key]; !ok {
		return &usageError{fmt.Errorf("unknown config key %q (known: %s)", key, knownKeys())}
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("%s is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
