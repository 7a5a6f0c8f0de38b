// ABOUTME: Entry point for the bondstore settings tool
// ABOUTME: Inspects, migrates, and maintains the pairing settings store

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/2389/bondstore/internal/confcache"
	"github.com/2389/bondstore/internal/config"
	"github.com/2389/bondstore/internal/conffile"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                     _     _
| |__   ___  _ __   __| |___| |_ ___  _ __ ___
| '_ \ / _ \| '_ \ / _' / __| __/ _ \| '__/ _ \
| |_) | (_) | | | | (_| \__ \ || (_) | | |  __/
|_.__/ \___/|_| |_|\__,_|___/\__\___/|_|  \___|
`

// getConfigPath returns the path to the bondstore config file.
// Priority: BONDSTORE_CONFIG env var > ./bondstore.yaml > XDG_CONFIG_HOME/bondstore/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BONDSTORE_CONFIG"); envPath != "" {
		return envPath
	}

	if _, err := os.Stat("bondstore.yaml"); err == nil {
		return "bondstore.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bondstore.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bondstore", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bondstore <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  info                  Show a summary of the settings store")
		fmt.Println("  sections              List sections, marking devices and bonds")
		fmt.Println("  dump [section]        Print entries (--show-keys reveals bond material)")
		fmt.Println("  export <file.toml>    Write a snapshot of the store")
		fmt.Println("  import <file.toml>    Merge a snapshot into the store (--replace overwrites)")
		fmt.Println("  diff <file.conf>      Compare the store against another settings file")
		fmt.Println("  gc                    Evict stale unbonded device sections now")
		fmt.Println("  init                  Create a new config file interactively")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo()
	case "sections":
		err = runSections()
	case "dump":
		err = runDump()
	case "export":
		err = runExport()
	case "import":
		err = runImport()
	case "diff":
		err = runDiff()
	case "gc":
		err = runGC()
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file if one exists, falling back to defaults.
func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}
	return config.Load(path)
}

func openCache(cfg *config.Config, logger *slog.Logger) *confcache.Cache {
	return confcache.Open(cfg.Store.Path,
		confcache.WithLogger(logger),
		confcache.WithLegacyPath(cfg.Store.LegacyPath),
		confcache.WithSettlePeriod(cfg.Store.SettlePeriod),
		confcache.WithGCCapacity(cfg.Store.GCCapacity),
	)
}

func runInfo() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cache := openCache(cfg, logger)
	defer cache.Close()

	devices, bonded := 0, 0
	for _, name := range cache.SectionNames() {
		if !confcache.IsDeviceSection(name) {
			continue
		}
		devices++
		if cache.Bonded(name) {
			bonded++
		}
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Store:    %s\n", cache.Path())
	green.Print("    ▶ ")
	fmt.Printf("Sections: %d (%d devices, %d bonded)\n", cache.SectionCount(), devices, bonded)
	if source, ok := cache.GetString(confcache.InfoSection, confcache.FileSourceKey); ok {
		green.Print("    ▶ ")
		fmt.Printf("Source:   %s\n", source)
	}
	if created, ok := cache.GetString(confcache.InfoSection, confcache.TimeCreatedKey); ok {
		green.Print("    ▶ ")
		fmt.Printf("Created:  %s\n", created)
	}
	green.Print("    ▶ ")
	fmt.Printf("Settle:   %s\n", cfg.Store.SettlePeriod)
	green.Print("    ▶ ")
	fmt.Printf("GC cap:   %d\n", cfg.Store.GCCapacity)
	fmt.Println()

	return nil
}

func runSections() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg, setupLogger(cfg.Logging))
	defer cache.Close()

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	for _, name := range cache.SectionNames() {
		switch {
		case confcache.IsDeviceSection(name) && cache.Bonded(name):
			fmt.Printf("%-20s %s\n", name, green.Sprint("[bonded]"))
		case confcache.IsDeviceSection(name):
			fmt.Printf("%-20s %s\n", name, gray.Sprint("[device]"))
		default:
			fmt.Println(name)
		}
	}

	return nil
}

func runDump() error {
	var section string
	showKeys := false
	for _, arg := range os.Args[2:] {
		switch {
		case arg == "--show-keys":
			showKeys = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			if section != "" {
				return fmt.Errorf("unexpected argument: %s", arg)
			}
			section = arg
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg, setupLogger(cfg.Logging))
	defer cache.Close()

	sections := cache.SectionNames()
	if section != "" {
		if !cache.HasSection(section) {
			return fmt.Errorf("no such section: %s", section)
		}
		sections = []string{section}
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	for i, name := range sections {
		if i > 0 {
			fmt.Println()
		}
		cyan.Printf("[%s]\n", name)
		for _, key := range cache.Keys(name) {
			value, ok := cache.GetString(name, key)
			if !ok {
				continue
			}
			if confcache.IsBondKey(key) && !showKeys {
				fmt.Printf("%s = %s\n", key, gray.Sprintf("<redacted, %d bytes>", cache.GetBinaryLength(name, key)))
				continue
			}
			fmt.Printf("%s = %s\n", key, value)
		}
	}

	return nil
}

// exportDoc is the TOML snapshot layout written by export and read by import.
type exportDoc struct {
	ID       string                       `toml:"id"`
	Exported string                       `toml:"exported"`
	Sections map[string]map[string]string `toml:"sections"`
}

func runExport() error {
	var file string
	for _, arg := range os.Args[2:] {
		if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if file != "" {
			return fmt.Errorf("unexpected argument: %s", arg)
		}
		file = arg
	}
	if file == "" {
		return fmt.Errorf("usage: bondstore export <file.toml>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg, setupLogger(cfg.Logging))
	defer cache.Close()

	doc := exportDoc{
		ID:       uuid.New().String(),
		Exported: time.Now().UTC().Format(time.RFC3339),
		Sections: make(map[string]map[string]string),
	}
	for _, name := range cache.SectionNames() {
		entries := make(map[string]string)
		for _, key := range cache.Keys(name) {
			if value, ok := cache.GetString(name, key); ok {
				entries[key] = value
			}
		}
		doc.Sections[name] = entries
	}

	out, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Exported %d sections to %s (id %s)\n", len(doc.Sections), file, doc.ID)
	return nil
}

func runImport() error {
	var file string
	replace := false
	for _, arg := range os.Args[2:] {
		switch {
		case arg == "--replace":
			replace = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			if file != "" {
				return fmt.Errorf("unexpected argument: %s", arg)
			}
			file = arg
		}
	}
	if file == "" {
		return fmt.Errorf("usage: bondstore import <file.toml> [--replace]")
	}

	var doc exportDoc
	if _, err := toml.DecodeFile(file, &doc); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg, setupLogger(cfg.Logging))
	defer cache.Close()

	if replace {
		for _, name := range cache.SectionNames() {
			cache.RemoveSection(name)
		}
	}

	// Apply in sorted order so repeated imports produce identical files.
	names := make([]string, 0, len(doc.Sections))
	for name := range doc.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		keys := make([]string, 0, len(doc.Sections[name]))
		for key := range doc.Sections[name] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			cache.SetString(name, key, doc.Sections[name][key])
		}
	}

	if err := cache.Flush(); err != nil {
		return fmt.Errorf("persisting store: %w", err)
	}

	green := color.New(color.FgGreen)
	if doc.ID != "" {
		green.Printf("  ✓ Imported %d sections from %s (id %s)\n", len(names), file, doc.ID)
	} else {
		green.Printf("  ✓ Imported %d sections from %s\n", len(names), file)
	}
	return nil
}

func runDiff() error {
	var file string
	for _, arg := range os.Args[2:] {
		if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if file != "" {
			return fmt.Errorf("unexpected argument: %s", arg)
		}
		file = arg
	}
	if file == "" {
		return fmt.Errorf("usage: bondstore diff <file.conf>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ours, err := conffile.Load(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("loading settings store: %w", err)
	}
	theirs, err := conffile.Load(file)
	if err != nil {
		return fmt.Errorf("loading comparison file: %w", err)
	}

	var a, b strings.Builder
	if _, err := ours.WriteTo(&a); err != nil {
		return err
	}
	if _, err := theirs.WriteTo(&b); err != nil {
		return err
	}

	if a.String() == b.String() {
		fmt.Println("No differences.")
		return nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(a.String(), b.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				red.Printf("- %s\n", line)
			case diffmatchpatch.DiffInsert:
				green.Printf("+ %s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Printf("  %s\n", line)
			}
		}
	}

	return nil
}

// splitLines splits diff text into lines, dropping the trailing empty
// element a final newline would produce.
func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func runGC() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg, setupLogger(cfg.Logging))
	defer cache.Close()

	evicted, err := cache.GCNow()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	if evicted == 0 {
		fmt.Println("Nothing to evict.")
		return nil
	}
	green.Printf("  ✓ Evicted %d stale device sections\n", evicted)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("bondstore configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Store configuration
	fmt.Println("\n--- Store Configuration ---")
	storePath := prompt(reader, "Settings file path", confcache.DefaultPath)
	legacyPath := prompt(reader, "Legacy XML path", confcache.DefaultLegacyPath)
	settle := prompt(reader, "Settle period", confcache.DefaultSettlePeriod.String())
	gcCap := prompt(reader, "GC capacity", fmt.Sprintf("%d", confcache.DefaultGCCapacity))

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# bondstore configuration\n")
	cfg.WriteString("# Generated by bondstore init\n\n")

	cfg.WriteString("store:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", storePath))
	cfg.WriteString(fmt.Sprintf("  legacy_path: \"%s\"\n", legacyPath))
	cfg.WriteString(fmt.Sprintf("  settle_period: \"%s\"\n", settle))
	cfg.WriteString(fmt.Sprintf("  gc_capacity: %s\n", gcCap))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo inspect the store:")
	fmt.Printf("  bondstore info\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
