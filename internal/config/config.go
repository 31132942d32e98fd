// Package config loads apix.toml project files.
//
// The file is found by walking up from the start directory. Paths inside it may
// use the tokens <projectFolder>, <packageName> and <unscopedPackageName>; they
// are expanded after package.json has been read. The APIX_* variables of a .env
// file next to apix.toml, then of the process environment, override a few settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"apix/internal/diag"
)

// FileName is the name of the project file.
const FileName = "apix.toml"

const (
	// EnvLocalBuild forces local-build mode when set to a true value.
	EnvLocalBuild = "APIX_LOCAL_BUILD"
	// EnvReportFolder replaces [apiReport].reportFolder.
	EnvReportFolder = "APIX_REPORT_FOLDER"
)

// Config is a loaded, validated and expanded apix.toml.
type Config struct {
	Project   ProjectConfig  `toml:"project"`
	APIReport ReportConfig   `toml:"apiReport"`
	DtsRollup RollupConfig   `toml:"dtsRollup"`
	DocModel  DocModelConfig `toml:"docModel"`
	Cache     CacheConfig    `toml:"cache"`
	Messages  MessagesConfig `toml:"messages"`

	// Path is the apix.toml file; Root is its folder (<projectFolder>).
	Path string `toml:"-"`
	Root string `toml:"-"`
	// DotEnv holds the variables of the project's .env file. They are kept
	// per project and never written to the process environment.
	DotEnv map[string]string `toml:"-" msgpack:"-"`
	// LocalBuild lets the driver overwrite a changed API report baseline.
	LocalBuild bool `toml:"-"`

	PackageName    string `toml:"-"`
	PackageVersion string `toml:"-"`
}

type ProjectConfig struct {
	// EntryPoint is the declaration file that defines the package's API.
	EntryPoint string `toml:"entryPoint"`
	// PackageJSON defaults to <projectFolder>/package.json.
	PackageJSON string `toml:"packageJson"`
	// Name overrides the name read from package.json.
	Name string `toml:"name"`
}

type ReportConfig struct {
	Enabled          *bool  `toml:"enabled"`
	ReportFileName   string `toml:"reportFileName"`
	ReportFolder     string `toml:"reportFolder"`
	ReportTempFolder string `toml:"reportTempFolder"`
}

// IsEnabled reports whether the API report is produced; it is on unless disabled.
func (r ReportConfig) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

type RollupConfig struct {
	Enabled               bool   `toml:"enabled"`
	UntrimmedFilePath     string `toml:"untrimmedFilePath"`
	AlphaTrimmedFilePath  string `toml:"alphaTrimmedFilePath"`
	BetaTrimmedFilePath   string `toml:"betaTrimmedFilePath"`
	PublicTrimmedFilePath string `toml:"publicTrimmedFilePath"`
}

type DocModelConfig struct {
	Enabled         bool   `toml:"enabled"`
	APIJSONFilePath string `toml:"apiJsonFilePath"`
	// ReleaseTagThreshold is one of "", "alpha", "beta", "public".
	ReleaseTagThreshold string `toml:"releaseTagThreshold"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	// Dir defaults to $XDG_CACHE_HOME/apix.
	Dir string `toml:"dir"`
}

// MessagesConfig holds per-category rule tables; the key "default" sets the
// category fallback.
type MessagesConfig struct {
	Compiler  map[string]MessageRule `toml:"compiler"`
	Extractor map[string]MessageRule `toml:"extractor"`
	TSDoc     map[string]MessageRule `toml:"tsdoc"`
}

type MessageRule struct {
	LogLevel    *diag.LogLevel `toml:"logLevel"`
	AddToReport *bool          `toml:"addToApiReportFile"`
}

// Find walks from startDir up to the filesystem root looking for apix.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads, validates and expands the project file at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project]", abs)
	}
	if !meta.IsDefined("project", "entryPoint") || strings.TrimSpace(cfg.Project.EntryPoint) == "" {
		return nil, fmt.Errorf("%s: missing [project].entryPoint", abs)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", abs, undecoded[0])
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)

	if cfg.DotEnv, err = readDotEnv(cfg.Root); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return &cfg, nil
}

// ForEntryPoint builds a configuration without a project file: the project
// folder is the entry point's nearest folder holding package.json.
func ForEntryPoint(entry string) (*Config, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", entry, err)
	}
	root := filepath.Dir(abs)
	for dir := root; ; {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			root = dir
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cfg := &Config{Root: root, Project: ProjectConfig{EntryPoint: abs}}
	if cfg.DotEnv, err = readDotEnv(root); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readDotEnv parses root/.env; a missing file yields nil.
func readDotEnv(root string) (map[string]string, error) {
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %q: %w", envPath, err)
	}
	vars, err := godotenv.Read(envPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envPath, err)
	}
	return vars, nil
}

// getenv prefers the project's .env over the process environment.
func (c *Config) getenv(key string) string {
	if v, ok := c.DotEnv[key]; ok && v != "" {
		return v
	}
	return os.Getenv(key)
}

func (c *Config) finish() error {
	c.applyDefaults()

	pkgJSON := c.abs(c.expand(c.Project.PackageJSON))
	name, version, err := readPackageJSON(pkgJSON)
	if err != nil {
		return err
	}
	c.PackageName, c.PackageVersion = name, version
	if c.Project.Name != "" {
		c.PackageName = c.Project.Name
	}
	if c.PackageName == "" {
		return fmt.Errorf("no package name: add [project].name or a \"name\" field to %s", pkgJSON)
	}

	if v := c.getenv(EnvLocalBuild); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLocalBuild, err)
		}
		c.LocalBuild = b
	}
	if v := c.getenv(EnvReportFolder); v != "" {
		c.APIReport.ReportFolder = v
	}

	if _, err := c.DocModelThreshold(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	for _, p := range []*string{
		&c.Project.EntryPoint,
		&c.Project.PackageJSON,
		&c.APIReport.ReportFileName,
		&c.APIReport.ReportFolder,
		&c.APIReport.ReportTempFolder,
		&c.DtsRollup.UntrimmedFilePath,
		&c.DtsRollup.AlphaTrimmedFilePath,
		&c.DtsRollup.BetaTrimmedFilePath,
		&c.DtsRollup.PublicTrimmedFilePath,
		&c.DocModel.APIJSONFilePath,
		&c.Cache.Dir,
	} {
		*p = c.expand(*p)
	}
	for _, p := range []*string{
		&c.Project.EntryPoint,
		&c.APIReport.ReportFolder,
		&c.APIReport.ReportTempFolder,
		&c.DtsRollup.UntrimmedFilePath,
		&c.DtsRollup.AlphaTrimmedFilePath,
		&c.DtsRollup.BetaTrimmedFilePath,
		&c.DtsRollup.PublicTrimmedFilePath,
		&c.DocModel.APIJSONFilePath,
		&c.Cache.Dir,
	} {
		*p = c.abs(*p)
	}
	if strings.ContainsAny(c.APIReport.ReportFileName, `/\`) {
		return fmt.Errorf("[apiReport].reportFileName must be a file name, got %q", c.APIReport.ReportFileName)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Project.PackageJSON == "" {
		c.Project.PackageJSON = "<projectFolder>/package.json"
	}
	if c.APIReport.ReportFileName == "" {
		c.APIReport.ReportFileName = "<unscopedPackageName>.api.md"
	}
	if c.APIReport.ReportFolder == "" {
		c.APIReport.ReportFolder = "<projectFolder>/etc/"
	}
	if c.APIReport.ReportTempFolder == "" {
		c.APIReport.ReportTempFolder = "<projectFolder>/temp/"
	}
	if c.DtsRollup.Enabled && c.DtsRollup.UntrimmedFilePath == "" {
		c.DtsRollup.UntrimmedFilePath = "<projectFolder>/dist/<unscopedPackageName>.d.ts"
	}
	if c.DocModel.APIJSONFilePath == "" {
		c.DocModel.APIJSONFilePath = "<projectFolder>/temp/<unscopedPackageName>.api.json"
	}
}

// expand replaces path tokens. PackageName is empty while package.json itself is being located.
func (c *Config) expand(s string) string {
	if s == "" {
		return s
	}
	return strings.NewReplacer(
		"<projectFolder>", c.Root,
		"<packageName>", c.PackageName,
		"<unscopedPackageName>", UnscopedName(c.PackageName),
	).Replace(s)
}

func (c *Config) abs(p string) string {
	if p == "" {
		return p
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// UnscopedName strips an npm scope: "@scope/name" becomes "name".
func UnscopedName(name string) string {
	if strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i >= 0 {
			return name[i+1:]
		}
	}
	return name
}

// ReportPath is the baseline API report; ReportTempPath is where each run writes its report.
func (c *Config) ReportPath() string {
	return filepath.Join(c.APIReport.ReportFolder, c.APIReport.ReportFileName)
}

func (c *Config) ReportTempPath() string {
	return filepath.Join(c.APIReport.ReportTempFolder, c.APIReport.ReportFileName)
}
