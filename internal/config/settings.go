package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"remapper/internal/artifact"
	"remapper/internal/diagnostic"
	"remapper/internal/logging"
	"remapper/internal/mapping"
	"remapper/internal/plan"
)

// EnvPrefix prefixes every environment variable read into Settings.
const EnvPrefix = "REMAPPER"

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// S3Settings locate a bucket laid out as a Maven repository.
type S3Settings struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	CacheDir  string `mapstructure:"cache_dir"`
}

// Settings configure the process, independent of any one job.
type Settings struct {
	Log logging.Config `mapstructure:"log"`
	// Repositories are local Maven repository roots, searched in order.
	Repositories []string   `mapstructure:"repositories"`
	S3           S3Settings `mapstructure:"s3"`
	// Artifacts are "coordinate=path" overrides, consulted first.
	Artifacts []string `mapstructure:"artifacts"`
	// Inheritance lists extra archives indexed by every procedure.
	Inheritance []string `mapstructure:"inheritance"`
	ScratchDir  string   `mapstructure:"scratch_dir"`
	KeepScratch bool     `mapstructure:"keep_scratch"`
	// RequireInheritance fails runs whose inheritance artifact is missing.
	RequireInheritance bool `mapstructure:"require_inheritance"`
	Parallelism int      `mapstructure:"parallelism"`
	// MappingCache is the number of parsed mapping tables kept in memory.
	MappingCache int `mapstructure:"mapping_cache"`
}

// Loaded is everything read from flags, environment and files.
type Loaded struct {
	Settings Settings
	Options  Options
	// JobsFile names a batch file; when set Options are ignored.
	JobsFile string
}

var bindings = []struct{ key, flag string }{
	{"log.level", "log-level"},
	{"log.format", "log-format"},
	{"log.output", "log-output"},
	{"repositories", "repository"},
	{"s3.endpoint", "s3-endpoint"},
	{"s3.region", "s3-region"},
	{"s3.access_key", "s3-access-key"},
	{"s3.secret_key", "s3-secret-key"},
	{"s3.bucket", "s3-bucket"},
	{"s3.prefix", "s3-prefix"},
	{"s3.use_ssl", "s3-use-ssl"},
	{"s3.cache_dir", "s3-cache-dir"},
	{"artifacts", "artifact"},
	{"inheritance", "inheritance"},
	{"scratch_dir", "scratch-dir"},
	{"keep_scratch", "keep-scratch"},
	{"require_inheritance", "require-inheritance"},
	{"parallelism", "parallelism"},
	{"mapping_cache", "mapping-cache"},
	{"jobs", "jobs"},

	{"skip", "skip"},
	{"kind", "kind"},
	{"version", "version"},
	{"input", "input"},
	{"name", "name"},
	{"classifier", "classifier"},
	{"base_name", "base-name"},
	{"archive_version", "archive-version"},
	{"directory", "directory"},
	{"project", "project"},
}

// RegisterFlags adds every recognized flag to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("env-file", "", "dotenv file loaded before reading the environment (default .env if present)")

	flags.String("log-level", logging.DefaultLevel, "log level: trace, debug, info, warn, error")
	flags.String("log-format", logging.DefaultFormat, "log format: text or json")
	flags.String("log-output", logging.DefaultOutput, "log output: stdout, stderr or a file path")

	flags.StringSlice("repository", nil, "local Maven repository root (repeatable, default ~/.m2/repository)")
	flags.String("s3-endpoint", "", "S3 endpoint of a Maven repository bucket")
	flags.String("s3-region", "", "S3 region")
	flags.String("s3-access-key", "", "S3 access key")
	flags.String("s3-secret-key", "", "S3 secret key")
	flags.String("s3-bucket", "", "S3 bucket")
	flags.String("s3-prefix", "", "S3 key prefix")
	flags.Bool("s3-use-ssl", true, "use TLS for S3")
	flags.String("s3-cache-dir", "", "directory for artifacts downloaded from S3")
	flags.StringArray("artifact", nil, "artifact override as coordinate=path (repeatable)")
	flags.StringSlice("inheritance", nil, "extra archive indexed for inheritance (repeatable)")
	flags.String("scratch-dir", "", "directory for intermediate archives (default system temp)")
	flags.Bool("keep-scratch", false, "keep intermediate archives of a failed remap")
	flags.Bool("require-inheritance", false, "fail when an inheritance artifact cannot be resolved")
	flags.Int("parallelism", 1, "jobs run at once in batch mode")
	flags.Int("mapping-cache", mapping.DefaultCacheSize, "parsed mapping tables kept in memory")
	flags.String("jobs", "", "YAML file listing remap jobs")

	flags.Bool("skip", false, "do nothing")
	flags.String("kind", "", "translation kind, e.g. MOJANG_TO_SPIGOT")
	flags.String("version", "", "server version whose mappings are used, e.g. 1.20.4-R0.1-SNAPSHOT")
	flags.String("input", "", "archive to remap")
	flags.String("name", "", "destination file name")
	flags.String("classifier", "", "destination classifier")
	flags.String("base-name", "", "archive base name used with --classifier")
	flags.String("archive-version", "", "archive version used with --classifier")
	flags.String("directory", "", "destination directory (default: the input's directory)")
	flags.String("project", "", "project name used in messages")
}

// Load reads settings and job options. flags must have been set up with
// RegisterFlags and parsed.
func Load(flags *pflag.FlagSet) (*Loaded, error) {
	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flags.Lookup(b.flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", b.flag, err)
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file %s: %w", diagnostic.ErrConfiguration, path, err)
		}
	}

	l := &Loaded{JobsFile: v.GetString("jobs")}

	if err := v.Unmarshal(&l.Settings); err != nil {
		return nil, fmt.Errorf("%w: %w", diagnostic.ErrConfiguration, err)
	}

	l.Options = Options{
		Skip:           v.GetBool("skip"),
		Version:        v.GetString("version"),
		Input:          v.GetString("input"),
		Name:           v.GetString("name"),
		Classifier:     v.GetString("classifier"),
		BaseName:       v.GetString("base_name"),
		ArchiveVersion: v.GetString("archive_version"),
		Directory:      v.GetString("directory"),
		Project:        v.GetString("project"),
	}

	if kind := v.GetString("kind"); kind != "" {
		k, err := plan.ParseKind(kind)
		if err != nil {
			return nil, err
		}

		l.Options.Kind = k
	}

	return l, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %w", diagnostic.ErrConfiguration, DefaultEnvFile, err)
		}

		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: failed to load env file %s: %w", diagnostic.ErrConfiguration, path, err)
	}

	return nil
}

// Overrides parses Artifacts into a static resolver.
func (s Settings) Overrides() (artifact.Static, error) {
	out := artifact.Static{}

	for _, a := range s.Artifacts {
		coord, path, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("%w: artifact override %q must be coordinate=path", diagnostic.ErrConfiguration, a)
		}

		c, err := artifact.ParseCoordinate(coord)
		if err != nil {
			return nil, err
		}

		out[c.String()] = append(out[c.String()], strings.TrimSpace(path))
	}

	return out, nil
}

// Resolver assembles the artifact resolver: overrides, then local
// repositories, then S3 when an endpoint is set, all behind a memo.
func (s Settings) Resolver() (artifact.Resolver, error) {
	overrides, err := s.Overrides()
	if err != nil {
		return nil, err
	}

	chain := artifact.Chain{overrides}

	roots := s.Repositories
	if len(roots) == 0 {
		root, err := artifact.DefaultLocalRoot()
		if err != nil {
			return nil, err
		}

		roots = []string{root}
	}

	for _, root := range roots {
		chain = append(chain, artifact.LocalRepository{Root: root})
	}

	if s.S3.Endpoint != "" {
		repo, err := artifact.NewS3Repository(artifact.S3Config{
			Endpoint:  s.S3.Endpoint,
			Region:    s.S3.Region,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
			Bucket:    s.S3.Bucket,
			Prefix:    s.S3.Prefix,
			UseSSL:    s.S3.UseSSL,
			CacheDir:  s.S3.CacheDir,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", diagnostic.ErrConfiguration, err)
		}

		chain = append(chain, repo)
	}

	return artifact.NewCached(chain, 0)
}
