// Package config loads and validates the step's input surface. Inputs arrive
// as INPUT_* environment variables in the pipeline profile (the CI platform's
// convention), with an overlay of ambient AWS variables and fixed defaults in
// the local profile.
package config

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"s3drop/internal/checksum"
)

// Profile selects where configuration values come from.
type Profile string

const (
	ProfileLocal    Profile = "local"
	ProfilePipeline Profile = "pipeline"
)

// ParseProfile validates a profile name supplied via flag or environment.
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileLocal:
		return ProfileLocal, nil
	case ProfilePipeline:
		return ProfilePipeline, nil
	default:
		return "", fmt.Errorf("unknown profile %q (want local or pipeline)", s)
	}
}

// DetectProfile picks the execution profile from the environment: an explicit
// S3DROP_ENV wins, otherwise pipeline when running under the CI runner.
func DetectProfile() Profile {
	if p, err := ParseProfile(os.Getenv("S3DROP_ENV")); err == nil {
		return p
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return ProfilePipeline
	}
	return ProfileLocal
}

const (
	defaultBucketRoot = "artifacts/"

	maxExpireSeconds = 604800 // the storage service's own presign ceiling
	minQRWidth       = 100
	maxQRWidth       = 1000

	destDirAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ12345678"
	destDirLength   = 32
)

// Config is the fully validated configuration for a single invocation.
// Numeric inputs are kept as raw strings through decoding so that
// non-integer values fail validation instead of silently coercing.
type Config struct {
	AccessKeyID     string `mapstructure:"aws-access-key-id"`
	SecretAccessKey string `mapstructure:"aws-secret-access-key"`
	SessionToken    string `mapstructure:"aws-session-token"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	PathStyle       bool   `mapstructure:"path-style"`

	SourcePath         string `mapstructure:"file-path"`
	DestinationDir     string `mapstructure:"destination-dir"`
	BucketRoot         string `mapstructure:"bucket-root"`
	ContentType        string `mapstructure:"content-type"`
	ContentDisposition string `mapstructure:"content-disposition"`
	Public             bool   `mapstructure:"public"`

	ExpireRaw  string `mapstructure:"expire"`
	QR         bool   `mapstructure:"qr"`
	QRWidthRaw string `mapstructure:"qr-width"`

	PublicDomain  string `mapstructure:"public-url-domain"`
	PrivateDomain string `mapstructure:"private-url-domain"`

	Tags                 string `mapstructure:"tags"`
	ChecksumAlgorithmRaw string `mapstructure:"checksum-algorithm"`
	ChecksumValue        string `mapstructure:"checksum-value"`

	OutputFileURL bool `mapstructure:"output-file-url"`
	OutputQRURL   bool `mapstructure:"output-qr-url"`

	// Derived during validation.
	Expire            int                `mapstructure:"-"`
	QRWidth           int                `mapstructure:"-"`
	ChecksumAlgorithm checksum.Algorithm `mapstructure:"-"`
}

// Load reads, validates and normalizes the configuration for the given
// profile. Flags, when provided, take precedence over environment inputs.
func Load(profile Profile, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("INPUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if profile == ProfileLocal {
		bindAmbient(v)
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// setDefaults registers every key so that environment lookups resolve and the
// local profile gets its fixed defaults.
func setDefaults(v *viper.Viper) {
	for key, val := range map[string]any{
		"aws-access-key-id":     "",
		"aws-secret-access-key": "",
		"aws-session-token":     "",
		"region":                "",
		"bucket":                "",
		"endpoint":              "",
		"path-style":            false,
		"file-path":             "",
		"destination-dir":       "",
		"bucket-root":           "",
		"content-type":          "",
		"content-disposition":   "inline",
		"public":                false,
		"expire":                "3600",
		"qr":                    false,
		"qr-width":              "200",
		"public-url-domain":     "",
		"private-url-domain":    "",
		"tags":                  "",
		"checksum-algorithm":    "",
		"checksum-value":        "",
		"output-file-url":       true,
		"output-qr-url":         true,
	} {
		v.SetDefault(key, val)
	}
}

// bindAmbient lets the local profile fall back to the conventional AWS
// variables when no INPUT_* override is present.
func bindAmbient(v *viper.Viper) {
	// BindEnv bypasses the prefix, so the INPUT_ form is listed explicitly
	// to keep its precedence.
	_ = v.BindEnv("aws-access-key-id", "INPUT_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aws-secret-access-key", "INPUT_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("aws-session-token", "INPUT_AWS_SESSION_TOKEN", "AWS_SESSION_TOKEN")
	_ = v.BindEnv("region", "INPUT_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")
	_ = v.BindEnv("bucket", "INPUT_BUCKET", "S3_BUCKET")
}

// finalize runs all validation and normalization. Every check here happens
// before any network call.
func (c *Config) finalize() error {
	if c.SourcePath == "" {
		return fmt.Errorf("file-path is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	expire, err := strconv.Atoi(strings.TrimSpace(c.ExpireRaw))
	if err != nil {
		return fmt.Errorf("expire must be an integer, got %q", c.ExpireRaw)
	}
	if expire < 0 || expire > maxExpireSeconds {
		return fmt.Errorf("expire must be between 0 and %d seconds, got %d", maxExpireSeconds, expire)
	}
	c.Expire = expire

	width, err := strconv.Atoi(strings.TrimSpace(c.QRWidthRaw))
	if err != nil {
		return fmt.Errorf("qr-width must be an integer, got %q", c.QRWidthRaw)
	}
	if width < minQRWidth || width > maxQRWidth {
		return fmt.Errorf("qr-width must be between %d and %d pixels, got %d", minQRWidth, maxQRWidth, width)
	}
	c.QRWidth = width

	algo, err := checksum.ParseAlgorithm(c.ChecksumAlgorithmRaw)
	if err != nil {
		return err
	}
	c.ChecksumAlgorithm = algo
	if algo != checksum.None && c.ChecksumValue != "" {
		c.ChecksumValue = checksum.NormalizeValue(c.ChecksumValue)
	}

	c.BucketRoot = normalizeDirPrefix(c.BucketRoot)
	if c.BucketRoot == "" {
		c.BucketRoot = defaultBucketRoot
	}
	c.DestinationDir = normalizeDirPrefix(c.DestinationDir)
	if c.DestinationDir == "" {
		dir, err := randomDirName()
		if err != nil {
			return err
		}
		c.DestinationDir = dir + "/"
	}
	return nil
}

// ObjectKey is the destination key of the uploaded file.
func (c *Config) ObjectKey() string {
	return c.BucketRoot + c.DestinationDir + path.Base(c.SourcePath)
}

// QRObjectKey is the destination key of the QR companion object. It shares
// the file's prefix, including a randomly generated destination dir.
func (c *Config) QRObjectKey() string {
	return c.BucketRoot + c.DestinationDir + "qr.png"
}

// normalizeDirPrefix strips one leading slash and guarantees exactly one
// trailing slash on non-empty input.
func normalizeDirPrefix(s string) string {
	s = strings.TrimPrefix(s, "/")
	if s != "" && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// randomDirName draws a fresh destination directory name. crypto/rand rather
// than a seeded PRNG: the name can be the only thing guarding a nominally
// private object.
func randomDirName() (string, error) {
	max := big.NewInt(int64(len(destDirAlphabet)))
	buf := make([]byte, destDirLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate destination dir: %w", err)
		}
		buf[i] = destDirAlphabet[n.Int64()]
	}
	return string(buf), nil
}
