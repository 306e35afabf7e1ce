package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/internal/ratelimiter"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/archive"
	"github.com/marmos91/tulipfs/pkg/store/badger"
	"github.com/marmos91/tulipfs/pkg/store/fs"
	"github.com/marmos91/tulipfs/pkg/store/memory"
	storeS3 "github.com/marmos91/tulipfs/pkg/store/s3"
)

// CreateStore creates a store based on configuration.
//
// This factory function uses the Type field to determine which backend
// to create, then decodes the type-specific section from the corresponding
// map and passes it to the backend's constructor.
//
// Supported types:
//   - "filesystem": pkg/store/fs (local directory)
//   - "memory": pkg/store/memory (ephemeral)
//   - "s3": pkg/store/s3 (Amazon S3 or compatible storage)
//   - "badger": pkg/store/badger (embedded key-value database)
//   - "archive": pkg/store/archive (read-only tar archive)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Store configuration
//
// Returns:
//   - store.Store: Initialized store. Backends holding resources also
//     implement store.Closer.
//   - error: Configuration or initialization error
func CreateStore(ctx context.Context, cfg *StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemStore(ctx, cfg.Filesystem)
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return memory.New(), nil
	case "s3":
		return createS3Store(ctx, cfg.S3)
	case "badger":
		return createBadgerStore(ctx, cfg.Badger)
	case "archive":
		return createArchiveStore(ctx, cfg.Archive)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

// decodeOptions decodes a type-specific section into out. Strings coming
// from environment variables are converted to the target field types.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(options)
}

// createFilesystemStore creates a local disk store.
func createFilesystemStore(ctx context.Context, options map[string]any) (store.Store, error) {
	var storeCfg fs.Config
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem store: path is required")
	}

	s, err := fs.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem store: %w", err)
	}
	return s, nil
}

// createBadgerStore creates a BadgerDB-backed store.
func createBadgerStore(ctx context.Context, options map[string]any) (store.Store, error) {
	var storeCfg badger.Config
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}

	if storeCfg.Path == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger store: path is required")
	}

	s, err := badger.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}
	return s, nil
}

// createArchiveStore opens a tar archive as a read-only store.
func createArchiveStore(ctx context.Context, options map[string]any) (store.Store, error) {
	var storeCfg archive.Config
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode archive store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("archive store: path is required")
	}

	s, err := archive.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive store: %w", err)
	}
	return s, nil
}

// s3Options is the S3 section of a StoreConfig.
type s3Options struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	MaxRetries      int    `mapstructure:"max_retries"`

	// RequestsPerSecond throttles API calls; 0 means unlimited
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
	Burst             uint `mapstructure:"burst"`
}

// createS3Store creates an S3-backed store.
func createS3Store(ctx context.Context, options map[string]any) (store.Store, error) {
	var storeCfg s3Options
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 store: region is required")
	}

	// ========================================================================
	// Step 1: Create S3 client
	// ========================================================================

	client, err := newS3Client(ctx, storeCfg)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 2: Create S3 store
	// ========================================================================

	s, err := storeS3.New(ctx, storeS3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}

	logger.Info("S3 store initialized",
		"bucket", storeCfg.Bucket,
		"region", storeCfg.Region,
		"prefix", storeCfg.KeyPrefix,
		"requests_per_second", storeCfg.RequestsPerSecond)

	return s, nil
}

// newS3Client builds an S3 client from the decoded options.
//
// Static credentials are used when both keys are set, otherwise the default
// AWS credential chain applies. A custom endpoint (MinIO, Localstack) implies
// path-style addressing.
func newS3Client(ctx context.Context, opts s3Options) (*s3.Client, error) {
	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(opts.Region),
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	}, storeS3.WithRateLimit(ratelimiter.New(opts.RequestsPerSecond, opts.Burst)))

	return client, nil
}

// NewGenerator creates the descriptor generator described by cfg.
func NewGenerator(cfg *SidecarConfig, opts ...metadata.GeneratorOption) (*metadata.Generator, error) {
	all := []metadata.GeneratorOption{
		metadata.WithDigests(cfg.Digests...),
		metadata.WithContentTypeDetection(cfg.DetectContentType),
	}
	gen, err := metadata.NewGenerator(append(all, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}
	return gen, nil
}

// NewCodec creates the sidecar codec described by cfg.
func NewCodec(cfg *SidecarConfig) (metadata.Codec, error) {
	codec, err := metadata.NewCodec(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}
	if jc, ok := codec.(metadata.JSONCodec); ok && cfg.Indent != "" {
		jc.Indent = cfg.Indent
		return jc, nil
	}
	return codec, nil
}
