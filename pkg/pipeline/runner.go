package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshskel/pkg/cache"
	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
	"github.com/matzehuels/meshskel/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state, so one Runner can serve concurrent
// runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects [cache.DefaultKeyer] and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// bundle is the cached form of a run's outputs.
type bundle struct {
	Summary   skelio.Summary `json:"summary"`
	Artifacts []Artifact     `json:"artifacts"`
}

// Execute runs load → build → export, serving the whole result from the
// cache when an identical run was stored before.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	forestKey := r.Keyer.ForestKey(cache.Hash(opts.Input), opts.ForestKeyOpts())
	bundleKey := r.Keyer.ArtifactKey(forestKey, opts.ArtifactKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cached(ctx, bundleKey); ok {
			logger.Info("served from cache", "source", opts.Source, "artifacts", len(res.Artifacts))
			return res, nil
		}
	}

	result := &Result{}

	// Stage 1: Load
	start := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(start)
	result.Stats.Vertices = len(in.Vertices)
	result.Stats.Edges = len(in.Edges)
	logger.Info("loaded skeleton record",
		"source", opts.Source,
		"vertices", len(in.Vertices),
		"edges", len(in.Edges),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	start = time.Now()
	f, err := r.Build(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Forest = f
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Components = f.Len()
	result.Summary = skelio.Summarize(f)
	logger.Info("built forest",
		"components", f.Len(),
		"duration", result.Stats.BuildTime)
	for _, c := range result.Summary.Components {
		if len(c.Unreachable) > 0 {
			logger.Warn("end points unreachable from root", "component", c.Index, "count", len(c.Unreachable))
		}
	}

	// Stage 3: Export
	start = time.Now()
	artifacts, err := r.Export(ctx, f, result.Summary, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(start)
	logger.Info("exported artifacts",
		"formats", opts.Formats,
		"artifacts", len(artifacts),
		"duration", result.Stats.ExportTime)

	r.store(ctx, bundleKey, bundle{Summary: result.Summary, Artifacts: artifacts}, opts.TTL)
	return result, nil
}

// Load decodes the input record and applies the root override.
func (r *Runner) Load(ctx context.Context, opts Options) (*skelio.Input, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()

	in, err := skelio.ReadJSON(bytes.NewReader(opts.Input), skelio.ReadOptions{UseSmoothVertices: opts.UseSmoothVertices})
	if err == nil && opts.Root != nil {
		if root := *opts.Root; root < 0 || root >= len(in.Vertices) {
			err = errors.New(errors.ErrCodeInvalidRoot, "root %d outside [0, %d)", root, len(in.Vertices))
			in = nil
		} else {
			in.Root, in.HasRoot = root, true
		}
	}

	var nv, ne int
	if in != nil {
		nv, ne = len(in.Vertices), len(in.Edges)
	}
	hooks.OnLoadComplete(ctx, opts.Source, nv, ne, time.Since(start), err)
	return in, err
}

// Build splits the record into components and roots each one.
func (r *Runner) Build(ctx context.Context, in *skelio.Input) (*forest.Forest, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(in.Vertices))
	start := time.Now()

	f, err := in.Forest()
	if err != nil && errors.GetCode(err) == "" {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "build forest")
	}
	n := 0
	if f != nil {
		n = f.Len()
	}
	hooks.OnBuildComplete(ctx, n, time.Since(start), err)
	return f, err
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "bundle")
		return nil, false
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		observability.Cache().OnCacheMiss(ctx, "bundle")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "bundle")
	return &Result{
		Summary:   b.Summary,
		Artifacts: b.Artifacts,
		Stats: Stats{
			Vertices:   b.Summary.Vertices,
			Edges:      b.Summary.Edges,
			Components: len(b.Summary.Components),
		},
		CacheHit: true,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, b bundle, ttl time.Duration) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "bundle", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
