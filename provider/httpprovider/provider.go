// Package httpprovider is a concrete, swappable solve.Provider backed by
// an HTTP package feed. It exercises the resilient transport, auth, and
// caching stack for the networking concerns treated as an external
// collaborator (repositories and network fetching are out of the
// aggregation core's scope) — the core never imports this package, only
// its solve.Provider contract.
package httpprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evanlloyd/depwalk/auth"
	"github.com/evanlloyd/depwalk/cache"
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
	"github.com/evanlloyd/depwalk/http"
	"github.com/evanlloyd/depwalk/observability"
	"github.com/evanlloyd/depwalk/resilience"
	"github.com/evanlloyd/depwalk/solve"
)

// feedRecord is the wire shape one package version's metadata takes on
// the feed this provider talks to: enough to reconstruct a graph.Package
// and its declared dependencies.
type feedRecord struct {
	Name     string           `json:"name"`
	Version  string           `json:"version"`
	Requires []feedDependency `json:"requires"`
}

type feedDependency struct {
	Target     string   `json:"target"`
	Constraint string   `json:"constraint"`
	Marker     string   `json:"marker"`
	Groups     []string `json:"groups"`
	Optional   bool     `json:"optional"`
	InExtras   []string `json:"inExtras"`
}

// Provider resolves a project's flat package list over HTTP, fronted by
// a circuit breaker and per-source rate limiter and backed by a
// memory+disk cache so repeated (name, version) lookups within one
// solve don't re-hit the network.
type Provider struct {
	baseURL          string
	client           *http.Client
	authenticator    auth.Authenticator
	cache            *cache.MultiTierCache
	cacheTTL         time.Duration
	log              observability.Logger
	pythonConstraint string
	env              map[string]string
	overrides        map[string]map[string]graph.Dependency
	latestPins       map[string]bool
	debug            bool
}

// Config configures a Provider.
type Config struct {
	BaseURL              string
	Authenticator        auth.Authenticator
	Logger               observability.Logger
	PythonConstraint     string
	CacheTTL             time.Duration
	CacheRootDir         string
	CircuitBreakerConfig *resilience.CircuitBreakerConfig
	RateLimiterConfig    *resilience.TokenBucketConfig
}

// New builds a Provider against a feed at cfg.BaseURL, wiring the
// resilient HTTP client (circuit breaker + rate limiter), the supplied
// authenticator, and a memory+disk cache for metadata lookups.
func New(cfg Config) (*Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = observability.NewNullLogger()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	httpCfg := http.DefaultConfig()
	httpCfg.Logger = cfg.Logger
	httpCfg.CircuitBreakerConfig = cfg.CircuitBreakerConfig
	httpCfg.RateLimiterConfig = cfg.RateLimiterConfig
	client := http.NewClient(httpCfg)

	l1 := cache.NewMemoryCache(1024, 64<<20)
	rootDir := cfg.CacheRootDir
	if rootDir == "" {
		rootDir = ".depwalk-cache"
	}
	l2, err := cache.NewDiskCache(rootDir, 256<<20)
	if err != nil {
		return nil, fmt.Errorf("httpprovider: open disk cache: %w", err)
	}

	return &Provider{
		baseURL:          cfg.BaseURL,
		client:           client,
		authenticator:    cfg.Authenticator,
		cache:            cache.NewMultiTierCache(l1, l2),
		cacheTTL:         cfg.CacheTTL,
		log:              cfg.Logger,
		pythonConstraint: cfg.PythonConstraint,
		latestPins:       map[string]bool{},
	}, nil
}

// SetOverrides implements solve.Provider.
func (p *Provider) SetOverrides(overrides map[string]map[string]graph.Dependency) {
	p.overrides = overrides
}

// Overrides implements solve.Provider.
func (p *Provider) Overrides() map[string]map[string]graph.Dependency { return p.overrides }

// UseLatestFor implements solve.Provider.
func (p *Provider) UseLatestFor(names []string) {
	for _, n := range names {
		p.latestPins[n] = true
	}
}

// UseEnvironment implements solve.Provider.
func (p *Provider) UseEnvironment(env map[string]string) { p.env = env }

// IsDebugging implements solve.Provider.
func (p *Provider) IsDebugging() bool { return p.debug }

// Debug implements solve.Provider.
func (p *Provider) Debug(format string, args ...any) {
	if p.debug {
		p.log.Debug(format, args...)
	}
}

// PythonConstraint implements solve.Provider.
func (p *Provider) PythonConstraint() string { return p.pythonConstraint }

// Solver implements solve.Provider by returning the Provider itself:
// fetchPackage below is the only version-resolution logic this example
// needs, since the feed already returns a fully resolved version per
// name rather than a range to search.
func (p *Provider) Solver() solve.VersionSolver { return p }

// ResolveVersions implements solve.VersionSolver by walking root's
// declared dependencies breadth-first over the feed, fetching and
// caching each package's metadata exactly once.
func (p *Provider) ResolveVersions(ctx context.Context, root *graph.Package) ([]*graph.Package, error) {
	seen := map[string]*graph.Package{}
	queue := append([]graph.Dependency(nil), root.AllRequires()...)

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]

		if _, ok := seen[dep.TargetName]; ok {
			continue
		}

		pkg, err := p.fetchPackage(ctx, dep.TargetName)
		if err != nil {
			return nil, &solve.ErrSolverProblem{Package: dep.TargetName, Cause: err}
		}
		seen[dep.TargetName] = pkg
		queue = append(queue, pkg.AllRequires()...)
	}

	flat := make([]*graph.Package, 0, len(seen))
	for _, pkg := range seen {
		flat = append(flat, pkg)
	}
	return flat, nil
}

// fetchPackage resolves one package's metadata, checking the multi-tier
// cache before issuing an HTTP request.
func (p *Provider) fetchPackage(ctx context.Context, name string) (pkg *graph.Package, err error) {
	url := fmt.Sprintf("%s/v1/packages/%s", p.baseURL, name)
	ctx, span := observability.StartMetadataFetchSpan(ctx, name, url)
	defer func() { observability.EndSpanWithError(span, err) }()

	cacheKey := "pkg:" + name
	cacheCtx, cacheSpan := observability.StartCacheLookupSpan(ctx, cacheKey)
	data, hit, cacheErr := p.cache.Get(cacheCtx, url, cacheKey, p.cacheTTL)
	observability.RecordCacheHit(cacheCtx, cacheErr == nil && hit)
	cacheSpan.End()
	if cacheErr == nil && hit {
		return decodeFeedRecord(data)
	}

	req, err := newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	if p.authenticator != nil {
		if err := p.authenticator.Authenticate(req); err != nil {
			return nil, fmt.Errorf("httpprovider: authenticate %s: %w", name, err)
		}
	}

	resp, err := p.client.DoWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("httpprovider: fetch %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("httpprovider: fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	var rec feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("httpprovider: decode %s: %w", name, err)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	_ = p.cache.Set(ctx, url, cacheKey, bytes.NewReader(body), p.cacheTTL, nil)

	return feedRecordToPackage(rec)
}

func feedRecordToPackage(rec feedRecord) (*graph.Package, error) {
	reqs := make([]graph.Dependency, 0, len(rec.Requires))
	for _, d := range rec.Requires {
		m, err := markers.Parse(d.Marker)
		if err != nil {
			return nil, fmt.Errorf("httpprovider: parse marker for %s: %w", d.Target, err)
		}
		reqs = append(reqs, graph.Dependency{
			TargetName: d.Target,
			Constraint: d.Constraint,
			Marker:     m,
			Groups:     d.Groups,
			Optional:   d.Optional,
			InExtras:   d.InExtras,
		})
	}
	return &graph.Package{
		ID:       graph.PackageID{Name: rec.Name, Version: rec.Version},
		Requires: reqs,
	}, nil
}

func decodeFeedRecord(data []byte) (*graph.Package, error) {
	var rec feedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return feedRecordToPackage(rec)
}
