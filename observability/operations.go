package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for depwalk operations
	TracerName = "github.com/evanlloyd/depwalk"
)

// Common attribute keys
const (
	AttrPackageID      = attribute.Key("depwalk.package.id")
	AttrPackageVersion = attribute.Key("depwalk.package.version")
	AttrSourceURL      = attribute.Key("depwalk.source.url")
	AttrOperation      = attribute.Key("depwalk.operation")
	AttrCacheHit       = attribute.Key("depwalk.cache.hit")
	AttrRetryCount     = attribute.Key("depwalk.retry.count")
)

// StartDependencyResolutionSpan starts a span covering one root package's
// transitive dependency resolution.
func StartDependencyResolutionSpan(ctx context.Context, packageID string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "dependency.resolve",
		trace.WithAttributes(
			AttrPackageID.String(packageID),
			AttrOperation.String("resolve"),
		),
	)
}

// StartMetadataFetchSpan starts a span for fetching one package's metadata
// from a feed.
func StartMetadataFetchSpan(ctx context.Context, packageID, sourceURL string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "metadata.fetch",
		trace.WithAttributes(
			AttrPackageID.String(packageID),
			AttrSourceURL.String(sourceURL),
		),
	)
}

// StartCacheLookupSpan starts a span for cache lookup
func StartCacheLookupSpan(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "cache.lookup",
		trace.WithAttributes(
			attribute.String("cache.key", cacheKey),
		),
	)
}

// RecordCacheHit records cache hit/miss on the current span
func RecordCacheHit(ctx context.Context, hit bool) {
	SetAttributes(ctx, AttrCacheHit.Bool(hit))
}

// RecordRetry records a retry attempt on the current span
func RecordRetry(ctx context.Context, attempt int, err error) {
	span := SpanFromContext(ctx)
	span.AddEvent("retry",
		trace.WithAttributes(
			attribute.Int("retry.attempt", attempt),
			attribute.String("retry.error", err.Error()),
		),
	)
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
