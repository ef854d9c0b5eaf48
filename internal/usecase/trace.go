package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
)

var usecaseTracer = otel.Tracer("matchlist/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan starts a child span only under an existing trace, so
// sweeper ticks and CLI calls do not open root spans.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// fixtureAttrs keys a span by the canonical pair, so both argument orders
// land on the same fixture.
func fixtureAttrs(teamA, teamB int64) []attribute.KeyValue {
	pair := matchlist.CanonicalPair(teamA, teamB)
	return []attribute.KeyValue{
		attribute.Int64("matchlist.team_a_id", pair.TeamAID),
		attribute.Int64("matchlist.team_b_id", pair.TeamBID),
	}
}
