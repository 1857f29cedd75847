package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName        = "github.com/Antony-QP/React-Ecommerce-Backend/pkg/database"
	maxStatementBytes = 1024
)

var slowQueryCfg struct {
	mu        sync.RWMutex
	threshold time.Duration
	logger    *slog.Logger
}

// SetSlowQueryLogging logs operations slower than threshold as warnings.
// A zero threshold turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueryCfg.mu.Lock()
	defer slowQueryCfg.mu.Unlock()
	slowQueryCfg.threshold = threshold
	slowQueryCfg.logger = logger
}

func slowQuerySettings() (time.Duration, *slog.Logger) {
	slowQueryCfg.mu.RLock()
	defer slowQueryCfg.mu.RUnlock()
	return slowQueryCfg.threshold, slowQueryCfg.logger
}

// TraceQuery opens a client span for one store operation on collection and
// returns the function that ends it:
//
//	ctx, end := database.TraceQuery(ctx, "products", "aggregate", database.Statement(pipeline))
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, collection, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+collection+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.collection.name", collection),
			attribute.String("db.operation.name", operation),
			attribute.String("db.query.text", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		threshold, logger := slowQuerySettings()
		if threshold <= 0 || logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			attrs := []any{
				slog.String("collection", collection),
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.WarnContext(ctx, "slow query detected", attrs...)
		}
	}
}

// Statement renders a filter, update or pipeline as relaxed extended JSON
// for span attributes and logs, truncated to a bounded length.
func Statement(v any) string {
	out, err := bson.MarshalExtJSON(v, false, false)
	if err != nil {
		out, err = bson.MarshalExtJSON(bson.D{{Key: "$", Value: v}}, false, false)
	}
	s := string(out)
	if err != nil {
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > maxStatementBytes {
		s = s[:maxStatementBytes] + "..."
	}
	return s
}
