package database

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestTraceQuery_SpanAttributes(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "products", "find", `{"brand":"Apple"}`)
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.products.find", spans[0].Name)

	attrs := map[string]string{}
	for _, a := range spans[0].Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "mongodb", attrs["db.system"])
	assert.Equal(t, "products", attrs["db.collection.name"])
	assert.Equal(t, `{"brand":"Apple"}`, attrs["db.query.text"])
}

func TestTraceQuery_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "products", "aggregate", "[]")
	end(errors.New("cursor killed"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTraceQuery_SlowQueryLogged(t *testing.T) {
	var buf bytes.Buffer
	SetSlowQueryLogging(time.Nanosecond, logger.NewWithWriter("test", "warn", &buf))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "products", "find", "{}")
	time.Sleep(time.Millisecond)
	end(nil)

	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), `"collection":"products"`)
}

func TestStatement(t *testing.T) {
	assert.Equal(t, `{"brand":"Apple"}`, Statement(bson.D{{Key: "brand", Value: "Apple"}}))

	pipeline := bson.A{bson.D{{Key: "$limit", Value: 12}}}
	assert.Contains(t, Statement(pipeline), `"$limit":`)

	long := bson.M{"q": strings.Repeat("x", 2*maxStatementBytes)}
	assert.LessOrEqual(t, len(Statement(long)), maxStatementBytes+3)
}

func TestRetryBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		got := retryBackoff(attempt)
		assert.GreaterOrEqual(t, got, base*3/4)
		assert.LessOrEqual(t, got, base*5/4)
	}
}

func TestPoolStatsCollector(t *testing.T) {
	c := NewPoolStatsCollector("catalog")
	mon := c.Monitor()

	for _, typ := range []string{
		poolConnectionCreated, poolConnectionCreated,
		poolConnectionCheckedOut, poolConnectionCheckedOut, poolConnectionCheckedIn,
		poolCheckOutFailed, poolConnectionClosed,
	} {
		mon.Event(&event.PoolEvent{Type: typ})
	}

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	assert.Equal(t, 6, testutil.CollectAndCount(c))

	assert.Equal(t, int64(1), c.open.Load())
	assert.Equal(t, int64(1), c.inUse.Load())
	assert.Equal(t, uint64(2), c.checkouts.Load())
	assert.Equal(t, uint64(1), c.failures.Load())
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	cfg.DialTimeout = 50 * time.Millisecond
	_, err = NewRedisClient(context.Background(), cfg)
	assert.ErrorContains(t, err, "ping redis")
}
