package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent(t *testing.T) {
	type rated struct {
		Star int `json:"star"`
	}
	ev, err := NewEvent("product.rated", "p1", "product", "catalog", rated{Star: 4})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.Version)
	assert.WithinDuration(t, time.Now().UTC(), ev.Timestamp, 2*time.Second)

	var got rated
	require.NoError(t, json.Unmarshal(ev.Data, &got))
	assert.Equal(t, 4, got.Star)

	_, err = NewEvent("x", "y", "z", "catalog", make(chan int))
	assert.Error(t, err)
}

func TestEvent_EnvelopeRoundTrip(t *testing.T) {
	ev, err := NewEvent("product.deleted", "p9", "product", "catalog", map[string]string{"slug": "old"})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-1").WithMetadata("actor", "admin@example.com")

	raw, err := ev.Marshal()
	require.NoError(t, err)
	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, ev.EventID, back.EventID)
	assert.Equal(t, "corr-1", back.CorrelationID)
	assert.Equal(t, "admin@example.com", back.Metadata["actor"])
}

func TestProducer_PublishHeadersAndKey(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, logger.Discard())
	ev, _ := NewEvent("product.created", "p1", "product", "catalog", struct{}{})
	ev.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(ctx, "ecommerce.product.created", ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "p1", string(msg.Key))
	assert.Equal(t, "product.created", header(msg, "event_type"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))
	assert.Contains(t, header(msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
	assert.GreaterOrEqual(t, testutil.ToFloat64(ProducerMessagesPublished.WithLabelValues("ecommerce.product.created")), float64(1))
}

func TestProducer_PublishError(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("leader not available")}, nil, logger.Discard())
	ev, _ := NewEvent("product.updated", "p2", "product", "catalog", struct{}{})

	err := p.Publish(context.Background(), "ecommerce.product.updated", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.GreaterOrEqual(t, testutil.ToFloat64(ProducerPublishErrors.WithLabelValues("ecommerce.product.updated")), float64(1))
}

func TestPingBrokers_NoneConfigured(t *testing.T) {
	assert.EqualError(t, PingBrokers(context.Background(), nil), "kafka: no brokers configured")
}
