// Copyright 2026 The Docglue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package otel supports OpenTelemetry tracing and metrics for docglue.
// Spans and measurements are no-ops unless the application installs
// tracer and meter providers.
package otel

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"docglue.dev/gluerrors"
)

// Common attribute keys used across docglue.
var (
	MethodKey   = attribute.Key("docglue.method")
	PackageKey  = attribute.Key("docglue.package")
	ProviderKey = attribute.Key("docglue.provider")
	StatusKey   = attribute.Key("docglue.status")
)

// Tracer provides OpenTelemetry tracing for docglue packages.
type Tracer struct {
	Package  string
	Provider string
}

// ProviderName returns the name of the provider associated with the driver value.
// It is intended to be used to set Tracer.Provider.
// It actually returns the package path of the driver's type.
func ProviderName(driver any) string {
	if driver == nil {
		return ""
	}
	t := reflect.TypeOf(driver)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath()
}

// NewTracer creates a new Tracer for a package and optional provider.
func NewTracer(pkg, provider string) *Tracer {
	return &Tracer{Package: pkg, Provider: provider}
}

// Start creates and starts a new span and returns the updated context and span.
func (t *Tracer) Start(ctx context.Context, methodName string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		PackageKey.String(t.Package),
		MethodKey.String(methodName),
	}
	if t.Provider != "" {
		attrs = append(attrs, ProviderKey.String(t.Provider))
	}
	return otel.Tracer(t.Package).Start(ctx, t.Package+"."+methodName, trace.WithAttributes(attrs...))
}

// End completes a span with error information if applicable.
func (t *Tracer) End(span trace.Span, err error) {
	if err != nil {
		code := gluerrors.Code(err)
		span.SetAttributes(StatusKey.String(fmt.Sprint(code)))
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// MetricSet contains the standard metrics recorded by docglue operations.
type MetricSet struct {
	Latency        metric.Float64Histogram
	CompletedCalls metric.Int64Counter
}

// NewMetricSet creates the standard metrics for a docglue package.
// Instrument creation errors are ignored; the affected instrument is nil
// and recording on it is a no-op.
func NewMetricSet(pkg string) *MetricSet {
	meter := otel.GetMeterProvider().Meter(pkg)
	latency, _ := meter.Float64Histogram(
		pkg+".latency",
		metric.WithDescription("Latency of method call in milliseconds"),
		metric.WithUnit("ms"),
	)
	completed, _ := meter.Int64Counter(
		pkg+".completed_calls",
		metric.WithDescription("Count of method calls"),
		metric.WithUnit("{call}"),
	)
	return &MetricSet{Latency: latency, CompletedCalls: completed}
}

// Record records one completed call and its latency.
func (m *MetricSet) Record(ctx context.Context, method, provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		MethodKey.String(method),
		StatusKey.String(fmt.Sprint(gluerrors.Code(err))),
	}
	if provider != "" {
		attrs = append(attrs, ProviderKey.String(provider))
	}
	opt := metric.WithAttributes(attrs...)
	if m.Latency != nil {
		m.Latency.Record(ctx, float64(elapsed.Nanoseconds())/1e6, opt)
	}
	if m.CompletedCalls != nil {
		m.CompletedCalls.Add(ctx, 1, opt)
	}
}
