package tracing

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	otext "github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/sirupsen/logrus"
)

// Tracer contains the tracing-related functions for any component that talks to the database.
//
// Embed the Tracer and initialize it together with the component:
//
//	type Store struct {
//	  tracing.Tracer
//	}
//
//	func NewStore() Store {
//	  return Store{Tracer: tracing.NewTracer("records", "Store")}
//	}
//
// and finish every span with the returned error:
//
//	func (s Store) Foo(ctx context.Context) (err error) {
//	  span, ctx := s.StartSpan(ctx, "Foo")
//	  defer func() {
//	    s.FinishSpan(span, err)
//	  }()
//	  ...
//	}
type Tracer interface {
	StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context)
	FinishSpan(opentracing.Span, error)
}

// NewTracer create a new tracer that tags spans with the package and component name
func NewTracer(pkgName, componentName string) Tracer {
	return &tracer{
		pkgName:       pkgName,
		componentName: componentName,
	}
}

type tracer struct {
	pkgName, componentName string
}

func (t tracer) StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operationName)
	span.SetTag("pkg.name", t.pkgName)
	span.SetTag("pkg.component", t.componentName)
	return span, ctx
}

// FinishSpan logs the error, marks the span as failed and finishes it
func (t tracer) FinishSpan(span opentracing.Span, err error) {
	if err != nil {
		logrus.WithField("package", t.pkgName).WithField("component", t.componentName).Error(err.Error())
	}

	if span == nil {
		return
	}

	TraceError(span, err)
	span.Finish()
}

// TraceError sets the error flag and the error message on the span, this is a noop if the
// err or the span is nil
func TraceError(span opentracing.Span, err error) {
	if err == nil || span == nil {
		return
	}
	otext.Error.Set(span, true)
	span.LogFields(
		otlog.String("error.msg", err.Error()),
	)
}
