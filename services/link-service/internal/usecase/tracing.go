package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vasapolrittideah/linkbridge/services/link-service/internal/usecase"

type tracedLinkUsecase struct {
	next   LinkUsecase
	tracer trace.Tracer
}

// NewTracedLinkUsecase wraps next so every call records a span carrying its outcome.
func NewTracedLinkUsecase(next LinkUsecase) LinkUsecase {
	return &tracedLinkUsecase{next: next, tracer: otel.Tracer(tracerName)}
}

func (u *tracedLinkUsecase) ResolveLink(ctx context.Context, requestingIdentity, submittedCode string) LinkOutcome {
	ctx, span := u.tracer.Start(ctx, "LinkUsecase.ResolveLink",
		trace.WithAttributes(attribute.String("link.identity", requestingIdentity)))
	defer span.End()

	outcome := u.next.ResolveLink(ctx, requestingIdentity, submittedCode)
	span.SetAttributes(attribute.String("link.outcome", string(outcome)))
	return outcome
}

type tracedReconcileUsecase struct {
	next   ReconcileUsecase
	tracer trace.Tracer
}

// NewTracedReconcileUsecase wraps next so every call records a span carrying its outcome.
func NewTracedReconcileUsecase(next ReconcileUsecase) ReconcileUsecase {
	return &tracedReconcileUsecase{next: next, tracer: otel.Tracer(tracerName)}
}

func (u *tracedReconcileUsecase) Reconcile(ctx context.Context, requestingIdentity string) ReconcileOutcome {
	ctx, span := u.tracer.Start(ctx, "ReconcileUsecase.Reconcile",
		trace.WithAttributes(attribute.String("link.identity", requestingIdentity)))
	defer span.End()

	outcome := u.next.Reconcile(ctx, requestingIdentity)
	span.SetAttributes(attribute.String("reconcile.outcome", string(outcome)))
	return outcome
}
