package typegraph

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for traversal and document events.
var (
	SignalDispatchStart    = capitan.NewSignal("typegraph.dispatch.start", "Top-level operation beginning")
	SignalDispatchComplete = capitan.NewSignal("typegraph.dispatch.complete", "Top-level operation finished")
	SignalDocCreated       = capitan.NewSignal("typegraph.doc.created", "Unloaded document placeholder created")
	SignalDocLoaded        = capitan.NewSignal("typegraph.doc.loaded", "Document transitioned to loaded")
)

// Keys for typed event data.
var (
	KeyOperation = capitan.NewStringKey("operation")
	KeyRootKind  = capitan.NewStringKey("root_kind")
	KeyDocType   = capitan.NewStringKey("doc_type")
	KeyDocUID    = capitan.NewStringKey("doc_uid")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

// emitDispatchStart emits an event when a top-level operation begins.
func emitDispatchStart(ctx context.Context, operation string, rootKind Kind) {
	capitan.Emit(ctx, SignalDispatchStart,
		KeyOperation.Field(operation),
		KeyRootKind.Field(string(rootKind)),
	)
}

// emitDispatchComplete emits an event when a top-level operation finishes.
func emitDispatchComplete(ctx context.Context, operation string, rootKind Kind, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyOperation.Field(operation),
		KeyRootKind.Field(string(rootKind)),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDispatchComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalDispatchComplete, fields...)
}

// emitDocCreated emits an event when a DocSet registers a placeholder.
func emitDocCreated(docType, uid string) {
	capitan.Emit(context.Background(), SignalDocCreated,
		KeyDocType.Field(docType),
		KeyDocUID.Field(uid),
	)
}

// emitDocLoaded emits an event when a document becomes loaded.
func emitDocLoaded(docType, uid string) {
	capitan.Emit(context.Background(), SignalDocLoaded,
		KeyDocType.Field(docType),
		KeyDocUID.Field(uid),
	)
}
