package service

import (
	"context"
	"sync"
	"time"

	"driver-sync/internal/core/logger"
	"driver-sync/internal/core/metrics"
	"driver-sync/internal/features/routes/domain"
	"driver-sync/internal/features/routes/ports"

	"go.uber.org/zap"
)

const mirrorWriteTimeout = 10 * time.Second

type mirrorOp struct {
	kind    string
	routeID string
	doc     domain.MirrorDocument
	fields  map[string]any
}

// MirrorWriter applies mirror writes on one background worker. Callers never
// block and never see an error: a full queue drops the write, a failed write
// is logged. Writes are applied in enqueue order.
type MirrorWriter struct {
	mirror ports.Mirror
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan mirrorOp
	done   chan struct{}
}

// NewMirrorWriter starts the worker. size bounds the pending writes.
func NewMirrorWriter(mirror ports.Mirror, size int) *MirrorWriter {
	if size <= 0 {
		size = 64
	}
	w := &MirrorWriter{
		mirror: mirror,
		log:    logger.Named("mirror"),
		queue:  make(chan mirrorOp, size),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Save implements ports.MirrorQueue.
func (w *MirrorWriter) Save(routeID string, doc domain.MirrorDocument) {
	w.enqueue(mirrorOp{kind: "save", routeID: routeID, doc: doc})
}

// Update implements ports.MirrorQueue.
func (w *MirrorWriter) Update(routeID string, fields map[string]any) {
	w.enqueue(mirrorOp{kind: "update", routeID: routeID, fields: fields})
}

// Delete implements ports.MirrorQueue.
func (w *MirrorWriter) Delete(routeID string) {
	w.enqueue(mirrorOp{kind: "delete", routeID: routeID})
}

func (w *MirrorWriter) enqueue(op mirrorOp) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		metrics.MirrorWrites.WithLabelValues(op.kind, "dropped").Inc()
		w.log.Warn("Mirror closed, dropping write", zap.String("op", op.kind), zap.String("route_id", op.routeID))
		return
	}
	select {
	case w.queue <- op:
	default:
		metrics.MirrorWrites.WithLabelValues(op.kind, "dropped").Inc()
		w.log.Warn("Mirror queue full, dropping write", zap.String("op", op.kind), zap.String("route_id", op.routeID))
	}
}

func (w *MirrorWriter) run() {
	defer close(w.done)
	for op := range w.queue {
		w.apply(op)
	}
}

func (w *MirrorWriter) apply(op mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
	defer cancel()

	var err error
	switch op.kind {
	case "save":
		err = w.mirror.Save(ctx, op.routeID, op.doc)
	case "update":
		err = w.mirror.Update(ctx, op.routeID, op.fields)
	case "delete":
		err = w.mirror.Delete(ctx, op.routeID)
	}
	if err != nil {
		metrics.MirrorWrites.WithLabelValues(op.kind, "error").Inc()
		w.log.Warn("Mirror write failed", zap.String("op", op.kind), zap.String("route_id", op.routeID), zap.Error(err))
		return
	}
	metrics.MirrorWrites.WithLabelValues(op.kind, "ok").Inc()
	w.log.Debug("Mirror write applied", zap.String("op", op.kind), zap.String("route_id", op.routeID))
}

// Close stops accepting writes and waits for the queued ones.
func (w *MirrorWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}
