// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"log/slog"
)

// maskingHandler masks the message and string attributes of every record
// before handing it to the wrapped handler.
type maskingHandler struct {
	slog.Handler
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, Mask(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(nil, a))
		return true
	})
	return h.Handler.Handle(ctx, masked)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = maskAttr(nil, a)
	}
	return &maskingHandler{Handler: h.Handler.WithAttrs(out)}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{Handler: h.Handler.WithGroup(name)}
}
