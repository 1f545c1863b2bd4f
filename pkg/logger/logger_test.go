package logger

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("parses known levels and defaults to info", func() {
		Expect(parseLevel("debug")).To(Equal(slog.LevelDebug))
		Expect(parseLevel("WARN")).To(Equal(slog.LevelWarn))
		Expect(parseLevel("error")).To(Equal(slog.LevelError))
		Expect(parseLevel("verbose")).To(Equal(slog.LevelInfo))
	})

	It("lazily initializes a default logger", func() {
		defaultLogger = nil
		Expect(LoggerWrapper()).NotTo(BeNil())
	})

	It("falls back to the default logger when the context carries none", func() {
		Expect(From(context.Background())).To(Equal(LoggerWrapper()))
	})

	It("stores a derived logger in the context", func() {
		ctx := With(context.Background(), "request_id", "abc")
		Expect(From(ctx)).NotTo(Equal(LoggerWrapper()))
	})
})
