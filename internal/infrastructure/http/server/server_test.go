package server

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/metrics"
)

func TestServer_Metrics(t *testing.T) {
	metrics.GetDefaultMetrics().RecordBatch(1, 0)

	srv := NewServer("account-checker", "0", zerolog.Nop())
	srv.RegisterMetrics()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/metrics")
	srv.Router.Handler(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200", ctx.Response.StatusCode())
	}
	if !strings.Contains(string(ctx.Response.Body()), "account_checker_batches_total") {
		t.Error("metrics output does not contain checker metrics")
	}
}
