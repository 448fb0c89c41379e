package mcpserver

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/starknet-mcp/internal/idgen"
	"github.com/mbd888/starknet-mcp/internal/logging"
	"github.com/mbd888/starknet-mcp/internal/metrics"
	"github.com/mbd888/starknet-mcp/internal/traces"
)

// instrument gives every tool call a request id, a span, a log line and
// metrics. A result with IsError set counts as an error outcome.
func (h *Handlers) instrument(name string, fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqID := idgen.ToolCall()
		ctx = logging.WithLogger(logging.WithRequestID(ctx, reqID), h.logger)
		ctx, span := traces.StartSpan(ctx, "mcp.tool/"+name, traces.Tool(name), traces.RequestID(reqID))

		start := time.Now()
		result, err := fn(ctx, req)
		elapsed := time.Since(start)

		outcome := "ok"
		spanErr := err
		if err != nil || (result != nil && result.IsError) {
			outcome = "error"
			if spanErr == nil {
				spanErr = errors.New(toolResultText(result))
			}
		}
		traces.End(span, spanErr)
		metrics.ToolCallsTotal.WithLabelValues(name, outcome).Inc()
		metrics.ToolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		log := logging.L(ctx).With("tool", name, "outcome", outcome, "duration_ms", elapsed.Milliseconds())
		if outcome == "error" {
			log.Warn("tool call failed", "error", spanErr)
		} else {
			log.Info("tool call")
		}
		return result, err
	}
}

func toolResultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return "tool error"
	}
	if tc, ok := r.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return "tool error"
}
