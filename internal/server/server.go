package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/nucleus-tools-mcp/internal/analysis"
	"github.com/ironsheep/nucleus-tools-mcp/internal/config"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
	"github.com/ironsheep/nucleus-tools-mcp/internal/observability"
)

// Server handles MCP protocol communication
type Server struct {
	pipeline *analysis.Pipeline
	logger   *slog.Logger
	metrics  *observability.Metrics
	version  string
	workers  int

	// mu guards nuclei and every ring reachable from it.
	mu     sync.Mutex
	nuclei map[string]*analysis.Nucleus
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Pipeline *analysis.Pipeline
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Version  string

	// Workers bounds the images analysed concurrently by population tools.
	Workers int
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}

	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics(nil)
	}

	if opts.Pipeline == nil {
		opts.Pipeline = analysis.NewPipeline(imaging.NewImageCache(),
			analysis.OptionsFromConfig(config.Default()), opts.Logger, opts.Metrics)
	}

	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Server{
		pipeline: opts.Pipeline,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		version:  opts.Version,
		workers:  max(1, opts.Workers),
		nuclei:   make(map[string]*analysis.Nucleus),
	}
}

// Run serves requests read line by line from in and writes responses to out
// until in is exhausted or ctx is cancelled. The command passes stdin and
// stdout.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", slog.Any("error", err))
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", slog.Any("error", err))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "nucleus-tools-mcp",
				"version": s.version,
			},
		},
	}
}
