package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colony-vision-mcp/internal/colony"
	"github.com/ironsheep/colony-vision-mcp/internal/config"
	"github.com/ironsheep/colony-vision-mcp/internal/imaging"
)

// Version is reported in the initialize handshake. main overrides it from
// build flags.
var Version = "0.1.0"

// Server handles MCP protocol communication
type Server struct {
	cfg      *config.Config
	log      zerolog.Logger
	cache    *imaging.ImageCache
	analyzer *colony.Analyzer

	// origins remembers which file and region produced each result so
	// overlays can be redrawn. Pruned to the history's contents.
	mu      sync.Mutex
	origins map[string]resultOrigin
}

// resultOrigin is the input a history entry was computed from.
type resultOrigin struct {
	path   string
	region *imaging.Region
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

// New creates a server with the default configuration and no logging.
func New() *Server {
	return NewWithConfig(config.Default(), zerolog.Nop())
}

// NewWithConfig creates a server from cfg.
func NewWithConfig(cfg *config.Config, log zerolog.Logger) *Server {
	history := colony.NewHistory(cfg.HistorySize)
	analyzer := colony.NewAnalyzer(history,
		colony.WithWorkers(cfg.Workers),
		colony.WithLogger(log.With().Str("component", "analyzer").Logger()),
		colony.WithPreprocess(func(img image.Image, p colony.Params) image.Image {
			return imaging.Preprocess(img, p.Brightness, p.Contrast, p.Sensitivity)
		}),
	)

	return &Server{
		cfg:      cfg,
		log:      log,
		cache:    imaging.NewImageCache(),
		analyzer: analyzer,
		origins:  make(map[string]resultOrigin),
	}
}

// Run serves MCP over stdin/stdout until stdin closes.
func (s *Server) Run() error {
	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w. It returns when r is exhausted or ctx is cancelled between requests.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

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
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
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
	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("request")

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
				"name":    "colony-vision-mcp",
				"version": Version,
			},
		},
	}
}

// handleToolsList returns the tool catalogue.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

// remember records where a result came from and forgets results that have
// fallen out of the history.
func (s *Server) remember(id string, origin resultOrigin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.origins[id] = origin

	live := make(map[string]bool)
	for _, r := range s.analyzer.History().List() {
		live[r.ID] = true
	}
	for k := range s.origins {
		if !live[k] {
			delete(s.origins, k)
		}
	}
}

func (s *Server) origin(id string) (resultOrigin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.origins[id]
	return o, ok
}

func (s *Server) forgetAll() {
	s.mu.Lock()
	s.origins = make(map[string]resultOrigin)
	s.mu.Unlock()
}
