package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/nucleus-tools-mcp/internal/analysis"
	"github.com/ironsheep/nucleus-tools-mcp/internal/detection"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
	"github.com/ironsheep/nucleus-tools-mcp/internal/profile"
	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

var (
	errMissingPath  = errors.New("path is required")
	errMissingPaths = errors.New("paths must list at least one image")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "nucleus_detect", "segment_update").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The error data carries the message and a short reason label, so a client
// can tell a rejected segment edit ("next_too_short", "locked", ...) from a
// failure.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	status := toolStatus(err)
	s.metrics.ToolCalls.WithLabelValues(params.Name, status).Inc()

	logger := s.logger.With(slog.String("tool", params.Name), slog.Duration("elapsed", time.Since(start)))

	switch status {
	case "ok":
		logger.Debug("tool call")
	case "rejected":
		logger.Info("edit rejected", slog.String("reason", segment.Reason(err)), slog.Any("error", err))
	default:
		logger.Warn("tool call failed", slog.Any("error", err))
	}

	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolError{
			Error:  err.Error(),
			Reason: segment.Reason(err),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// toolError is the data attached to a failed tool call.
type toolError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func toolStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case segment.IsRejection(err):
		return "rejected"
	default:
		return "error"
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Fetches the session nucleus, analysing the image on first use
//  4. Calls the appropriate analysis or segment function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Nucleus Operations
	case "nucleus_load":
		return s.handleNucleusLoad(args)
	case "nucleus_detect":
		return s.handleNucleusDetect(ctx, args)
	case "nucleus_profile":
		return s.handleNucleusProfile(ctx, args)
	case "nucleus_segments":
		return s.handleNucleusSegments(ctx, args)

	// Segment Edits
	case "segment_update":
		return s.handleSegmentUpdate(ctx, args)
	case "segment_lock":
		return s.handleSegmentLock(ctx, args)
	case "segment_merge":
		return s.handleSegmentMerge(ctx, args)
	case "segment_split":
		return s.handleSegmentSplit(ctx, args)
	case "segment_unmerge":
		return s.handleSegmentUnmerge(ctx, args)
	case "segment_rescale":
		return s.handleSegmentRescale(ctx, args)

	// Population
	case "population_median":
		return s.handlePopulationMedian(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Session ===

// nucleus returns the session nucleus for path, analysing the image on first
// use. Later calls see every edit made to its ring.
func (s *Server) nucleus(ctx context.Context, path string) (*analysis.Nucleus, error) {
	if path == "" {
		return nil, errMissingPath
	}

	s.mu.Lock()
	n, ok := s.nuclei[path]
	s.mu.Unlock()

	if ok {
		return n, nil
	}

	n, err := s.pipeline.Analyze(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.nuclei[path]; ok {
		return existing, nil
	}
	s.nuclei[path] = n

	return n, nil
}

// forget drops the session nucleus for path so the next use re-analyses it.
func (s *Server) forget(path string) {
	s.mu.Lock()
	delete(s.nuclei, path)
	s.mu.Unlock()
}

// editRing applies fn to the session ring for path under the session lock
// and counts the outcome.
func (s *Server) editRing(ctx context.Context, path, op string, fn func(r *segment.Ring) ([]string, error)) (*ringView, error) {
	n, err := s.nucleus(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := fn(n.Ring)
	s.metrics.SegmentEdits.WithLabelValues(op, segment.Reason(err)).Inc()

	if err != nil {
		return nil, err
	}

	view := newRingView(path, n.Ring, n)
	view.Created = created

	return view, nil
}

// resolveSegment accepts a segment id or a name such as "Seg_2".
func resolveSegment(r *segment.Ring, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	if seg, ok := r.SegmentNamed(ref); ok {
		return seg.ID(), nil
	}

	return uuid.Nil, fmt.Errorf("%w: %q", segment.ErrNotFound, ref)
}

// === Views ===

type segmentView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Position     int              `json:"position"`
	Start        int              `json:"start"`
	End          int              `json:"end"`
	Length       int              `json:"length"`
	Locked       bool             `json:"locked"`
	MergeSources []string         `json:"merge_sources,omitempty"`
	StartPoint   *detection.Point `json:"start_point,omitempty"`
}

type ringView struct {
	Path     string        `json:"path"`
	Total    int           `json:"total"`
	Segments []segmentView `json:"segments"`
	Created  []string      `json:"created,omitempty"`
}

// newRingView renders r. When n is given and r indexes n's profile, each
// segment also reports the image coordinate of its start.
func newRingView(path string, r *segment.Ring, n *analysis.Nucleus) *ringView {
	view := &ringView{Path: path, Total: r.Total()}

	for _, seg := range r.Segments() {
		sv := segmentView{
			ID:       seg.ID().String(),
			Name:     seg.Name(),
			Position: seg.Position(),
			Start:    seg.Start(),
			End:      seg.End(),
			Length:   seg.Length(),
			Locked:   seg.IsLocked(),
		}

		for _, src := range seg.MergeSources() {
			sv.MergeSources = append(sv.MergeSources, src.ID().String())
		}

		if n != nil && r.Total() == len(n.Profile) {
			pt := n.BorderPoint(seg.Start())
			sv.StartPoint = &pt
		}

		view.Segments = append(view.Segments, sv)
	}

	return view
}

// === Nucleus Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleNucleusLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errMissingPath
	}
	return imaging.LoadImageInfo(s.pipeline.Cache(), a.Path)
}

type nucleusDetectArgs struct {
	Path      string  `json:"path"`
	Thumbnail bool    `json:"thumbnail"`
	Padding   *int    `json:"padding"`
	Scale     float64 `json:"scale"`
}

type detectResult struct {
	Path string `json:"path"`
	*detection.Nucleus
	Threshold int                 `json:"threshold"`
	Thumbnail *imaging.CropResult `json:"thumbnail,omitempty"`
}

const defaultThumbnailPadding = 8

func (s *Server) handleNucleusDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nucleusDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	padding := defaultThumbnailPadding
	if a.Padding != nil {
		padding = *a.Padding
	}

	n, err := s.nucleus(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	result := &detectResult{Path: a.Path, Nucleus: n.Detection, Threshold: n.Threshold}

	if a.Thumbnail {
		img, err := s.pipeline.Cache().Load(a.Path)
		if err != nil {
			return nil, err
		}

		b := n.Detection.Bounds
		thumb, err := imaging.CropAround(img, image.Rect(b.X1, b.Y1, b.X2, b.Y2), padding, a.Scale)
		if err != nil {
			return nil, err
		}
		result.Thumbnail = thumb
	}

	return result, nil
}

type nucleusProfileArgs struct {
	Path   string `json:"path"`
	Length int    `json:"length"`
}

type profileResult struct {
	Path          string          `json:"path"`
	Landmark      int             `json:"landmark"`
	LandmarkPoint detection.Point `json:"landmark_point"`
	Length        int             `json:"length"`
	Angles        profile.Profile `json:"angles"`
}

func (s *Server) handleNucleusProfile(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nucleusProfileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	n, err := s.nucleus(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	angles := n.Profile
	if a.Length > 0 {
		if angles, err = angles.Interpolate(a.Length); err != nil {
			return nil, err
		}
	}

	return &profileResult{
		Path:          a.Path,
		Landmark:      n.Landmark,
		LandmarkPoint: n.BorderPoint(0),
		Length:        len(angles),
		Angles:        angles,
	}, nil
}

type nucleusSegmentsArgs struct {
	Path  string `json:"path"`
	Reset bool   `json:"reset"`
}

func (s *Server) handleNucleusSegments(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nucleusSegmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reset {
		s.forget(a.Path)
	}

	n, err := s.nucleus(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return newRingView(a.Path, n.Ring, n), nil
}

// === Segment Edit Handlers ===

type segmentUpdateArgs struct {
	Path  string `json:"path"`
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (s *Server) handleSegmentUpdate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentUpdateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	return s.editRing(ctx, a.Path, "update", func(r *segment.Ring) ([]string, error) {
		id, err := resolveSegment(r, a.ID)
		if err != nil {
			return nil, err
		}
		return nil, r.Update(id, a.Start, a.End)
	})
}

type segmentLockArgs struct {
	Path   string `json:"path"`
	ID     string `json:"id"`
	Locked *bool  `json:"locked"`
}

func (s *Server) handleSegmentLock(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentLockArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	locked := true
	if a.Locked != nil {
		locked = *a.Locked
	}

	return s.editRing(ctx, a.Path, "lock", func(r *segment.Ring) ([]string, error) {
		id, err := resolveSegment(r, a.ID)
		if err != nil {
			return nil, err
		}
		return nil, r.SetLocked(id, locked)
	})
}

type segmentMergeArgs struct {
	Path   string `json:"path"`
	First  string `json:"first"`
	Second string `json:"second"`
}

func (s *Server) handleSegmentMerge(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentMergeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	return s.editRing(ctx, a.Path, "merge", func(r *segment.Ring) ([]string, error) {
		first, err := resolveSegment(r, a.First)
		if err != nil {
			return nil, err
		}
		second, err := resolveSegment(r, a.Second)
		if err != nil {
			return nil, err
		}

		merged, err := r.Merge(first, second)
		if err != nil {
			return nil, err
		}
		return []string{merged.String()}, nil
	})
}

type segmentSplitArgs struct {
	Path  string `json:"path"`
	ID    string `json:"id"`
	Index int    `json:"index"`
}

func (s *Server) handleSegmentSplit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentSplitArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	return s.editRing(ctx, a.Path, "split", func(r *segment.Ring) ([]string, error) {
		id, err := resolveSegment(r, a.ID)
		if err != nil {
			return nil, err
		}

		left, right, err := r.Split(id, a.Index)
		if err != nil {
			return nil, err
		}
		return []string{left.String(), right.String()}, nil
	})
}

type segmentIDArgs struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

func (s *Server) handleSegmentUnmerge(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	return s.editRing(ctx, a.Path, "unmerge", func(r *segment.Ring) ([]string, error) {
		id, err := resolveSegment(r, a.ID)
		if err != nil {
			return nil, err
		}

		seg, err := r.Segment(id)
		if err != nil {
			return nil, err
		}

		var restored []string
		for _, src := range seg.MergeSources() {
			restored = append(restored, src.ID().String())
		}

		if err := r.Unmerge(id); err != nil {
			return nil, err
		}
		return restored, nil
	})
}

type segmentRescaleArgs struct {
	Path   string `json:"path"`
	Length int    `json:"length"`
}

func (s *Server) handleSegmentRescale(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentRescaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	n, err := s.nucleus(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scaled, err := n.Ring.Rescale(a.Length)
	s.metrics.Rescales.WithLabelValues(segment.Reason(err)).Inc()
	if err != nil {
		return nil, err
	}

	return newRingView(a.Path, scaled, nil), nil
}

// === Population Handlers ===

type populationArgs struct {
	Paths []string `json:"paths"`
}

type memberView struct {
	Path           string    `json:"path"`
	OriginalLength int       `json:"original_length"`
	Ring           *ringView `json:"ring,omitempty"`
	Error          string    `json:"error,omitempty"`
}

type failureView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type populationResult struct {
	Length             int             `json:"length"`
	Count              int             `json:"count"`
	Median             profile.Profile `json:"median"`
	Q25                profile.Profile `json:"q25"`
	Q75                profile.Profile `json:"q75"`
	SegmentCountsMatch bool            `json:"segment_counts_match"`
	Members            []memberView    `json:"members"`
	Failures           []failureView   `json:"failures,omitempty"`
}

func (s *Server) handlePopulationMedian(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a populationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errMissingPaths
	}

	// Analyse images without a session nucleus in parallel, then reuse the
	// session for the rest so edited rings are honoured.
	var pending []string

	s.mu.Lock()
	for _, p := range a.Paths {
		if _, ok := s.nuclei[p]; !ok {
			pending = append(pending, p)
		}
	}
	s.mu.Unlock()

	results, err := s.pipeline.AnalyzeBatch(ctx, pending, s.workers)
	if err != nil {
		return nil, err
	}

	var failures []failureView

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, failureView{Path: r.Path, Error: r.Err.Error()})
			continue
		}
		if _, ok := s.nuclei[r.Path]; !ok {
			s.nuclei[r.Path] = r.Nucleus
		}
	}

	var nuclei []*analysis.Nucleus
	for _, p := range a.Paths {
		if n, ok := s.nuclei[p]; ok {
			nuclei = append(nuclei, n)
		}
	}

	pop, err := s.pipeline.BuildPopulation(nuclei)
	if err != nil {
		return nil, err
	}

	result := &populationResult{
		Length:             pop.Length,
		Count:              pop.Summary.Count,
		Median:             pop.Summary.Median,
		Q25:                pop.Summary.Q25,
		Q75:                pop.Summary.Q75,
		SegmentCountsMatch: pop.SegmentCountsMatch,
		Failures:           failures,
	}

	for _, m := range pop.Members {
		mv := memberView{Path: m.Path, OriginalLength: m.OriginalLength}
		if m.Err != nil {
			mv.Error = m.Err.Error()
		} else {
			mv.Ring = newRingView(m.Path, m.Ring, nil)
		}
		result.Members = append(result.Members, mv)
	}

	return result, nil
}
