package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/logging"
	"github.com/go-drift/framecore/pkg/tree"
)

// DebugServer serves JSON views of an engine's element tree, render tree
// and frame trace over HTTP.
type DebugServer struct {
	engine *Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer creates a debug server for e. It does not listen until
// [DebugServer.Start] is called; [DebugServer.Handler] can be mounted
// elsewhere instead.
func NewDebugServer(e *Engine) *DebugServer {
	return &DebugServer{engine: e}
}

// RenderTreeNode represents a node in the serialized render tree.
// Uses SafeFloat for dimensions that may contain Inf/NaN from layout issues.
type RenderTreeNode struct {
	Type              string           `json:"type"`
	Element           string           `json:"element,omitempty"`
	Size              SafeSize         `json:"size"`
	Constraints       *SafeConstraints `json:"constraints,omitempty"`
	Offset            SafeOffset       `json:"offset"`
	Depth             int              `json:"depth"`
	NeedsLayout       bool             `json:"needsLayout"`
	NeedsPaint        bool             `json:"needsPaint"`
	Failed            bool             `json:"failed,omitempty"`
	IsRepaintBoundary bool             `json:"isRepaintBoundary"`
	Children          []RenderTreeNode `json:"children,omitempty"`
}

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeSize is a JSON-safe version of graphics.Size.
type SafeSize struct {
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// SafeOffset is a JSON-safe version of graphics.Offset.
type SafeOffset struct {
	X SafeFloat `json:"x"`
	Y SafeFloat `json:"y"`
}

// SafeConstraints is a JSON-safe version of layout.Constraints.
type SafeConstraints struct {
	MinWidth  SafeFloat `json:"minWidth"`
	MaxWidth  SafeFloat `json:"maxWidth"`
	MinHeight SafeFloat `json:"minHeight"`
	MaxHeight SafeFloat `json:"maxHeight"`
}

// WidgetTreeNode represents a node in the serialized element tree.
type WidgetTreeNode struct {
	ID         string           `json:"id"`
	WidgetType string           `json:"widgetType"`
	Kind       string           `json:"kind"`
	Key        any              `json:"key,omitempty"`
	Depth      int              `json:"depth"`
	NeedsBuild bool             `json:"needsBuild"`
	Lifecycle  string           `json:"lifecycle"`
	Children   []WidgetTreeNode `json:"children,omitempty"`
}

// Handler returns the debug endpoints as an http.Handler.
func (s *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/render-tree", s.handleRenderTree)
	mux.HandleFunc("/widget-tree", s.handleWidgetTree)
	mux.HandleFunc("/frames", s.handleFrameTimeline)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/debug", s.handleDebug)
	return mux
}

// Start starts serving on the specified port.
// Returns the actual port (useful when port=0 for ephemeral allocation).
func (s *DebugServer) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		// Already running - return current port
		if s.listener != nil {
			return s.listener.Addr().(*net.TCPAddr).Port, nil
		}
		return port, nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	server := &http.Server{Handler: s.Handler()}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Server failed - clear state so it can be restarted
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			logging.Logger().Error("debug server failed", "error", err)
		}
	}()

	logging.Logger().Info("debug server listening", "port", actualPort)
	return actualPort, nil
}

// Stop gracefully shuts down the server.
func (s *DebugServer) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// handleRenderTree returns the render tree as JSON.
//
// The tree is serialized while holding frameLock so no frame mutates it
// concurrently.
func (s *DebugServer) handleRenderTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	e := s.engine
	e.frameLock.Lock()
	root := e.elements.RootRenderNode()
	if root == nil {
		e.frameLock.Unlock()
		http.Error(w, "no render tree", http.StatusServiceUnavailable)
		return
	}
	node := serializeRenderTree(e.elements, root, 0)
	e.frameLock.Unlock()

	writeJSON(w, node)
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleDebug returns diagnostic info about the engine state.
func (s *DebugServer) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	e := s.engine
	var info struct {
		HasRoot  bool   `json:"hasRoot"`
		RootType string `json:"rootType,omitempty"`
		RootSize string `json:"rootSize,omitempty"`
		Frames   uint64 `json:"frames"`
		Elements int    `json:"elements"`
		Phase    string `json:"phase"`
	}
	e.frameLock.Lock()
	root := e.elements.RootRenderNode()
	info.HasRoot = root != nil
	if root != nil {
		info.RootType = root.Label()
		size := root.Size()
		info.RootSize = fmt.Sprintf("%.2fx%.2f", size.Width, size.Height)
	}
	info.Frames = e.frames
	info.Elements = e.elements.Len()
	info.Phase = e.pipeline.Phase().String()
	e.frameLock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleWidgetTree returns the element tree as JSON.
func (s *DebugServer) handleWidgetTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	e := s.engine
	e.frameLock.Lock()
	rootID := e.elements.Root()
	if rootID == tree.None {
		e.frameLock.Unlock()
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	node := serializeWidgetTree(e.elements, rootID, 0)
	e.frameLock.Unlock()

	writeJSON(w, node)
}

// handleFrameTimeline returns recent frame timing samples as JSON.
func (s *DebugServer) handleFrameTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trace := s.engine.Trace()
	if trace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}

	resp := trace.Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

// handleStats returns the statistics of the last frame.
func (s *DebugServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.engine.LastStats()
	resp := struct {
		Frame   FrameSample `json:"frame"`
		Cache   *cacheJSON  `json:"cache,omitempty"`
		Layers  int         `json:"layers"`
		Skipped int         `json:"compositeSkipped"`
	}{
		Frame:   newFrameSample(time.Now(), stats),
		Layers:  stats.Layers,
		Skipped: stats.Composite.Skipped,
	}
	if s.engine.Cache() != nil {
		resp.Cache = &cacheJSON{
			Len:       stats.Cache.Len,
			Capacity:  stats.Cache.Capacity,
			Hits:      stats.Cache.Hits,
			Misses:    stats.Cache.Misses,
			Evictions: stats.Cache.Evictions,
			HitRate:   SafeFloat(stats.Cache.HitRate()),
		}
	}
	writeJSON(w, resp)
}

type cacheJSON struct {
	Len       int       `json:"len"`
	Capacity  int       `json:"capacity"`
	Hits      uint64    `json:"hits"`
	Misses    uint64    `json:"misses"`
	Evictions uint64    `json:"evictions"`
	HitRate   SafeFloat `json:"hitRate"`
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(FrameSample) bool

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.FrameMs >= v })
	}
	if v := parseFloatQuery(r, "dispatch_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.DispatchMs >= v })
	}
	if v := parseFloatQuery(r, "build_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.BuildMs >= v })
	}
	if v := parseFloatQuery(r, "layout_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.LayoutMs >= v })
	}
	if v := parseFloatQuery(r, "paint_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.PaintMs >= v })
	}
	if value := r.URL.Query().Get("failures"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil && parsed {
			filters = append(filters, func(s FrameSample) bool { return s.Counts.BuildFailures > 0 })
		}
	}

	if len(filters) > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

// serializeWidgetTree recursively converts an element tree to JSON-serializable form.
// The depth parameter limits recursion to prevent stack overflow.
func serializeWidgetTree(elements *core.ElementTree, id tree.ID, depth int) WidgetTreeNode {
	elem, ok := elements.Get(id)
	if !ok {
		return WidgetTreeNode{ID: id.String(), Kind: "<missing>"}
	}

	node := WidgetTreeNode{
		ID:         id.String(),
		Kind:       elem.Kind().String(),
		Depth:      elem.Depth(),
		NeedsBuild: elem.Dirty(),
		Lifecycle:  elem.Lifecycle().String(),
	}
	if widget := elem.Widget(); widget != nil {
		node.WidgetType = reflect.TypeOf(widget).String()
		node.Key = safeKey(widget.Key())
	}

	// Recurse into children (with depth limit)
	if depth < maxTreeDepth {
		for child := range elements.Children(id) {
			node.Children = append(node.Children, serializeWidgetTree(elements, child, depth+1))
		}
	}

	return node
}

// safeKey converts a widget key to a JSON-safe value.
// Non-serializable types (funcs, chans, etc.) are converted to their string representation.
func safeKey(key any) any {
	if key == nil {
		return nil
	}
	switch key.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return key
	default:
		// For complex types, use string representation to avoid JSON errors
		return fmt.Sprintf("%v", key)
	}
}

// serializeRenderTree recursively converts a render tree to JSON-serializable form.
// The depth parameter limits recursion to prevent stack overflow.
func serializeRenderTree(elements *core.ElementTree, n *layout.RenderNode, depth int) RenderTreeNode {
	size := n.Size()
	c := n.Constraints()
	offset := n.Offset()
	node := RenderTreeNode{
		Type: n.Label(),
		Size: SafeSize{
			Width:  SafeFloat(size.Width),
			Height: SafeFloat(size.Height),
		},
		Constraints: &SafeConstraints{
			MinWidth:  SafeFloat(c.MinWidth),
			MaxWidth:  SafeFloat(c.MaxWidth),
			MinHeight: SafeFloat(c.MinHeight),
			MaxHeight: SafeFloat(c.MaxHeight),
		},
		Offset: SafeOffset{
			X: SafeFloat(offset.X),
			Y: SafeFloat(offset.Y),
		},
		Depth:             n.Depth(),
		NeedsLayout:       n.NeedsLayout(),
		NeedsPaint:        n.NeedsPaint(),
		Failed:            n.Failed(),
		IsRepaintBoundary: n.IsRepaintBoundary(),
	}
	if elem, ok := elements.Get(n.ID()); ok {
		node.Element = elem.String()
	}

	// Recurse into children (with depth limit)
	if depth < maxTreeDepth {
		for i := range n.ChildCount() {
			node.Children = append(node.Children, serializeRenderTree(elements, n.ChildAt(i), depth+1))
		}
	}

	return node
}
