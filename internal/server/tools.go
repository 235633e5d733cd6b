package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool that works on one image.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the micrograph file",
}

// segmentRefProperty describes a segment reference: its id or its name.
func segmentRefProperty(what string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": what + " (segment id, or name such as \"Seg_0\")",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Nucleus Operations
		{
			Name:        "nucleus_load",
			Description: "Load a micrograph and return its dimensions, format and bit depth. The decoded image is cached for later tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nucleus_detect",
			Description: "Detect the largest nucleus in the image and return its area, bounding box, centroid, border length, perimeter, circularity and maximum Feret diameter. Optionally returns a padded PNG thumbnail of the nucleus.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"thumbnail": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 PNG crop of the nucleus",
						"default":     false,
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the nucleus in the thumbnail",
						"default":     defaultThumbnailPadding,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Thumbnail scale factor (e.g., 2.0 for 2x zoom)",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nucleus_profile",
			Description: "Return the nucleus angle profile: the interior border angle at every border point, in degrees, starting from the landmark (the sharpest tip). 180 is straight, lower is convex, higher is concave.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"length": map[string]interface{}{
						"type":        "integer",
						"description": "Interpolate the profile onto this many points (default: border length)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nucleus_segments",
			Description: "Return the segments of the nucleus profile with their ids, names, boundaries, lengths and locks. Segments are created on first use; set reset to discard edits and segment again.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"reset": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-analyse the image and discard all segment edits",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Segment Edits
		{
			Name:        "segment_update",
			Description: "Move a segment's start and end. Moved boundaries are carried into the neighbouring segments. The edit is rejected, leaving all segments unchanged, if any segment would become too short, boundaries would invert, or a locked segment would move.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"id":   segmentRefProperty("Segment to move"),
					"start": map[string]interface{}{
						"type":        "integer",
						"description": "New start index in the profile",
					},
					"end": map[string]interface{}{
						"type":        "integer",
						"description": "New end index in the profile",
					},
				},
				"required": []string{"path", "id", "start", "end"},
			},
		},
		{
			Name:        "segment_lock",
			Description: "Lock or unlock a segment. A locked segment's boundaries cannot be moved by any edit.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"id":   segmentRefProperty("Segment to lock"),
					"locked": map[string]interface{}{
						"type":        "boolean",
						"description": "true to lock, false to unlock",
						"default":     true,
					},
				},
				"required": []string{"path", "id"},
			},
		},
		{
			Name:        "segment_merge",
			Description: "Merge two adjacent segments into one. The originals are kept as merge sources so the merge can be undone with segment_unmerge.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"first":  segmentRefProperty("First segment"),
					"second": segmentRefProperty("Segment immediately after the first"),
				},
				"required": []string{"path", "first", "second"},
			},
		},
		{
			Name:        "segment_split",
			Description: "Split a segment in two at an index strictly inside it. Both halves must meet the minimum segment length.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"id":   segmentRefProperty("Segment to split"),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Profile index at which the new boundary is placed",
					},
				},
				"required": []string{"path", "id", "index"},
			},
		},
		{
			Name:        "segment_unmerge",
			Description: "Undo a merge, replacing a merged segment with the segments it was made from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"id":   segmentRefProperty("Merged segment"),
				},
				"required": []string{"path", "id"},
			},
		},
		{
			Name:        "segment_rescale",
			Description: "Project the segments onto a profile of a different length, keeping each segment's share of the border. The nucleus' own segments are not changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"length": map[string]interface{}{
						"type":        "integer",
						"description": "Target profile length",
					},
				},
				"required": []string{"path", "length"},
			},
		},

		// Population
		{
			Name:        "population_median",
			Description: "Analyse a set of images, compute the median angle profile with quartiles on the median border length, and rescale every nucleus' segments onto that length. Reports whether all nuclei have the same number of segments.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to the micrograph files",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"paths"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
