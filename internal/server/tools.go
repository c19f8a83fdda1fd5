package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load a photo and return its dimensions and format. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Vehicle Operations
		{
			Name:        "vehicle_detect",
			Description: "Run the full vehicle pipeline on a photo: decide whether a car is present, read a license plate, and guess make and model. Latitude and longitude, when both given, are attached to the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"latitude": map[string]interface{}{
						"type":        "number",
						"description": "Optional GPS latitude of the photo",
					},
					"longitude": map[string]interface{}{
						"type":        "number",
						"description": "Optional GPS longitude of the photo",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vehicle_features",
			Description: "Extract the coarse features used for make/model identification: grille area, headlight count, body proportions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vehicle_predict",
			Description: "Map feature values to a make and model using the identification table. Never fails.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"body_proportions": map[string]interface{}{
						"type":        "number",
						"description": "Image width divided by height",
					},
					"headlight_count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of detected rectangles",
					},
					"grille_area": map[string]interface{}{
						"type":        "number",
						"description": "Normalized width of the first detected rectangle",
						"default":     0.0,
					},
				},
				"required": []string{"body_proportions", "headlight_count"},
			},
		},
		{
			Name:        "plate_check",
			Description: "Check whether a piece of text looks like a license plate. Spaces are ignored and letters are compared case-insensitively.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Candidate plate text",
					},
				},
				"required": []string{"text"},
			},
		},

		// Detection Operations
		{
			Name:        "image_detect_rectangles",
			Description: "Find rectangular shapes. Returns pixel rectangles, the same boxes normalized to the image size, and how many qualify as a car.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum rectangle area in pixels. Default from configuration (100)",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Rectangularity threshold 0-1. Default from configuration (0.8)",
					},
					"blur_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius applied before edge detection. Default from configuration (0)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_text_regions",
			Description: "Find plate-shaped regions with text-like edge structure, without running OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum region confidence 0-1. Default 0.3",
						"default":     0.3,
					},
				},
				"required": []string{"path"},
			},
		},

		// OCR Operations
		{
			Name:        "image_ocr_text",
			Description: "Extract all text from a photo, or from one region of it, with word bounding boxes and confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional pixel region to read; bounds are reported in full-image coordinates"),
				},
				"required": []string{"path"},
			},
		},

		// Color Operations
		{
			Name:        "image_dominant_colors",
			Description: "Experimental: most common colors with the nearest paint name. Not used for identification.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"region": regionProperty("Optional pixel region to analyze"),
				},
				"required": []string{"path"},
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
