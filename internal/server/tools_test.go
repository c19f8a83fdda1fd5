package server

import (
	"context"
	"testing"
)

var expectedTools = []string{
	"image_load",
	"vehicle_detect",
	"vehicle_features",
	"vehicle_predict",
	"plate_check",
	"image_detect_rectangles",
	"image_detect_text_regions",
	"image_ocr_text",
	"image_dominant_colors",
}

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func requiredParams(t *testing.T, tool Tool) []string {
	t.Helper()
	required, ok := tool.InputSchema["required"].([]string)
	if !ok {
		t.Fatalf("%s: 'required' should be a string slice", tool.Name)
	}
	return required
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared
			for _, name := range requiredParams(t, tool) {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s has no property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsWithoutPath := map[string]bool{
		"vehicle_predict": true,
		"plate_check":     true,
	}

	for name, tool := range toolsByName() {
		t.Run(name, func(t *testing.T) {
			hasPath := false
			for _, r := range requiredParams(t, tool) {
				if r == "path" {
					hasPath = true
				}
			}
			if hasPath == toolsWithoutPath[name] {
				t.Errorf("requires path: got %v, want %v", hasPath, !toolsWithoutPath[name])
			}
		})
	}
}

func TestToolDefinitions_VehicleDetectLocation(t *testing.T) {
	tool := toolsByName()["vehicle_detect"]
	props := tool.InputSchema["properties"].(map[string]interface{})

	for _, name := range []string{"latitude", "longitude"} {
		p, ok := props[name].(map[string]interface{})
		if !ok {
			t.Fatalf("%s not declared", name)
		}
		if p["type"] != "number" {
			t.Errorf("%s type: got %v, want number", name, p["type"])
		}
	}
	for _, r := range requiredParams(t, tool) {
		if r == "latitude" || r == "longitude" {
			t.Errorf("%s should be optional", r)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"image_dominant_colors":     {"count": 5},
		"image_detect_text_regions": {"min_confidence": 0.3},
		"vehicle_predict":           {"grille_area": 0.0},
	}

	toolMap := toolsByName()
	for toolName, expectedDefaults := range toolDefaults {
		props := toolMap[toolName].InputSchema["properties"].(map[string]interface{})

		for paramName, expected := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}
			if actual := param["default"]; actual != expected {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)", toolName, paramName, actual, actual, expected, expected)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
