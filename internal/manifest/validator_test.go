package manifest

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		valid   bool
		keyword string
	}{
		{"minimal", `{"name": "web"}`, true, ""},
		{"scoped name", `{"name": "@repo/typescript-config", "private": true}`, true, ""},
		{"with comments", "{\n// generated\n\"name\": \"web\",\n}", true, ""},
		{"unknown keys allowed", `{"name": "web", "browserslist": ["defaults"]}`, true, ""},
		{"uppercase name", `{"name": "Web"}`, false, "pattern"},
		{"numeric dependency", `{"dependencies": {"zod": 4}}`, false, "type"},
		{"empty script", `{"scripts": {"dev": ""}}`, false, "minLength"},
		{"private as string", `{"private": "yes"}`, false, "type"},
		{"bad module type", `{"type": "esm"}`, false, "enum"},
		{"not an object", `["web"]`, false, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate([]byte(tt.data))
			if err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if result.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (issues: %+v)", result.Valid, tt.valid, result.Issues)
			}
			if tt.valid {
				return
			}
			found := false
			for _, issue := range result.Issues {
				if issue.Keyword == tt.keyword {
					found = true
				}
				if issue.Message == "" {
					t.Errorf("issue has empty message: %+v", issue)
				}
			}
			if !found {
				t.Errorf("no issue with keyword %q in %+v", tt.keyword, result.Issues)
			}
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	if _, err := Validate([]byte(`{"name": `)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateFile(t *testing.T) {
	path := writeManifest(t, rootManifest)
	result, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("ValidateFile() error: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid manifest, got issues %+v", result.Issues)
	}
}
