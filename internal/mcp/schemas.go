package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	buildQueryToolName      = "build_query"
	searchResumesToolName   = "search_resumes"
	extractKeywordsToolName = "extract_keywords"
)

func termsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "string"},
	}
}

func constraintProperties(props map[string]interface{}) map[string]interface{} {
	props["user_job_title"] = map[string]interface{}{
		"type":        "string",
		"description": "Job title the résumé must mention; quoted when it has several words",
	}
	props["bank_only"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Require banking experience",
		"default":     false,
	}
	return props
}

// buildQueryTool returns the tool definition for build_query
func buildQueryTool() mcp.Tool {
	return mcp.Tool{
		Name: buildQueryToolName,
		Description: "Compile keyword roles into the boolean résumé search query. " +
			"With technologies, domain or negative_keywords the four-role legacy policy is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: constraintProperties(map[string]interface{}{
				"must_have":         termsProperty("Terms every résumé must contain (AND-joined)"),
				"optional":          termsProperty("Supporting terms (OR-joined)"),
				"technologies":      termsProperty("Legacy: technology terms"),
				"domain":            termsProperty("Legacy: domain terms"),
				"negative_keywords": termsProperty("Legacy: excluded terms"),
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Legacy combination mode",
					"enum":        []string{"strict", "medium", "broad"},
					"default":     "medium",
				},
			}),
		},
	}
}

// searchResumesTool returns the tool definition for search_resumes
func searchResumesTool() mcp.Tool {
	return mcp.Tool{
		Name: searchResumesToolName,
		Description: "Search résumés with an exact query first and a relaxed query (optional terms dropped) " +
			"when the first page is empty.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: constraintProperties(map[string]interface{}{
				"must_have": termsProperty("Terms every résumé must contain"),
				"optional":  termsProperty("Supporting terms, dropped by the relaxed query"),
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Structured filters: area, experience, employment, education_levels, language, job_search_status, per_page",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based result page",
					"default":     0,
					"minimum":     0,
				},
			}),
			Required: []string{"must_have"},
		},
	}
}

// extractKeywordsTool returns the tool definition for extract_keywords
func extractKeywordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        extractKeywordsToolName,
		Description: "Extract must-have and optional search keywords from a vacancy",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vacancy_id": map[string]interface{}{
					"type":        "string",
					"description": "Vacancy id",
				},
				"legacy": map[string]interface{}{
					"type":        "boolean",
					"description": "Return the four-role legacy structure",
					"default":     false,
				},
			},
			Required: []string{"vacancy_id"},
		},
	}
}
