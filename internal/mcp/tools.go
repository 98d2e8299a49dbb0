package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var filterProperties = map[string]interface{}{
	"user_id": map[string]interface{}{
		"type":        "string",
		"description": "Job seeker profile ID",
	},
	"company": map[string]interface{}{
		"type":        "string",
		"description": "Only consider postings from this company (case-insensitive exact match)",
	},
	"job_type": map[string]interface{}{
		"type":        "string",
		"description": "Only consider postings of this job type, e.g. full-time or contract",
	},
	"location": map[string]interface{}{
		"type":        "string",
		"description": "Only consider postings whose location contains this text",
	},
	"min_score": map[string]interface{}{
		"type":        "number",
		"description": "Drop matches scoring below this value (0 to 1, default: 0)",
	},
}

// ToolDefinitions contains all available MCP tools
var ToolDefinitions = []Tool{
	{
		Name:        "rank_matches",
		Description: "Rank active job postings for a job seeker. Returns matches sorted by score with matching skills and reasons.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": withProperties(filterProperties, map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches to return (default: 20)",
				},
			}),
			"required": []string{"user_id"},
		},
	},
	{
		Name:        "score_posting",
		Description: "Score a single job posting against a job seeker's profile with a per-feature breakdown.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Job seeker profile ID",
				},
				"posting_id": map[string]interface{}{
					"type":        "string",
					"description": "Job posting ID",
				},
			},
			"required": []string{"user_id", "posting_id"},
		},
	},
	{
		Name:        "notify_matches",
		Description: "Rank postings for a job seeker and send notifications for the top high-scoring matches.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": filterProperties,
			"required":   []string{"user_id"},
		},
	},
}

func withProperties(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
