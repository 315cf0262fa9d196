package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("tutorial_list",
	mcp.WithDescription("List tutorials newest first, optionally filtered by category, difficulty and a text query. Results are paginated; bodies are omitted."),
	mcp.WithString("category", mcp.Description("Category slug, e.g. \"go\" (case-insensitive)")),
	mcp.WithString("difficulty", mcp.Description("Difficulty filter"), mcp.Enum("Beginner", "Intermediate", "Advanced")),
	mcp.WithString("query", mcp.Description("Case-insensitive substring matched against title, description and tags")),
	mcp.WithNumber("page", mcp.Description("1-indexed page number (default 1, clamped into range)")),
	mcp.WithNumber("page_size", mcp.Description("Tutorials per page (default 12, max 100)")),
)

var searchToolDef = mcp.NewTool("tutorial_search",
	mcp.WithDescription("Search tutorials by title, description or tag. Each result carries a snippet with matches wrapped in <b> tags."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search text (max 200 characters)")),
	mcp.WithString("category", mcp.Description("Restrict to a category slug")),
	mcp.WithString("difficulty", mcp.Description("Restrict to a difficulty"), mcp.Enum("Beginner", "Intermediate", "Advanced")),
	mcp.WithNumber("page", mcp.Description("1-indexed page number (default 1)")),
	mcp.WithNumber("limit", mcp.Description("Results per page (default 20, max 100)")),
)

var fetchToolDef = mcp.NewTool("tutorial_fetch",
	mcp.WithDescription("Fetch one tutorial by id, or by category and slug, with its category and related tutorials."),
	mcp.WithString("id", mcp.Description("Tutorial ID")),
	mcp.WithString("category", mcp.Description("Category slug (use with slug)")),
	mcp.WithString("slug", mcp.Description("Tutorial slug (use with category)")),
	mcp.WithNumber("related_limit", mcp.Description("Related tutorials to include (default 3, max 20)")),
	mcp.WithBoolean("include_body", mcp.Description("Include the markdown body (default true)")),
)

var relatedToolDef = mcp.NewTool("tutorial_related",
	mcp.WithDescription("List the tutorials sharing the most tags with the addressed tutorial."),
	mcp.WithString("id", mcp.Description("Tutorial ID")),
	mcp.WithString("category", mcp.Description("Category slug (use with slug)")),
	mcp.WithString("slug", mcp.Description("Tutorial slug (use with category)")),
	mcp.WithNumber("limit", mcp.Description("Maximum related tutorials (default 3, max 20)")),
)

var categoryListToolDef = mcp.NewTool("category_list",
	mcp.WithDescription("List every category in catalog order with its tutorial count."),
)
