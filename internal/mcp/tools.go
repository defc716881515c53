package mcp

import "github.com/mark3labs/mcp-go/mcp"

// interpretTool runs a free-form utterance through the full
// interpretation pipeline, exactly as if the user had typed it.
var interpretTool = mcp.NewTool("interpret",
	mcp.WithDescription("Send a natural-language request to the assistant (e.g. \"remind me to call mom tomorrow at 3pm\") and get its reply. May open a yes/no confirmation that the next interpret call answers."),
	mcp.WithString("utterance",
		mcp.Required(),
		mcp.Description("The request in plain language"),
	),
)

// addItemTool writes to a collection directly, bypassing classification.
var addItemTool = mcp.NewTool("add_item",
	mcp.WithDescription("Add an item directly to one of the user's collections without going through language interpretation."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Collection to add to"),
		mcp.Enum("task", "appointment", "habit", "grocery"),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Item title"),
	),
	mcp.WithString("datetime",
		mcp.Description("Due or start time in ISO 8601, for tasks and appointments"),
	),
	mcp.WithString("frequency",
		mcp.Description("Recurrence for habits, e.g. daily or weekly"),
	),
	mcp.WithNumber("priority",
		mcp.Description("Priority, higher is more important"),
	),
)

// listItemsTool reads one collection.
var listItemsTool = mcp.NewTool("list_items",
	mcp.WithDescription("List the items in one of the user's collections."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Collection to list"),
		mcp.Enum("task", "appointment", "habit", "grocery"),
	),
)
