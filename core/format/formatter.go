package format

import (
	"fmt"
	"strings"

	"github.com/siherrmann/mentis/model"
)

// NoInformationFound is emitted in place of an empty block so downstream
// prompt assembly never loses the section silently.
const NoInformationFound = "No relevant information found."

// RenderChunk renders one chunk as a single line. Field selection follows a
// fixed priority: title with description, then name with description, then
// bare content, then the generic string rendering.
func RenderChunk(chunk *model.Chunk) string {
	switch {
	case chunk.Title != "" && chunk.Description != "":
		return fmt.Sprintf("%s: %s", chunk.Title, chunk.Description)
	case chunk.Name != "" && chunk.Description != "":
		return fmt.Sprintf("%s: %s", chunk.Name, chunk.Description)
	case chunk.Content != "":
		return chunk.Content
	default:
		return chunk.String()
	}
}

// RenderResultSet renders the result set as one ordered text block for
// prompt inclusion: a header per category holding results, one bullet line
// per scored result. An entirely empty set renders the NoInformationFound
// sentinel.
func RenderResultSet(results *model.ResultSet) string {
	if results == nil || results.Len() == 0 {
		return NoInformationFound
	}

	var parts []string
	for _, category := range results.Categories() {
		entries := results.Results(category)
		if len(entries) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("\n--- %s ---", category))
		for _, entry := range entries {
			parts = append(parts, fmt.Sprintf("• %s", RenderChunk(entry.Chunk)))
		}
	}

	if len(parts) == 0 {
		return NoInformationFound
	}
	return strings.Join(parts, "\n")
}

// RenderChunks renders plain chunks line by line, used by the auxiliary
// retrievers that work on a single collection.
func RenderChunks(chunks []*model.Chunk) []string {
	rendered := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		rendered = append(rendered, RenderChunk(chunk))
	}
	return rendered
}
