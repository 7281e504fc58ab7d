package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools exposes one MCP tool per public Engine operation.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("tagbox_extract_metainfo",
			mcp.WithDescription("Extract candidate metadata from a file without importing it"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to inspect")),
		),
		h.extractMetainfo,
	)

	s.AddTool(
		mcp.NewTool("tagbox_import_file",
			mcp.WithDescription("Import a single file into the catalogue"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to import")),
			mcp.WithString("title", mcp.Description("Override title")),
			mcp.WithArray("authors", mcp.WithStringItems(), mcp.Description("Override authors")),
			mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Override tags")),
			mcp.WithNumber("year", mcp.Description("Override year")),
			mcp.WithString("publisher", mcp.Description("Override publisher")),
			mcp.WithString("category1", mcp.Description("Override category1")),
			mcp.WithString("category2", mcp.Description("Override category2")),
			mcp.WithString("category3", mcp.Description("Override category3")),
			mcp.WithString("summary", mcp.Description("Override summary")),
		),
		h.importFile,
	)

	s.AddTool(
		mcp.NewTool("tagbox_import_files",
			mcp.WithDescription("Import multiple files into the catalogue"),
			mcp.WithArray("paths", mcp.WithStringItems(), mcp.Required(), mcp.Description("Filesystem paths to import")),
		),
		h.importFiles,
	)

	s.AddTool(
		mcp.NewTool("tagbox_search",
			mcp.WithDescription("Search the catalogue with the query DSL (tag:, author:, year:, free text)"),
			mcp.WithString("query", mcp.Required(), mcp.Description("DSL query")),
			mcp.WithNumber("limit", mcp.Description("Maximum results")),
			mcp.WithNumber("offset", mcp.Description("Result offset")),
			mcp.WithString("sort", mcp.Description("Sort field: imported_at, updated_at, title, year, access_count, rank")),
			mcp.WithBoolean("desc", mcp.Description("Sort descending")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted files")),
		),
		h.search,
	)

	s.AddTool(
		mcp.NewTool("tagbox_fuzzy_search",
			mcp.WithDescription("Autocomplete-style prefix match against all full-text-indexed fields"),
			mcp.WithString("partial", mcp.Required(), mcp.Description("Partial text to match")),
			mcp.WithNumber("limit", mcp.Description("Maximum results")),
			mcp.WithNumber("offset", mcp.Description("Result offset")),
		),
		h.fuzzySearch,
	)

	s.AddTool(
		mcp.NewTool("tagbox_query_debug",
			mcp.WithDescription("Compile a DSL query to SQL without running it, for diagnostics"),
			mcp.WithString("query", mcp.Required(), mcp.Description("DSL query")),
		),
		h.queryDebug,
	)

	s.AddTool(
		mcp.NewTool("tagbox_get_file",
			mcp.WithDescription("Show a single file's metadata"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.getFile,
	)

	s.AddTool(
		mcp.NewTool("tagbox_get_file_path",
			mcp.WithDescription("Resolve a file's absolute on-disk path"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.getFilePath,
	)

	s.AddTool(
		mcp.NewTool("tagbox_list",
			mcp.WithDescription("List catalogued files under a path prefix"),
			mcp.WithString("prefix", mcp.Description("Path prefix filter")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted files")),
			mcp.WithNumber("limit", mcp.Description("Maximum results")),
			mcp.WithNumber("offset", mcp.Description("Result offset")),
		),
		h.listFiles,
	)

	s.AddTool(
		mcp.NewTool("tagbox_update_file",
			mcp.WithDescription("Update a single metadata field on a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
			mcp.WithString("field", mcp.Required(), mcp.Description("Field name: title, publisher, category1, category2, category3, summary, full_text")),
			mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
		),
		h.updateFile,
	)

	s.AddTool(
		mcp.NewTool("tagbox_move_file",
			mcp.WithDescription("Recompute and apply a file's destination path from the current templates"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.moveFile,
	)

	s.AddTool(
		mcp.NewTool("tagbox_soft_delete",
			mcp.WithDescription("Soft-delete a file (recoverable via tagbox_restore)"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
			mcp.WithString("reason", mcp.Description("Reason recorded in history")),
		),
		h.softDelete,
	)

	s.AddTool(
		mcp.NewTool("tagbox_restore",
			mcp.WithDescription("Restore a soft-deleted file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.restore,
	)

	s.AddTool(
		mcp.NewTool("tagbox_record_access",
			mcp.WithDescription("Record an access against a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.recordAccess,
	)

	s.AddTool(
		mcp.NewTool("tagbox_update_file_hash",
			mcp.WithDescription("Recompute and store a file's hash from its current on-disk bytes"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.updateFileHash,
	)

	s.AddTool(
		mcp.NewTool("tagbox_link_files",
			mcp.WithDescription("Create or restore a directed relation between two files"),
			mcp.WithString("from", mcp.Required(), mcp.Description("Source file key")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Target file key")),
			mcp.WithString("relation", mcp.Required(), mcp.Description("Relation name")),
		),
		h.linkFiles,
	)

	s.AddTool(
		mcp.NewTool("tagbox_unlink_files",
			mcp.WithDescription("Remove a directed relation between two files"),
			mcp.WithString("from", mcp.Required(), mcp.Description("Source file key")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Target file key")),
			mcp.WithString("relation", mcp.Required(), mcp.Description("Relation name")),
		),
		h.unlinkFiles,
	)

	s.AddTool(
		mcp.NewTool("tagbox_outgoing_links",
			mcp.WithDescription("List relations originating at a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.outgoingLinks,
	)

	s.AddTool(
		mcp.NewTool("tagbox_incoming_links",
			mcp.WithDescription("List relations targeting a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.incomingLinks,
	)

	s.AddTool(
		mcp.NewTool("tagbox_add_author",
			mcp.WithDescription("Create a new canonical author"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Author name")),
		),
		h.addAuthor,
	)

	s.AddTool(
		mcp.NewTool("tagbox_remove_author",
			mcp.WithDescription("Soft-delete an author"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Author key")),
		),
		h.removeAuthor,
	)

	s.AddTool(
		mcp.NewTool("tagbox_merge_authors",
			mcp.WithDescription("Alias one author onto another's canonical identity"),
			mcp.WithString("from", mcp.Required(), mcp.Description("Alias author key")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Canonical author key")),
		),
		h.mergeAuthors,
	)

	s.AddTool(
		mcp.NewTool("tagbox_tag_add",
			mcp.WithDescription("Attach a tag to a file, creating ancestor tags as needed"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
			mcp.WithString("tag", mcp.Required(), mcp.Description("Slash-joined tag path")),
		),
		h.tagAdd,
	)

	s.AddTool(
		mcp.NewTool("tagbox_tag_remove",
			mcp.WithDescription("Detach a tag from a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
			mcp.WithString("tag", mcp.Required(), mcp.Description("Slash-joined tag path")),
		),
		h.tagRemove,
	)

	s.AddTool(
		mcp.NewTool("tagbox_tags",
			mcp.WithDescription("List the tags attached to a file"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.listTags,
	)

	s.AddTool(
		mcp.NewTool("tagbox_validate_files_in_path",
			mcp.WithDescription("Reconcile the catalogue against the on-disk library tree"),
			mcp.WithString("root", mcp.Description("Path prefix to validate (empty means everything)")),
			mcp.WithBoolean("recursive", mcp.Description("Recurse into subdirectories")),
			mcp.WithBoolean("repair", mcp.Description("Update stored hashes on drift instead of only reporting")),
		),
		h.validateFilesInPath,
	)

	s.AddTool(
		mcp.NewTool("tagbox_check_config_compatibility",
			mcp.WithDescription("Check the loaded configuration against values recorded at bootstrap"),
		),
		h.checkConfigCompatibility,
	)

	s.AddTool(
		mcp.NewTool("tagbox_rebuild",
			mcp.WithDescription("Recompute destination paths against the current templates, previewing or applying the moves"),
			mcp.WithString("key", mcp.Description("File key; empty means every file")),
			mcp.WithBoolean("apply", mcp.Description("Apply the recomputed moves instead of only previewing them")),
			mcp.WithNumber("workers", mcp.Description("Worker pool size (0 uses the configured default)")),
		),
		h.rebuild,
	)

	s.AddTool(
		mcp.NewTool("tagbox_file_history",
			mcp.WithDescription("Show a file's append-only audit log, oldest first"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.fileHistory,
	)

	s.AddTool(
		mcp.NewTool("tagbox_file_access_stats",
			mcp.WithDescription("Show a file's access counter and last-access timestamp"),
			mcp.WithString("key", mcp.Required(), mcp.Description("File key")),
		),
		h.fileAccessStats,
	)
}
