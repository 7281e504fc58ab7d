// Package rpc implements the stdio request/response mode: newline-delimited
// JSON-RPC 2.0-shaped frames read from stdin and written to stdout, each
// cmd mapped to one of the Engine's public operations. Stderr is reserved
// for diagnostic logging so stdout stays a clean frame stream, the same
// split the teacher's MCP server keeps between protocol and logs.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	tagbox "github.com/nerdneilsfield/tagbox"
	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/integrity"
	"github.com/nerdneilsfield/tagbox/internal/search"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// Request is one newline-delimited input frame.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Cmd     string          `json:"cmd"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response is one newline-delimited output frame. At most one of Result or
// Error is populated; a command that succeeds with a nil result carries
// neither.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject mirrors tberr.Kind in Code so front-ends can branch on it
// without string-matching Message.
type ErrorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server dispatches decoded frames against an open Engine.
type Server struct {
	engine *tagbox.Engine
	log    *slog.Logger
}

// New builds a Server over an already-open engine.
func New(engine *tagbox.Engine, logger *slog.Logger) *Server {
	return &Server{engine: engine, log: logger}
}

// Serve reads newline-delimited requests from r and writes newline-delimited
// responses to w until r is exhausted or ctx is cancelled. A malformed
// frame produces an error response and does not stop the loop; a closed
// reader ends it cleanly.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(ctx, line)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, tberr.KindInvalidQuery, fmt.Sprintf("malformed frame: %v", err))
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		s.log.Error("rpc command failed", "cmd", req.Cmd, "error", err)
		return errorResponse(req.ID, classify(err), err.Error())
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func classify(err error) tberr.Kind {
	if k := tberr.KindOf(err); k != "" {
		return k
	}
	return tberr.KindDatabaseError
}

func errorResponse(id json.RawMessage, kind tberr.Kind, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ErrorObject{Code: string(kind), Message: msg},
	}
}

// dispatch maps req.Cmd to a public Engine operation, decoding req.Args
// into that operation's parameter shape.
func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Cmd {
	case "extract_metainfo":
		var args struct{ Path string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.ExtractMetainfo(ctx, args.Path)

	case "import_file":
		var args struct {
			Path     string
			Metadata extract.ImportMetadata
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		f, err := s.engine.ImportFile(ctx, args.Path, args.Metadata)
		if err != nil {
			return nil, err
		}
		return f.ToJSON(), nil

	case "import_files":
		var args struct {
			Paths     []string
			Overrides map[string]extract.ImportMetadata
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.ImportFiles(ctx, args.Paths, args.Overrides, nil), nil

	case "search":
		var args struct {
			Query   string
			Options search.Options
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.runSearch(ctx, args.Query, args.Options, false)

	case "fuzzy_search":
		var args struct {
			Partial string
			Options search.Options
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.runSearch(ctx, args.Partial, args.Options, true)

	case "query_debug":
		var args struct {
			Query   string
			Options search.Options
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.QueryDebug(ctx, args.Query, args.Options)

	case "get_file":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		f, err := s.engine.GetFile(ctx, args.Key)
		if err != nil {
			return nil, err
		}
		return f.ToJSON(), nil

	case "get_file_path":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		path, err := s.engine.GetFilePath(ctx, args.Key)
		if err != nil {
			return nil, err
		}
		return map[string]string{"path": path}, nil

	case "list":
		var args tagbox.ListOptions
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		files, err := s.engine.List(ctx, args)
		if err != nil {
			return nil, err
		}
		return toFileJSON(files), nil

	case "update_file":
		var args struct {
			Key     string
			Request store.UpdateFieldSet
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.UpdateFile(ctx, args.Key, args.Request)

	case "move_file":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.MoveFile(ctx, args.Key)

	case "soft_delete":
		var args struct{ Key, Reason string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.SoftDelete(ctx, args.Key, args.Reason)

	case "restore":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.Restore(ctx, args.Key)

	case "record_access":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.RecordAccess(ctx, args.Key)

	case "update_file_hash":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.UpdateFileHash(ctx, args.Key)

	case "link_files":
		var args struct{ A, B, Relation string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.LinkFiles(ctx, args.A, args.B, args.Relation)

	case "unlink_files":
		var args struct{ A, B, Relation string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.UnlinkFiles(ctx, args.A, args.B, args.Relation)

	case "outgoing_links":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.OutgoingLinks(ctx, args.Key)

	case "incoming_links":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.IncomingLinks(ctx, args.Key)

	case "add_author":
		var args struct{ Name string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.AddAuthor(ctx, args.Name)

	case "remove_author":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.RemoveAuthor(ctx, args.Key)

	case "merge_authors":
		var args struct{ From, To string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return nil, s.engine.MergeAuthors(ctx, args.From, args.To)

	case "validate_files_in_path":
		var args struct {
			Root      string
			Recursive bool
			Mode      integrity.Mode
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.ValidateFilesInPath(ctx, args.Root, args.Recursive, args.Mode)

	case "check_config_compatibility":
		return nil, s.engine.CheckConfigCompatibility(ctx)

	case "rebuild":
		var args struct {
			Key     string
			Apply   bool
			Workers int
		}
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.Rebuild(ctx, args.Key, args.Apply, args.Workers)

	case "file_history":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.FileHistory(ctx, args.Key)

	case "file_access_stats":
		var args struct{ Key string }
		if err := decode(req.Args, &args); err != nil {
			return nil, err
		}
		return s.engine.FileAccessStats(ctx, args.Key)

	default:
		return nil, fmt.Errorf("%w: unknown cmd %q", tberr.ErrInvalidQuery, req.Cmd)
	}
}

func (s *Server) runSearch(ctx context.Context, q string, opts search.Options, fuzzy bool) (any, error) {
	var (
		res tagbox.SearchResult
		err error
	)
	if fuzzy {
		res, err = s.engine.FuzzySearch(ctx, q, opts)
	} else {
		res, err = s.engine.Search(ctx, q, opts)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"entries":     toFileJSON(res.Entries),
		"total_count": res.TotalCount,
		"offset":      res.Offset,
		"limit":       res.Limit,
	}, nil
}

func toFileJSON(files []store.File) []store.FileJSON {
	out := make([]store.FileJSON, len(files))
	for i, f := range files {
		out[i] = f.ToJSON()
	}
	return out
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", tberr.ErrInvalidQuery, err)
	}
	return nil
}
