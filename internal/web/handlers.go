package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/formatter"
	"github.com/tordrt/tablediff/internal/logging"
	"github.com/tordrt/tablediff/internal/table"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// CompareResponse is returned by POST /api/compare
type CompareResponse struct {
	ID     string       `json:"id"`
	Report *diff.Report `json:"report"`
}

// ColumnsResponse is returned by POST /api/columns
type ColumnsResponse struct {
	ColumnDiff    diff.ColumnDiff `json:"column_diff"`
	KeyCandidates []string        `json:"key_candidates"`
}

// EntriesResponse is one page of a column's mismatches
type EntriesResponse struct {
	Column     string               `json:"column"`
	Total      int                  `json:"total"`
	Suppressed int                  `json:"suppressed"`
	Offset     int                  `json:"offset"`
	Entries    []diff.CellDiffEntry `json:"entries"`
}

// MissingResponse is one page of rows present on one side only
type MissingResponse struct {
	Side    string      `json:"side"`
	Headers []string    `json:"headers"`
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Rows    []table.Row `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"reports": s.reports.Len(),
	})
}

// handleCompare accepts multipart fields file_a, file_b, key and optional
// max_diffs and duplicates.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, b, err := s.readUploads(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	opts, err := s.cfg.DiffOptions(strings.TrimSpace(r.FormValue("key")))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if v := r.FormValue("max_diffs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: max_diffs must be an integer", errBadRequest))
			return
		}
		opts.MaxDiffsPerColumn = n
	}
	if v := r.FormValue("duplicates"); v != "" {
		if opts.Duplicates, err = diff.ParseDuplicatePolicy(v); err != nil {
			respondError(w, r, err)
			return
		}
	}

	report, err := diff.Compare(a, b, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id := s.reports.Put(report)
	logging.WithFields(r.Context(), "report_id", id, "key", opts.KeyColumn).Info("comparison stored",
		"rows_a", a.Len(),
		"rows_b", b.Len(),
		"matched", report.MatchingCount,
		"mismatches", report.TotalMismatches,
		"suppressed", report.TotalSuppressed,
	)

	respondJSON(w, http.StatusCreated, CompareResponse{ID: id, Report: report})
}

// handleColumns compares headers only and lists usable key columns, so a
// client can offer a key choice before running the full comparison.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	a, b, err := s.readUploads(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ColumnsResponse{
		ColumnDiff:    diff.DiffColumns(a.Headers, b.Headers),
		KeyCandidates: diff.KeyCandidates(a.Headers, b.Headers),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.reports.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, r, fmt.Errorf("%w: report", errNotFound))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		respondJSON(w, http.StatusOK, report)
		return
	}

	opts, err := s.formatterOptions(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	switch format {
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := formatter.ReportPage(report, opts).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render report", "error", err)
		}
	case "markdown", "text":
		f, _ := formatter.New(format, w, opts)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := f.Format(report); err != nil {
			logging.FromContext(r.Context()).Error("render report", "error", err)
		}
	default:
		respondError(w, r, fmt.Errorf("%w: format must be json, html, markdown or text", errBadRequest))
	}
}

// handleColumnEntries returns one sorted page of a column's mismatches.
// Query: sort (key|a|b), dir (asc|desc), offset, limit.
func (s *Server) handleColumnEntries(w http.ResponseWriter, r *http.Request) {
	report, ok := s.reports.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, r, fmt.Errorf("%w: report", errNotFound))
		return
	}

	column := pathParam(r, "column")
	entries, ok := report.DiffsByColumn[column]
	if !ok {
		respondError(w, r, fmt.Errorf("%w: column %q was not compared", errNotFound, column))
		return
	}

	q := r.URL.Query()
	dir, err := diff.ParseDirection(q.Get("dir"))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sorted, err := diff.SortEntries(entries, q.Get("sort"), dir)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	offset := parseIntParam(r, "offset", 0)
	respondJSON(w, http.StatusOK, EntriesResponse{
		Column:     column,
		Total:      len(entries),
		Suppressed: report.Suppressed[column],
		Offset:     offset,
		Entries:    diff.Page(sorted, offset, parseIntParam(r, "limit", s.cfg.Compare.PreviewRows)),
	})
}

// handleMissingRows returns one sorted page of rows found only in side a or
// b. Query: sort (any column, default the key), dir, offset, limit.
func (s *Server) handleMissingRows(w http.ResponseWriter, r *http.Request) {
	report, ok := s.reports.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, r, fmt.Errorf("%w: report", errNotFound))
		return
	}

	side := strings.ToLower(chi.URLParam(r, "side"))
	var rows []table.Row
	var headers []string
	switch side {
	case "a":
		rows, headers = report.MissingRows.OnlyInA, report.HeadersA
	case "b":
		rows, headers = report.MissingRows.OnlyInB, report.HeadersB
	default:
		respondError(w, r, fmt.Errorf("%w: side must be a or b", errNotFound))
		return
	}

	q := r.URL.Query()
	dir, err := diff.ParseDirection(q.Get("dir"))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	column := q.Get("sort")
	if column == "" {
		column = report.KeyColumn
	}

	offset := parseIntParam(r, "offset", 0)
	respondJSON(w, http.StatusOK, MissingResponse{
		Side:    side,
		Headers: headers,
		Total:   len(rows),
		Offset:  offset,
		Rows:    diff.Page(diff.SortRows(rows, column, dir), offset, parseIntParam(r, "limit", s.cfg.Compare.PreviewRows)),
	})
}

// readUploads parses the multipart body and tokenizes file_a and file_b.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) (*table.Table, *table.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
	}

	a, err := s.readUpload(r, "file_a")
	if err != nil {
		return nil, nil, err
	}
	b, err := s.readUpload(r, "file_b")
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (s *Server) readUpload(r *http.Request, field string) (*table.Table, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing file %s", errBadRequest, field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return s.tokenizer.Parse(string(data)), nil
}

// formatterOptions reads preview and sort settings for rendered reports.
func (s *Server) formatterOptions(r *http.Request) (formatter.Options, error) {
	q := r.URL.Query()
	dir, err := diff.ParseDirection(q.Get("dir"))
	if err != nil {
		return formatter.Options{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	opts := formatter.Options{
		PreviewRows: parseIntParam(r, "limit", s.cfg.Compare.PreviewRows),
		RowSort:     q.Get("row_sort"),
		EntrySort:   q.Get("sort"),
		Direction:   dir,
	}
	if _, err := diff.SortEntries(nil, opts.EntrySort, dir); err != nil {
		return formatter.Options{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return opts, nil
}

// parseIntParam parses a non-negative integer query parameter with a
// default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// pathParam returns a URL parameter with percent-encoding removed.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
