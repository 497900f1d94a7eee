// Package testkit provides an in-process fake of the tire-simulation
// backend for tests.
package testkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Endpoint names used by Calls and Fail.
const (
	CheckProjectExists    = "check-project-exists"
	GenerateParameters    = "generate-parameters"
	ReadProtocolExcel     = "read-protocol-excel"
	SaveExcel             = "save-excel"
	ReadOutputExcel       = "read-output-excel"
	StoreData             = "store-cdtire-data"
	CreateProtocolFolders = "create-protocol-folders"
	StoreProjectMatrix    = "store-project-matrix"
	Summary               = "get-cdtire-summary"
	SaveDraft             = "projects/drafts"
	FetchProject          = "projects"
	UploadMeshFile        = "upload-mesh-file"
	ActivityLog           = "activity-log"
)

// Call is one request received by the fake.
type Call struct {
	Endpoint      string
	Method        string
	Path          string
	RequestID     string
	Authorization string
	Referer       string
	Body          []byte
	// FileField, FileName and File are set for multipart uploads.
	FileField string
	FileName  string
	File      []byte
}

// JSON decodes the request body into v.
func (c Call) JSON(v any) error {
	return json.Unmarshal(c.Body, v)
}

type failure struct {
	status  int
	payload any
}

// Backend is a fake backend served by an httptest.Server. Configure the
// exported fields before issuing requests.
type Backend struct {
	*httptest.Server

	// ExistingProject makes check-project-exists report a stored project
	// with this id. Empty means no project.
	ExistingProject string
	FolderName      string
	// Template is served by read-protocol-excel.
	Template []byte
	// Token, when set, is required by the authenticated endpoints.
	Token string

	mu       sync.Mutex
	calls    []Call
	failures map[string]failure
	output   []byte
	stored   []map[string]any
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{failures: make(map[string]failure)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Post("/check-project-exists", b.handle(CheckProjectExists, false, b.checkProject))
		r.Post("/generate-parameters", b.handle(GenerateParameters, false, b.success))
		r.Get("/read-protocol-excel", b.handle(ReadProtocolExcel, false, b.readTemplate))
		r.Post("/save-excel", b.handle(SaveExcel, false, b.saveExcel))
		r.Get("/read-output-excel", b.handle(ReadOutputExcel, false, b.readOutput))
		r.Post("/store-cdtire-data", b.handle(StoreData, false, b.storeData))
		r.Post("/create-protocol-folders", b.handle(CreateProtocolFolders, false, b.success))
		r.Post("/store-project-matrix", b.handle(StoreProjectMatrix, false, b.success))
		r.Get("/get-cdtire-summary", b.handle(Summary, false, b.summary))
		r.Post("/projects/{id}/drafts/{protocol}", b.handle(SaveDraft, true, b.success))
		r.Get("/projects/{id}", b.handle(FetchProject, true, b.project))
		r.Post("/upload-mesh-file", b.handle(UploadMeshFile, false, b.success))
		r.Post("/activity-log", b.handle(ActivityLog, true, b.success))
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// Fail makes endpoint answer with status and {"success": false, "message": message}.
func (b *Backend) Fail(endpoint string, status int, message string) {
	b.FailWith(endpoint, status, map[string]any{"success": false, "message": message})
}

// FailWith makes endpoint answer with status and an arbitrary payload. A
// []byte payload is written as is.
func (b *Backend) FailWith(endpoint string, status int, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[endpoint] = failure{status: status, payload: payload}
}

// Calls returns the requests received so far, in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Endpoints returns the endpoint names of the requests received so far.
func (b *Backend) Endpoints() []string {
	calls := b.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Endpoint
	}
	return out
}

// CallsTo returns the requests received by endpoint.
func (b *Backend) CallsTo(endpoint string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

// Output returns the workbook last uploaded to save-excel.
func (b *Backend) Output() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.output
}

// Stored returns the records uploaded to store-cdtire-data.
func (b *Backend) Stored() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.stored...)
}

func (b *Backend) handle(endpoint string, auth bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		call := record(endpoint, r)
		b.mu.Lock()
		b.calls = append(b.calls, call)
		f, failing := b.failures[endpoint]
		token := b.Token
		b.mu.Unlock()

		if auth && token != "" && call.Authorization != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
			return
		}
		if failing {
			if raw, ok := f.payload.([]byte); ok {
				w.WriteHeader(f.status)
				w.Write(raw)
				return
			}
			writeJSON(w, f.status, f.payload)
			return
		}
		next(w, withCall(r, call))
	}
}

func record(endpoint string, r *http.Request) Call {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	c := Call{
		Endpoint:      endpoint,
		Method:        r.Method,
		Path:          r.URL.Path,
		RequestID:     r.Header.Get("X-Request-ID"),
		Authorization: r.Header.Get("Authorization"),
		Referer:       r.Header.Get("Referer"),
		Body:          body,
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return c
	}
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if part.FileName() != "" {
			c.FileField = part.FormName()
			c.FileName = part.FileName()
			c.File, _ = io.ReadAll(part)
			break
		}
	}
	return c
}

type callKey struct{}

func withCall(r *http.Request, c Call) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callKey{}, c))
}

func callFrom(r *http.Request) Call {
	c, _ := r.Context().Value(callKey{}).(Call)
	return c
}

func (b *Backend) success(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) checkProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	id, folder := b.ExistingProject, b.FolderName
	b.mu.Unlock()
	if id == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "exists": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"exists":     true,
		"folderName": folder,
		"project":    map[string]any{"id": id},
	})
}

func (b *Backend) readTemplate(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	tpl := b.Template
	b.mu.Unlock()
	if tpl == nil {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Write(tpl)
}

func (b *Backend) saveExcel(w http.ResponseWriter, r *http.Request) {
	c := callFrom(r)
	if c.FileField != "excelFile" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No file uploaded"})
		return
	}
	b.mu.Lock()
	b.output = c.File
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "File saved"})
}

func (b *Backend) readOutput(w http.ResponseWriter, r *http.Request) {
	out := b.Output()
	if out == nil {
		http.Error(w, "output not found", http.StatusNotFound)
		return
	}
	w.Write(out)
}

func (b *Backend) storeData(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := callFrom(r).JSON(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid data"})
		return
	}
	b.mu.Lock()
	b.stored = payload.Data
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// summary groups the stored records by test name in first-seen order.
// Counts are rendered as strings.
func (b *Backend) summary(w http.ResponseWriter, r *http.Request) {
	var (
		order  []string
		counts = make(map[string]int)
	)
	for _, rec := range b.Stored() {
		name, _ := rec["test_name"].(string)
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}
	out := make([]map[string]any, 0, len(order))
	for _, name := range order {
		out = append(out, map[string]any{"test_name": name, "count": strconv.Itoa(counts[name])})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) project(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": chi.URLParam(r, "id")})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
