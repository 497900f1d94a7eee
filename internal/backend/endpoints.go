package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// TemplateReferer identifies the protocol page to read-protocol-excel,
// which picks the template from it.
const TemplateReferer = "/cdtire.html"

// ProjectStatus is the reply of check-project-exists.
type ProjectStatus struct {
	// Exists is set only when the backend returned a stored project with
	// an id.
	Exists     bool
	FolderName string
	ProjectID  string
}

// CheckProjectExists asks whether projectName already has results for
// protocol.
func (c *Client) CheckProjectExists(ctx context.Context, projectName, protocol string) (ProjectStatus, error) {
	const endpoint = "check-project-exists"
	r, err := c.postJSON(ctx, "/api/check-project-exists", map[string]string{
		"projectName": projectName,
		"protocol":    protocol,
	}, false)
	if err != nil {
		return ProjectStatus{}, err
	}
	doc, err := envelope(endpoint, r, "Error checking project existence")
	if err != nil {
		return ProjectStatus{}, err
	}
	id := doc.Get("project.id")
	st := ProjectStatus{
		FolderName: doc.Get("folderName").String(),
		ProjectID:  id.String(),
	}
	st.Exists = truthy(doc.Get("exists")) && truthy(id)
	return st, nil
}

// truthy reports whether v is anything but null, false, zero or "".
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	}
	return false
}

// GenerateParameters asks the backend to write the parameter file.
func (c *Client) GenerateParameters(ctx context.Context, params map[string]string) error {
	r, err := c.postJSON(ctx, "/api/generate-parameters", params, false)
	if err != nil {
		return err
	}
	_, err = envelope("generate-parameters", r, "Error generating parameter file")
	return err
}

// ReadProtocolExcel downloads the protocol template workbook.
func (c *Client) ReadProtocolExcel(ctx context.Context) ([]byte, error) {
	r, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/read-protocol-excel",
		headers: map[string]string{"Referer": TemplateReferer},
	})
	if err != nil {
		return nil, err
	}
	if err := statusOnly("read-protocol-excel", r, "Error reading protocol template"); err != nil {
		return nil, err
	}
	return r.body, nil
}

// SaveExcel uploads the filled template as output.xlsx.
func (c *Client) SaveExcel(ctx context.Context, workbook io.Reader) error {
	r, err := c.postFile(ctx, "/api/save-excel", "excelFile", "output.xlsx", workbook)
	if err != nil {
		return err
	}
	_, err = envelope("save-excel", r, "Error saving Excel file")
	return err
}

// ReadOutputExcel downloads the saved result workbook.
func (c *Client) ReadOutputExcel(ctx context.Context) ([]byte, error) {
	r, err := c.do(ctx, request{method: http.MethodGet, path: "/api/read-output-excel"})
	if err != nil {
		return nil, err
	}
	if err := statusOnly("read-output-excel", r, "Error reading output file"); err != nil {
		return nil, err
	}
	return r.body, nil
}

// StoreData uploads extracted records.
func (c *Client) StoreData(ctx context.Context, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	r, err := c.postJSON(ctx, "/api/store-cdtire-data", map[string]any{"data": records}, false)
	if err != nil {
		return err
	}
	_, err = envelope("store-cdtire-data", r, "Error storing data")
	return err
}

// CreateProtocolFolders creates the project's folder tree for protocol.
func (c *Client) CreateProtocolFolders(ctx context.Context, projectName, protocol string) error {
	r, err := c.postJSON(ctx, "/api/create-protocol-folders", map[string]string{
		"projectName": projectName,
		"protocol":    protocol,
	}, false)
	if err != nil {
		return err
	}
	_, err = envelope("create-protocol-folders", r, "Error creating protocol folders")
	return err
}

// StoreProjectMatrix copies the stored matrix into the project's permanent
// table. Only the HTTP status is checked.
func (c *Client) StoreProjectMatrix(ctx context.Context, projectID, protocol string) error {
	r, err := c.postJSON(ctx, "/api/store-project-matrix", map[string]string{
		"projectId": projectID,
		"protocol":  protocol,
	}, false)
	if err != nil {
		return err
	}
	return statusOnly("store-project-matrix", r, "Failed to store project matrix")
}

// SummaryItem is one row of get-cdtire-summary.
type SummaryItem struct {
	TestName string `json:"test_name"`
	Count    int64  `json:"count"`
}

// Label returns the test name, or "Unknown" when it is blank.
func (s SummaryItem) Label() string {
	if s.TestName == "" {
		return "Unknown"
	}
	return s.TestName
}

// Summary fetches the per-test-name run counts. Counts may arrive as
// numbers or numeric strings.
func (c *Client) Summary(ctx context.Context) ([]SummaryItem, error) {
	const endpoint = "get-cdtire-summary"
	r, err := c.do(ctx, request{method: http.MethodGet, path: "/api/get-cdtire-summary"})
	if err != nil {
		return nil, err
	}
	if err := statusOnly(endpoint, r, "Network response was not ok"); err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(r.body) {
		return nil, &APIError{Endpoint: endpoint, StatusCode: r.status, Message: "invalid summary payload"}
	}
	items := []SummaryItem{}
	gjson.ParseBytes(r.body).ForEach(func(_, v gjson.Result) bool {
		items = append(items, SummaryItem{
			TestName: v.Get("test_name").String(),
			Count:    v.Get("count").Int(),
		})
		return true
	})
	return items, nil
}

// SaveDraft stores the operator inputs as the project's draft for protocol.
func (c *Client) SaveDraft(ctx context.Context, projectID, protocol string, inputs map[string]any) error {
	path := fmt.Sprintf("/api/projects/%s/drafts/%s", url.PathEscape(projectID), url.PathEscape(protocol))
	r, err := c.postJSON(ctx, path, map[string]any{"inputs_json": inputs}, true)
	if err != nil {
		return err
	}
	if r.ok() {
		return nil
	}
	msg := fmt.Sprintf("HTTP %d", r.status)
	if gjson.ValidBytes(r.body) {
		doc := gjson.ParseBytes(r.body)
		msg = orDefault(doc.Get("message").String(), doc.Raw)
	} else if s := snippet(r.body); s != "" {
		msg = s
	}
	return &APIError{Endpoint: "projects/drafts", StatusCode: r.status, Message: orDefault(msg, "Failed to save inputs")}
}

// FetchProject returns the raw project document.
func (c *Client) FetchProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	r, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/projects/" + url.PathEscape(projectID),
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	if err := statusOnly("projects", r, "Failed to fetch project"); err != nil {
		return nil, err
	}
	return json.RawMessage(r.body), nil
}

// UploadMeshFile uploads a tire mesh file.
func (c *Client) UploadMeshFile(ctx context.Context, filename string, content io.Reader) error {
	r, err := c.postFile(ctx, "/api/upload-mesh-file", "meshFile", filename, content)
	if err != nil {
		return err
	}
	_, err = envelope("upload-mesh-file", r, "Failed to upload mesh file")
	return err
}

// Activity is an entry for the activity log.
type Activity struct {
	ActivityType string         `json:"activity_type"`
	Action       string         `json:"action"`
	Description  string         `json:"description"`
	Status       string         `json:"status"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// LogActivity appends an entry to the user's activity log.
func (c *Client) LogActivity(ctx context.Context, a Activity) error {
	r, err := c.postJSON(ctx, "/api/activity-log", a, true)
	if err != nil {
		return err
	}
	return statusOnly("activity-log", r, "Failed to log activity")
}
