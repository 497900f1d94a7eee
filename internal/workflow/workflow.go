// Package workflow runs a CDTire submission against the backend: validate
// the form, generate parameters, fill and save the protocol template, then
// extract and store the resulting run matrix.
package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ukaji3/cdtire-go/internal/backend"
	"github.com/ukaji3/cdtire-go/pkg/cdtire"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/form"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Stage names a step of Submission.Run.
type Stage string

// Stages in execution order.
const (
	StageValidate           Stage = "validate"
	StageSaveDraft          Stage = "save-draft"
	StageCheckProject       Stage = "check-project"
	StageUploadMesh         Stage = "upload-mesh"
	StageGenerateParameters Stage = "generate-parameters"
	StageFetchTemplate      Stage = "fetch-template"
	StageFillTemplate       Stage = "fill-template"
	StageSaveResult         Stage = "save-result"
	StageFetchResult        Stage = "fetch-result"
	StageExtract            Stage = "extract"
	StageStoreData          Stage = "store-data"
	StageCreateFolders      Stage = "create-folders"
	StageStoreMatrix        Stage = "store-matrix"
	StageSummary            Stage = "summary"
)

// MeshProtocol is the protocol a mesh upload is logged under.
const MeshProtocol = "MF5.2"

// Backend is the subset of the backend API a submission uses.
type Backend interface {
	CheckProjectExists(ctx context.Context, projectName, protocol string) (backend.ProjectStatus, error)
	GenerateParameters(ctx context.Context, params map[string]string) error
	ReadProtocolExcel(ctx context.Context) ([]byte, error)
	SaveExcel(ctx context.Context, workbook io.Reader) error
	ReadOutputExcel(ctx context.Context) ([]byte, error)
	StoreData(ctx context.Context, records []models.Record) error
	CreateProtocolFolders(ctx context.Context, projectName, protocol string) error
	StoreProjectMatrix(ctx context.Context, projectID, protocol string) error
	Summary(ctx context.Context) ([]backend.SummaryItem, error)
	SaveDraft(ctx context.Context, projectID, protocol string, inputs map[string]any) error
	UploadMeshFile(ctx context.Context, filename string, content io.Reader) error
	LogActivity(ctx context.Context, a backend.Activity) error
}

// Submission holds what a run needs besides the form inputs.
type Submission struct {
	Backend     Backend
	ProjectName string
	// ProjectID enables draft saving and the project matrix copy.
	ProjectID string
	Protocol  string
	// Confirm is asked whether to replace an existing project. A nil
	// Confirm declines.
	Confirm func(folderName string) bool
	Options cdtire.Options
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Replaced bool
	Workbook *models.WorkbookData
	Records  []models.Record
	// Summary is nil when the summary could not be fetched.
	Summary []backend.SummaryItem
}

// Run executes the stages in order and stops at the first failing one,
// returning a *StageError. Draft saving, activity logging and the final
// summary are best effort.
func (s *Submission) Run(ctx context.Context, in form.Inputs) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := logging.Logger().With(
		slog.String("run_id", res.RunID),
		slog.String("project", s.ProjectName),
		slog.String("protocol", s.Protocol))

	fail := func(stage Stage, err error) (*Result, error) {
		log.Error("submission failed", slog.String("stage", string(stage)), slog.Any("error", err))
		return nil, &StageError{Stage: stage, Err: err}
	}

	if err := in.Validate(); err != nil {
		return fail(StageValidate, err)
	}

	if s.ProjectID != "" {
		if err := s.Backend.SaveDraft(ctx, s.ProjectID, s.Protocol, in.Collect(form.DraftFields)); err != nil {
			log.Warn("failed to save inputs for project", slog.String("project_id", s.ProjectID), slog.Any("error", err))
		}
	}

	st, err := s.Backend.CheckProjectExists(ctx, s.ProjectName, s.Protocol)
	if err != nil {
		return fail(StageCheckProject, err)
	}
	if st.Exists {
		if s.Confirm == nil || !s.Confirm(st.FolderName) {
			log.Info("replacement declined", slog.String("folder", st.FolderName))
			return nil, &StageError{Stage: StageCheckProject, Err: ErrCancelled}
		}
		res.Replaced = true
	}

	if mesh := in.Trimmed(form.MeshFile); mesh != "" {
		if err := s.uploadMesh(ctx, log, mesh); err != nil {
			return fail(StageUploadMesh, err)
		}
	}

	if err := s.Backend.GenerateParameters(ctx, in.ParameterData()); err != nil {
		return fail(StageGenerateParameters, err)
	}

	template, err := s.Backend.ReadProtocolExcel(ctx)
	if err != nil {
		return fail(StageFetchTemplate, err)
	}

	filled, err := cdtire.FillTemplateBytes(template, in.Replacements())
	if err != nil {
		return fail(StageFillTemplate, err)
	}

	if err := s.Backend.SaveExcel(ctx, bytes.NewReader(filled)); err != nil {
		return fail(StageSaveResult, err)
	}

	output, err := s.Backend.ReadOutputExcel(ctx)
	if err != nil {
		return fail(StageFetchResult, err)
	}

	wb, err := cdtire.ExtractReader(bytes.NewReader(output), "output.xlsx", s.Options)
	if err != nil {
		return fail(StageExtract, err)
	}
	res.Workbook = wb
	res.Records = wb.Records()

	if err := s.Backend.StoreData(ctx, res.Records); err != nil {
		return fail(StageStoreData, err)
	}

	if err := s.Backend.CreateProtocolFolders(ctx, s.ProjectName, s.Protocol); err != nil {
		return fail(StageCreateFolders, err)
	}

	if s.ProjectID != "" {
		if err := s.Backend.StoreProjectMatrix(ctx, s.ProjectID, s.Protocol); err != nil {
			return fail(StageStoreMatrix, err)
		}
	}

	summary, err := s.Backend.Summary(ctx)
	if err != nil {
		log.Warn("unable to load test summary", slog.Any("error", err))
	} else {
		res.Summary = summary
	}

	log.Info("submission complete", slog.Int("records", len(res.Records)))
	return res, nil
}

func (s *Submission) uploadMesh(ctx context.Context, log *slog.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mesh file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	if err := s.Backend.UploadMeshFile(ctx, name, f); err != nil {
		return err
	}

	err = s.Backend.LogActivity(ctx, backend.Activity{
		ActivityType: "File",
		Action:       "Mesh File Uploaded",
		Description:  fmt.Sprintf("Uploaded mesh file %q for %s protocol", name, MeshProtocol),
		Status:       "success",
		Metadata:     map[string]any{"filename": name, "protocol": MeshProtocol},
	})
	if err != nil {
		log.Warn("failed to log mesh upload activity", slog.Any("error", err))
	}
	return nil
}
