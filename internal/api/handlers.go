// Package api exposes the extraction pipeline over HTTP. JSON only;
// the canvas/editor frontend is a separate application.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"floorplan-extractor/internal/extraction"
	"floorplan-extractor/internal/segmentation"
	"floorplan-extractor/internal/store"
	"floorplan-extractor/internal/taxonomy"
)

// Extractor runs one extraction; satisfied by extraction.Coordinator.
type Extractor interface {
	Extract(ctx context.Context, imageBytes []byte, opts extraction.Options) (*extraction.Result, error)
}

type App struct {
	Extractor     Extractor
	Store         *store.MemoryStore
	Defaults      extraction.Options
	MaxUploadSize int64
	Validate      *validator.Validate
	Logger        *logrus.Logger
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	project := app.Store.Create(uuid.New().String())
	writeJSON(w, http.StatusCreated, project)
}

func (app *App) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := app.Store.Get(projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// extractParams are the optional form fields on the extract endpoint.
type extractParams struct {
	Conf      float64 `validate:"gte=0,lte=1"`
	IoU       float64 `validate:"gte=0,lte=1"`
	SaveDebug bool
	ProjectID string
}

func (app *App) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	params, err := app.parseExtractParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if params.ProjectID != "" {
		if _, err := app.Store.Get(params.ProjectID); err != nil {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
	}

	opts := app.Defaults
	opts.ConfThreshold = params.Conf
	opts.IoUThreshold = params.IoU
	opts.SaveDebugImages = params.SaveDebug

	result, err := app.Extractor.Extract(r.Context(), imageBytes, opts)
	if err != nil {
		if errors.Is(err, segmentation.ErrSegmentationFailure) {
			app.Logger.Errorf("Extraction failed: %v", err)
			writeError(w, http.StatusBadGateway, "segmentation failed")
			return
		}
		app.Logger.Errorf("Extraction failed: %v", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	if params.ProjectID != "" {
		if err := app.Store.SetExtraction(params.ProjectID, result); err != nil {
			app.Logger.Warnf("Failed to store extraction on project %s: %v", params.ProjectID, err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (app *App) parseExtractParams(r *http.Request) (extractParams, error) {
	params := extractParams{
		Conf:      app.Defaults.ConfThreshold,
		IoU:       app.Defaults.IoUThreshold,
		SaveDebug: app.Defaults.SaveDebugImages,
		ProjectID: r.FormValue("project_id"),
	}

	if v := r.FormValue("conf"); v != "" {
		conf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, errors.New("conf must be a number")
		}
		params.Conf = conf
	}
	if v := r.FormValue("iou"); v != "" {
		iou, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, errors.New("iou must be a number")
		}
		params.IoU = iou
	}
	if v := r.FormValue("save_debug"); v != "" {
		saveDebug, err := strconv.ParseBool(v)
		if err != nil {
			return params, errors.New("save_debug must be a boolean")
		}
		params.SaveDebug = saveDebug
	}

	if err := app.Validate.Struct(params); err != nil {
		return params, errors.New("conf and iou must be within [0,1]")
	}

	return params, nil
}

func (app *App) ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types": taxonomy.TypeIDs(),
	})
}

func (app *App) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "objectType")

	if !taxonomy.Contains(objectType) {
		writeError(w, http.StatusNotFound, "unknown object type")
		return
	}

	variants := taxonomy.VariantsFor(objectType)
	if variants == nil {
		variants = []taxonomy.ModelVariant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"object_type": objectType,
		"models":      variants,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
