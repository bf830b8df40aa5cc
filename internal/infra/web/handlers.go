package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	ports "tryonjewel-server/internal/domain/ports/usecase"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps error classes onto HTTP statuses. Provider messages
// ride along verbatim so the client sees what the provider said.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidTransition):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeJSONError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

// jobResponse is the wire shape of a job. Result URLs are resolved at
// response time, never persisted.
type jobResponse struct {
	ID           string          `json:"id"`
	Kind         model.JobKind   `json:"kind"`
	Status       model.JobStatus `json:"status"`
	Params       model.JobParams `json:"params"`
	ResultURL    string          `json:"resultUrl,omitempty"`
	ResultURLs   []string        `json:"resultUrls,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    string          `json:"createdAt"`
}

func (s *Server) toJobResponse(r *http.Request, job *model.GenerationJob) jobResponse {
	resp := jobResponse{
		ID:           job.ID,
		Kind:         job.Kind,
		Status:       job.Status,
		Params:       job.Params,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if job.Status == model.JobStatusCompleted {
		resp.ResultURLs = s.assetUC.ResolveAll(r.Context(), job.ResultPaths, job.ResultURLs)
		if len(resp.ResultURLs) > 0 {
			resp.ResultURL = resp.ResultURLs[0]
		}
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "reason": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDevToken mints a token for local development. Registered only when
// the server runs with -dev.
func (s *Server) handleDevToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}
	token, err := s.auth.Mint(req.UserID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	asset, err := s.uploadUC.Upload(r.Context(), userID, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"path":        asset.Path,
		"contentType": asset.ContentType,
		"bytes":       asset.Bytes,
		"width":       asset.Width,
		"height":      asset.Height,
	})
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, s.genUC.SubmitImage)
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, s.genUC.SubmitVideo)
}

// generateResponse is a jobResponse plus the kind-specific id alias the
// invocation contract promises.
type generateResponse struct {
	jobResponse
	ImageID string `json:"imageId,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request,
	submit func(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error)) {
	var req ports.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	job, err := submit(r.Context(), UserID(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := generateResponse{jobResponse: s.toJobResponse(r, job)}
	if job.Kind == model.JobKindVideo {
		resp.VideoID = job.ID
	} else {
		resp.ImageID = job.ID
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCheckVideoStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		writeJSONError(w, http.StatusBadRequest, "jobId is required")
		return
	}
	res, err := s.statusUC.CheckVideo(r.Context(), req.JobID, UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := s.jobUC.List(r.Context(), UserID(r.Context()), offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.toJobResponse(r, j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobUC.Get(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toJobResponse(r, job))
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobUC.Delete(r.Context(), chi.URLParam(r, "id"), UserID(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, http.StatusBadRequest, "path is required")
		return
	}
	url, err := s.assetUC.ResolveURL(r.Context(), path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

type sceneResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prompt     string `json:"prompt"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.catalogUC.ListScenes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]sceneResponse, 0, len(scenes))
	for _, sc := range scenes {
		resp := sceneResponse{ID: sc.ID, Name: sc.Name, Prompt: sc.Prompt}
		if sc.PreviewPath != "" {
			resp.PreviewURL, _ = s.assetUC.ResolveURL(r.Context(), sc.PreviewPath)
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": out})
}

type modelResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Gender     string `json:"gender,omitempty"`
	SkinTone   string `json:"skinTone,omitempty"`
	HairStyle  string `json:"hairStyle,omitempty"`
	HairColor  string `json:"hairColor,omitempty"`
	Age        string `json:"age,omitempty"`
	Attributes string `json:"attributes,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Shared     bool   `json:"shared"`
}

func (s *Server) toModelResponse(r *http.Request, m *model.UserModel) modelResponse {
	resp := modelResponse{
		ID:         m.ID,
		Name:       m.Name,
		Gender:     m.Gender,
		SkinTone:   m.SkinTone,
		HairStyle:  m.HairStyle,
		HairColor:  m.HairColor,
		Age:        m.Age,
		Attributes: m.Attributes,
		Shared:     m.UserID == "",
	}
	if m.PreviewPath != "" {
		resp.PreviewURL, _ = s.assetUC.ResolveURL(r.Context(), m.PreviewPath)
	}
	return resp
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.catalogUC.ListUserModels(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, s.toModelResponse(r, m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": out})
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Gender     string `json:"gender"`
		SkinTone   string `json:"skinTone"`
		HairStyle  string `json:"hairStyle"`
		HairColor  string `json:"hairColor"`
		Age        string `json:"age"`
		Attributes string `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.catalogUC.CreateUserModel(r.Context(), &model.UserModel{
		UserID:     UserID(r.Context()),
		Name:       req.Name,
		Gender:     req.Gender,
		SkinTone:   req.SkinTone,
		HairStyle:  req.HairStyle,
		HairColor:  req.HairColor,
		Age:        req.Age,
		Attributes: req.Attributes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toModelResponse(r, created))
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogUC.DeleteUserModel(r.Context(), chi.URLParam(r, "id"), UserID(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
