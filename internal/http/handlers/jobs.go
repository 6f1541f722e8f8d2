package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"shotforge/internal/domain"
)

type startJobRequest struct {
	JobType          string   `json:"jobType"`
	ShotCount        int      `json:"shotCount"`
	TemplateIDs      []string `json:"templateIds"`
	QualityThreshold float64  `json:"qualityThreshold"`
	MaxRetries       int      `json:"maxRetries"`
	Seed             int64    `json:"seed"`
	StrictQuality    bool     `json:"strictQuality"`
}

type progressResponse struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	Percentage  int    `json:"percentage"`
	CurrentTask string `json:"currentTask"`
}

type generatedImageResponse struct {
	ShotTemplateID   string   `json:"shotTemplateId"`
	AssetRef         string   `json:"assetRef"`
	QualityScore     float64  `json:"qualityScore"`
	ConsistencyScore *float64 `json:"consistencyScore,omitempty"`
	PromptUsed       string   `json:"promptUsed"`
	AttemptsUsed     int      `json:"attemptsUsed"`
	Note             string   `json:"note,omitempty"`
}

type failedAttemptResponse struct {
	ShotTemplateID string `json:"shotTemplateId"`
	Class          string `json:"class"`
	Error          string `json:"error"`
	Attempts       int    `json:"attempts"`
}

type resultsResponse struct {
	GeneratedImages []generatedImageResponse `json:"generatedImages"`
	FailedImages    []failedAttemptResponse  `json:"failedImages"`
	TotalAttempts   int                      `json:"totalAttempts"`
	ElapsedMs       int64                    `json:"elapsedMs"`
}

type jobResponse struct {
	JobID       string           `json:"jobId"`
	SubjectID   string           `json:"subjectId"`
	JobType     string           `json:"jobType"`
	Status      string           `json:"status"`
	Progress    progressResponse `json:"progress"`
	Results     *resultsResponse `json:"results,omitempty"`
	Error       string           `json:"error,omitempty"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// StartJob accepts a generation request and responds with the job id before
// any external work begins.
func (a *App) StartJob(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subject_id")
	if subjectID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "subject_id required")
		return
	}
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	jobType := domain.JobType(req.JobType)
	if jobType == "" {
		jobType = domain.JobTypeCoreSet
	}
	switch jobType {
	case domain.JobTypeCoreSet, domain.JobTypeCustomSet, domain.JobTypeSingleImage:
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported job type")
		return
	}

	jobID, err := a.Jobs.StartJob(r.Context(), subjectID, jobType, domain.RequestParams{
		ShotCount:        req.ShotCount,
		TemplateIDs:      req.TemplateIDs,
		QualityThreshold: req.QualityThreshold,
		MaxRetries:       req.MaxRetries,
		Seed:             req.Seed,
		StrictQuality:    req.StrictQuality,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"jobId": jobID, "status": string(domain.JobStatusPending)})
}

// JobStatus returns the current snapshot of a job.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Jobs.GetStatus(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, toJobResponse(job))
}

// CancelJob requests cooperative cancellation of a job.
func (a *App) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	cancelled, err := a.Jobs.CancelJob(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"jobId": jobID, "cancelled": cancelled})
}

// ListJobs returns a filtered page of jobs.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.JobFilter{
		SubjectID: q.Get("subjectId"),
		Status:    domain.JobStatus(q.Get("status")),
		JobType:   domain.JobType(q.Get("jobType")),
		Page:      queryInt(q.Get("page"), 1),
		PageSize:  queryInt(q.Get("pageSize"), 20),
	}
	jobs, total, err := a.Jobs.ListJobs(r.Context(), filter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}
	items := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, toJobResponse(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{
		"jobs":     items,
		"total":    total,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

func toJobResponse(job *domain.GenerationJob) jobResponse {
	resp := jobResponse{
		JobID:     job.JobID,
		SubjectID: job.SubjectID,
		JobType:   string(job.JobType),
		Status:    string(job.Status),
		Progress: progressResponse{
			Current:     job.Progress.Current,
			Total:       job.Progress.Total,
			Percentage:  job.Progress.Percentage,
			CurrentTask: job.Progress.CurrentTask,
		},
		Error:       job.Error,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Results != nil {
		results := resultsResponse{
			GeneratedImages: make([]generatedImageResponse, 0, len(job.Results.GeneratedImages)),
			FailedImages:    make([]failedAttemptResponse, 0, len(job.Results.FailedImages)),
			TotalAttempts:   job.Results.TotalAttempts,
			ElapsedMs:       job.Results.ElapsedMs,
		}
		for _, img := range job.Results.GeneratedImages {
			results.GeneratedImages = append(results.GeneratedImages, toImageResponse(img))
		}
		for _, failed := range job.Results.FailedImages {
			results.FailedImages = append(results.FailedImages, failedAttemptResponse{
				ShotTemplateID: failed.ShotTemplateID,
				Class:          string(failed.Class),
				Error:          failed.Error,
				Attempts:       failed.Attempts,
			})
		}
		resp.Results = &results
	}
	return resp
}

func toImageResponse(img domain.GeneratedImage) generatedImageResponse {
	return generatedImageResponse{
		ShotTemplateID:   img.ShotTemplateID,
		AssetRef:         img.AssetRef,
		QualityScore:     img.QualityScore,
		ConsistencyScore: img.ConsistencyScore,
		PromptUsed:       img.PromptUsed,
		AttemptsUsed:     img.AttemptsUsed,
		Note:             img.Note,
	}
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return fallback
}
