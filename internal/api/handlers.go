package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/repository"
	"github.com/user/job-harvester/internal/usecase"
	"go.uber.org/zap"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.JobFilter{
		Page:             atoiOrZero(q.Get("page")),
		Limit:            atoiOrZero(q.Get("limit")),
		Title:            q.Get("title"),
		Location:         q.Get("location"),
		Company:          q.Get("company"),
		Experience:       q.Get("experience"),
		Source:           q.Get("source"),
		SearchedTitle:    q.Get("searched_title"),
		SearchedLocation: q.Get("searched_location"),
	}

	page, err := s.jobs.List(r.Context(), filter)
	if err != nil {
		s.serverError(w, "failed to list jobs", err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}

	job, err := s.jobs.Get(r.Context(), id)
	if errors.Is(err, repository.ErrJobNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		s.serverError(w, "failed to get job", err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobCategories(w http.ResponseWriter, r *http.Request) {
	titles, err := s.jobs.DistinctSearchedTitles(r.Context())
	if err != nil {
		s.serverError(w, "failed to list job categories", err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, titles)
}

func (s *Server) handleJobLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.jobs.DistinctSearchedLocations(r.Context())
	if err != nil {
		s.serverError(w, "failed to list job locations", err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, locations)
}

func (s *Server) handleRunScraper(w http.ResponseWriter, r *http.Request) {
	// The run outlives a dropped client connection.
	summary, err := s.runner.RunDefault(context.WithoutCancel(r.Context()))
	if errors.Is(err, usecase.ErrRunInProgress) {
		s.respondWithError(w, http.StatusConflict, "A scraper run is already in progress")
		return
	}
	if err != nil {
		s.serverError(w, "scraper run failed", err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Scraper completed successfully. Added %d new jobs from LinkedIn.", summary.Inserted),
	})
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runner.LastRun(r.Context())
	if errors.Is(err, repository.ErrNoRuns) {
		s.respondWithError(w, http.StatusNotFound, "No scraper run recorded")
		return
	}
	if err != nil {
		s.serverError(w, "failed to load last run", err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(s.checks))
	healthy := true
	for name, dep := range s.checks {
		if err := dep.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	s.respondWithError(w, http.StatusInternalServerError, "Server error")
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"message": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
