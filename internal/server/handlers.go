package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/jobs"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/ranking"
	"github.com/spigell/ats-scorer/internal/resume"
)

type scoreRequest struct {
	Resume         any    `json:"resume"`
	JobDescription string `json:"jobDescription" binding:"required"`
}

type rankJob struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

type rankRequest struct {
	Resume       any       `json:"resume"`
	Jobs         []rankJob `json:"jobs" binding:"required,min=1,max=100,dive"`
	MinimumScore int       `json:"minimumScore" binding:"gte=0,lte=100"`
}

type rankResponse struct {
	Total   int              `json:"total"`
	Kept    int              `json:"kept"`
	Results []ranking.Ranked `json:"results"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"aiEnabled": h.scorer != nil && h.scorer.AIEnabled(),
	})
}

func (h *handler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := h.scorer.ComputeScoreRaw(c.Request.Context(), req.Resume, req.JobDescription)
	if err != nil {
		requestLogger(h.logger, c).Warn("scoring failed", append(logger.ScoringFields("", ats.Classify(err)), zap.Error(err))...)
		respondScoringError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handler) rank(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	data, err := resume.Decode(req.Resume)
	if err != nil {
		respondScoringError(c, err)
		return
	}

	list, err := toJobs(req.Jobs)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	total := list.Len()

	steps := ranking.DefaultSteps()
	ranking.DisableByName(steps, "exclude_file", "not available over http")

	ranked, err := ranking.Rank(c.Request.Context(),
		&ranking.Config{MinimumScore: req.MinimumScore, Concurrency: h.concurrency},
		ranking.Deps{Logger: requestLogger(h.logger, c), Scorer: h.scorer, Resume: data},
		steps,
		list,
	)
	if err != nil {
		requestLogger(h.logger, c).Warn("ranking failed", zap.Error(err))
		respondScoringError(c, err)
		return
	}

	c.JSON(http.StatusOK, rankResponse{Total: total, Kept: len(ranked), Results: ranked})
}

// toJobs converts request items to jobs. Missing IDs are generated from the
// position; a repeated ID is an error.
func toJobs(items []rankJob) (*jobs.Jobs, error) {
	list := &jobs.Jobs{Items: make([]*jobs.Job, 0, len(items))}
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("job-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate job id %q", id)
		}
		seen[id] = true

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = jobs.TitleFromText(item.Text)
		}

		list.Items = append(list.Items, &jobs.Job{ID: id, Title: title, Text: item.Text, Source: "request"})
	}
	return list, nil
}
