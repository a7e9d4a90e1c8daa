package server

import (
	"errors"
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/middleware"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type LadderServer struct {
	verification *service.VerificationService
	matches      *service.MatchService
	leaderboard  *service.LeaderboardService
	logger       zerolog.Logger
}

func NewLadderServer(verification *service.VerificationService, matches *service.MatchService, leaderboard *service.LeaderboardService, logger zerolog.Logger) *LadderServer {
	return &LadderServer{
		verification: verification,
		matches:      matches,
		leaderboard:  leaderboard,
		logger:       logger,
	}
}

func (s *LadderServer) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(s.logger))

	router.GET("/healthz", s.health)

	api := router.Group("/api")
	{
		api.GET("/leaderboard", s.getLeaderboard)

		api.GET("/players/:id", s.getPlayer)
		api.GET("/players/:id/history", s.getHistory)
		api.POST("/players/:id/verify", s.verify)
		api.POST("/players/:id/manual-rank", s.manualRank)

		api.GET("/matches", s.listMatches)
		api.GET("/matches/:id", s.getMatch)
		api.POST("/matches", s.reportMatch)

		api.POST("/queue/balance", s.balanceQueue)
	}

	return router
}

func (s *LadderServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ladder-tracker",
	})
}

func (s *LadderServer) getLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	players, err := s.leaderboard.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]playerJSON, len(players))
	for i, p := range players {
		out[i] = toPlayerJSON(p)
	}
	c.JSON(http.StatusOK, gin.H{
		"leaderboard": out,
		"total":       len(out),
	})
}

func (s *LadderServer) getPlayer(c *gin.Context) {
	profile, err := s.leaderboard.Player(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileJSON(profile))
}

func (s *LadderServer) getHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := s.leaderboard.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player_id": c.Param("id"),
		"history":   toHistoryJSON(entries),
	})
}

func (s *LadderServer) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := domain.Game(req.Game)
	out, err := s.verification.Link(c.Request.Context(), c.Param("id"), game, req.Account)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeJSON(game, out))
}

func (s *LadderServer) manualRank(c *gin.Context) {
	var req manualRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := domain.Game(req.Game)
	out, err := s.verification.ManualEntry(c.Request.Context(), c.Param("id"), game, req.Rank)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeJSON(game, out))
}

func (s *LadderServer) listMatches(c *gin.Context) {
	matches, err := s.leaderboard.RecentMatches(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]matchJSON, len(matches))
	for i := range matches {
		out[i] = toMatchJSON(&matches[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"matches": out,
		"total":   len(out),
	})
}

func (s *LadderServer) getMatch(c *gin.Context) {
	m, err := s.leaderboard.Match(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchJSON(m))
}

func (s *LadderServer) reportMatch(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.matches.Report(c.Request.Context(), req.toDomain())
	if err != nil {
		if m != nil {
			// the match is recorded but some players were not updated
			s.logger.Error().Err(err).Str("match_id", m.MatchID).Msg("match partially applied")
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMatchJSON(m))
}

func (s *LadderServer) balanceQueue(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := balance.ModeAuto
	if req.Mode != "" {
		m, err := balance.ParseMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mode = m
	}

	m, teams, err := s.matches.CreateFromQueue(c.Request.Context(), domain.Game(req.Game), req.Players, mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBalanceJSON(m, teams))
}

func (s *LadderServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log := zerolog.Ctx(c.Request.Context())
		if log.GetLevel() == zerolog.Disabled {
			log = &s.logger
		}
		log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{
			"error":      "internal error",
			"request_id": middleware.GetRequestID(c.Request.Context()),
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidMatch),
		errors.Is(err, service.ErrInvalidQueue),
		errors.Is(err, service.ErrInvalidAccount),
		errors.Is(err, service.ErrUnknownGame):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrNotLinked),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMatchReported):
		return http.StatusConflict
	case errors.Is(err, service.ErrRankUnknown):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
