package server

import (
	"log/slog"
	"net/http"

	"pollcast/internal/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	cfg      config.Config
	log      *slog.Logger
	graph    FollowGraph
	anchor   ChainAnchor
	notifier Notifier
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	s := &Server{
		store:    NewStore(),
		db:       conn,
		cfg:      cfg,
		log:      slog.Default(),
		graph:    newStaticGraph(),
		notifier: noopNotifier{},
	}
	if cfg.GraphAPIURL != "" {
		s.graph = newGraphAPIClient(cfg.GraphAPIURL, cfg.GraphAPIKey)
	}
	if cfg.LedgerRelayURL != "" {
		s.anchor = newRelayAnchor(cfg.LedgerRelayURL, cfg.LedgerContract)
	}
	if cfg.NotifyWebhookURL != "" {
		s.notifier = newWebhookNotifier(cfg.NotifyWebhookURL)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/polls", s.handleCreatePoll)
	api.GET("/polls", s.handleListPolls)
	api.GET("/polls/:id", s.handleGetPoll)
	api.GET("/polls/:id/voters", s.handleVoters)
	api.POST("/polls/:id/save-onchain", s.handleSaveOnchain)
	api.POST("/votes", s.handleCastVote)
	api.GET("/daily", s.handleGetDaily)
	api.POST("/daily/votes", s.handleDailyVote)
	return router
}
