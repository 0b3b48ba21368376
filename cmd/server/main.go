package main

import (
	"net/http"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/PankajKumar-11/DrawChain/internal/config"
	"github.com/PankajKumar-11/DrawChain/internal/game"
	"github.com/PankajKumar-11/DrawChain/internal/logger"
	"github.com/PankajKumar-11/DrawChain/internal/words"
)

func createServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	cfg, err := config.Load(os.Getenv("DRAWCHAIN_CONFIG"))
	if err != nil {
		panic(err)
	}

	log := logger.Setup(cfg.LogLevel)

	bank := words.NewBank()
	if bank.Len() == 0 {
		log.Fatal().Msg("word bank is empty")
	}

	registry := game.NewRegistry(cfg.Game, bank, log)
	handler := game.NewHandler(registry, log)

	r := createServer(cfg.AllowedOrigins)
	handler.Register(r)

	log.Info().Str("addr", cfg.Addr).Int("words", bank.Len()).Msg("server starting")
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
