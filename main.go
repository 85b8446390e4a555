package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scrumkit/planning-poker/internal/bus"
	"github.com/scrumkit/planning-poker/internal/config"
	"github.com/scrumkit/planning-poker/internal/handlers"
	"github.com/scrumkit/planning-poker/internal/session"
	"github.com/scrumkit/planning-poker/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatal("Invalid log level: ", err)
	}
	logrus.SetLevel(level)

	b := bus.New()
	st := store.New(b)
	api := session.New(st, cfg.Deck)
	h := handlers.New(api, b, cfg.BaseURL)

	r := gin.Default()
	h.Register(r)

	logrus.WithFields(logrus.Fields{"addr": cfg.Addr, "deck": cfg.Deck}).Info("planning poker server listening")
	if err := r.Run(cfg.Addr); err != nil {
		logrus.Fatal("Server exited: ", err)
	}
}
