package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"citykiller/internal/catalog"
	"citykiller/internal/config"
	"citykiller/internal/engine"
	"citykiller/internal/logs"
	"citykiller/internal/server"
)

//go:embed web/static
var static embed.FS

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	port := flag.Int("port", 0, "server port, overrides the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *port > 0 {
		conf.Server.Port = *port
	}
	if err := logs.Init("citykiller", conf.Log); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logs.Sync()

	deck, err := catalog.Citizens(conf.Game.CitizensFile)
	if err != nil {
		logs.Fatal("load citizens", zap.String("file", conf.Game.CitizensFile), zap.Error(err))
	}
	groups, err := catalog.Groups(conf.Game.GroupsFile)
	if err != nil {
		logs.Fatal("load groups", zap.String("file", conf.Game.GroupsFile), zap.Error(err))
	}

	seed := conf.Game.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	game := engine.DefaultConfig()
	game.Placement = conf.Game.Placement()
	game.Groups = groups
	game.Strict = conf.Game.StrictPlacement
	placer := engine.NewPlacer(engine.NewRand(seed), game.Placement)

	sub, err := fs.Sub(static, "web/static")
	if err != nil {
		logs.Fatal("static fs", zap.Error(err))
	}

	logs.Info("deck loaded",
		zap.Int("citizens", len(deck)),
		zap.Int("jobs", groups.Len()),
		zap.Uint64("seed", seed),
		zap.Bool("strict", game.Strict))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(conf.Server, game, deck, placer, sub)
	logs.Info("open /api/create to deal a new board", zap.String("addr", conf.Server.Addr()))
	if err := srv.Start(ctx); err != nil {
		logs.Fatal("server error", zap.Error(err))
	}
}
