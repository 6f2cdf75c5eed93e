package main

import (
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/logger"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/proto"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/service"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/transport"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		service.Module,
		transport.Module,
		proto.Module,
	).Run()
}
