package main

import (
	"github.com/studygraph/backend/internal/server"
	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
