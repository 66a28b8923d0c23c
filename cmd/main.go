// @title                       roastlog API
// @version                     1.0
// @description                 Roast session event log with derived duration, milestone, rate-of-rise and weight-loss metrics.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"os"

	_ "roastlog/docs"
	"roastlog/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// config may not have loaded; fall back to the default stdout logger
		logger.Get(logger.ErrorLevel).Errorw("command_failed", "err", err)
		os.Exit(1)
	}
}
