package main

import (
	"os"

	"dealer-portal/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := logging.New("info", true)
		log.Error().Err(err).Msg("dealerctl")
		os.Exit(1)
	}
}
