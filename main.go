package main

import (
	_ "time/tzdata"

	"github.com/MyelinBots/guildbot-go/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("guildbot exited")
	}
}
