package main

import (
	"sentinel-bot/bot"
	"sentinel-bot/command"
	"sentinel-bot/handlers"
)

func main() {
	bot.Run(handlers.Register, command.GetCommandDefinitions())
}
