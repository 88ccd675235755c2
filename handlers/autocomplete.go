package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// watchlistActions are the incident kinds the /watchlist filter accepts.
var watchlistActions = []string{"watchlist", "delete", "ban", "ban_failed", "join"}

// HandleAutocomplete serves option completion for the /watchlist command.
func HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "watchlist" {
		return
	}

	var typed string
	for _, opt := range data.Options {
		if opt.Name == "action" && opt.Focused {
			typed = opt.StringValue()
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, action := range watchlistActions {
		if typed == "" || strings.HasPrefix(action, strings.ToLower(typed)) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  action,
				Value: action,
			})
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to autocomplete: %v", err)
	}
}
