package commands

import (
	"becca-bot/internal/router"

	"github.com/bwmarrin/discordgo"
)

// Descriptors maps the command table to the application commands
// Discord expects. Text commands and slash commands share one table,
// so the two modes can never drift apart.
func Descriptors(table []router.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(table))
	for _, cmd := range table {
		out = append(out, &discordgo.ApplicationCommand{
			Name:        cmd.Name(),
			Description: cmd.Description(),
		})
	}
	return out
}

// Register reconciles the global command set with the table: existing
// commands are edited in place, missing ones created, and strays that
// no longer appear in the table deleted.
func Register(session *discordgo.Session, table []router.Command) error {
	appID := session.State.User.ID
	desired := Descriptors(table)

	existing, err := session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range desired {
			if _, err := session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	wanted := make(map[string]struct{})
	for _, cmd := range desired {
		wanted[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := wanted[cmd.Name]; ok {
			continue
		}
		_ = session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}

// Unregister removes a single global command by name. Unknown names
// are not an error.
func Unregister(session *discordgo.Session, name string) error {
	appID := session.State.User.ID
	existing, err := session.ApplicationCommands(appID, "")
	if err != nil {
		return err
	}
	for _, cmd := range existing {
		if cmd.Name != name {
			continue
		}
		return session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}
