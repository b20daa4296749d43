// Package render turns game events and views into chat-ready text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
)

// Announcement renders one event as a chat message
func Announcement(ev models.Event) string {
	switch ev.Kind {
	case models.EventPlayerJoined:
		return fmt.Sprintf("%s joined the lobby (%d/%d)", ev.Actor, ev.Count, ev.Total)
	case models.EventPlayerLeft:
		return fmt.Sprintf("%s left the game (%d/%d)", ev.Actor, ev.Count, ev.Total)
	case models.EventGameStarted:
		return fmt.Sprintf("The game has started! There %s among us. The crew has %d tasks to finish.",
			plural(ev.Count, "is 1 impostor", "are %d impostors"), ev.Total)
	case models.EventRoleAssigned:
		return roleMessage(ev)
	case models.EventTaskCompleted:
		return fmt.Sprintf("A task was completed. Task progress: %s", ProgressBar(ev.Count, ev.Total))
	case models.EventPlayerKilled:
		return fmt.Sprintf("%s killed %s in %s.", ev.Actor, ev.Target, ev.Room)
	case models.EventKillBlocked:
		return fmt.Sprintf("A guardian angel's shield saved %s from %s!", ev.Target, ev.Actor)
	case models.EventShieldCast:
		return fmt.Sprintf("%s is now shielded. Charges left: %d", ev.Target, ev.Count)
	case models.EventVentNoise:
		return fmt.Sprintf("You hear a noise from the vents near %s...", ev.Room)
	case models.EventBodyReported:
		return fmt.Sprintf("%s reported a body in %s! Dead: %s. Discuss and vote.", ev.Actor, ev.Room, strings.Join(ev.Names, ", "))
	case models.EventMeetingCalled:
		return fmt.Sprintf("%s called an emergency meeting! Discuss and vote.", ev.Actor)
	case models.EventVoteCast:
		return fmt.Sprintf("%s voted (%d/%d)", ev.Actor, ev.Count, ev.Total)
	case models.EventPlayerEjected:
		if ev.Role.IsImpostor() {
			return fmt.Sprintf("%s was ejected with %s. %s was an impostor.", ev.Target, plural(ev.Count, "1 vote", "%d votes"), ev.Target)
		}
		return fmt.Sprintf("%s was ejected with %s. %s was not an impostor (%s).", ev.Target, plural(ev.Count, "1 vote", "%d votes"), ev.Target, ev.Role)
	case models.EventNoEjection:
		return fmt.Sprintf("No one was ejected (%s, %s).", ev.Reason, plural(ev.Count, "1 skip", "%d skips"))
	case models.EventSabotageStarted:
		return fmt.Sprintf("Sabotage! %s in %s. %s", sabotageName(ev.Sabotage), ev.Room, sabotageHint(ev))
	case models.EventSabotageFixed:
		return fmt.Sprintf("%s fixed the %s sabotage.", ev.Actor, ev.Sabotage)
	case models.EventSabotageExpired:
		if ev.Sabotage.Fatal() {
			return fmt.Sprintf("The %s sabotage ran out!", ev.Sabotage)
		}
		return fmt.Sprintf("The %s sabotage wore off.", ev.Sabotage)
	case models.EventGameEnded:
		return endMessage(ev)
	default:
		return string(ev.Kind)
	}
}

func roleMessage(ev models.Event) string {
	switch ev.Role {
	case models.RoleImpostor:
		msg := "You are an Impostor. Kill crewmates, sabotage and deceive to win!"
		if len(ev.Names) > 1 {
			msg += " Impostors: " + strings.Join(ev.Names, ", ")
		}
		return msg
	case models.RoleScientist:
		return "You are a Scientist. You finish tasks faster. Complete your tasks to win!"
	case models.RoleEngineer:
		return "You are an Engineer. You can use the vents and fix sabotages faster."
	case models.RoleGuardianAngel:
		return "You are a Guardian Angel. Shield crewmates from the next kill attempt."
	default:
		return "You are a Crewmate. Complete your tasks and find the impostors!"
	}
}

func sabotageName(s models.Sabotage) string {
	switch s {
	case models.SabotageLights:
		return "The lights are out"
	case models.SabotageOxygen:
		return "Oxygen is depleting"
	case models.SabotageReactor:
		return "The reactor is melting down"
	case models.SabotageComms:
		return "Communications are down"
	case models.SabotageDoors:
		return "The doors are locked"
	default:
		return string(s)
	}
}

func sabotageHint(ev models.Event) string {
	if ev.Sabotage.Fatal() {
		return fmt.Sprintf("Fix it within %ds or the impostors win!", ev.Count)
	}
	if ev.Sabotage.BlocksMovement() {
		return "Nobody can move until it is fixed or the doors unlock."
	}
	return fmt.Sprintf("It lasts %ds unless someone fixes it.", ev.Count)
}

func endMessage(ev models.Event) string {
	var head string
	switch ev.Winner {
	case models.WinnerCrewmates:
		head = "Crewmates win"
	case models.WinnerImpostors:
		head = "Impostors win"
	default:
		head = "Game over"
	}
	msg := head + ": " + ev.Reason + "."
	if len(ev.Names) > 0 {
		msg += " The impostors were " + strings.Join(ev.Names, ", ") + "."
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	if strings.Contains(many, "%d") {
		return fmt.Sprintf(many, n)
	}
	return many
}

// ProgressBar draws task progress like [#####-----] 5/10
func ProgressBar(done, total int) string {
	const width = 10
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "] " +
		strconv.Itoa(done) + "/" + strconv.Itoa(total)
}

// Roster lists the players of a game as its viewer sees them
func Roster(pv session.PublicView) string {
	var b strings.Builder
	b.WriteString("Players (")
	b.WriteString(strconv.Itoa(len(pv.Players)))
	b.WriteString("/")
	b.WriteString(strconv.Itoa(pv.MaxPlayers))
	b.WriteString(")\n")
	for _, p := range pv.Players {
		b.WriteString("- ")
		b.WriteString(p.Name)
		if p.Bot {
			b.WriteString(" [bot]")
		}
		if !p.Alive {
			b.WriteString(" (dead)")
		}
		if p.Role != "" {
			b.WriteString(" - ")
			b.WriteString(string(p.Role))
		}
		if pv.Phase.InProgress() && p.Total > 0 {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(p.Completed))
			b.WriteString("/")
			b.WriteString(strconv.Itoa(p.Total))
		}
		b.WriteString("\n")
	}
	if pv.Total > 0 {
		b.WriteString("Tasks ")
		b.WriteString(ProgressBar(pv.Completed, pv.Total))
		b.WriteString("\n")
	}
	return b.String()
}

// Room describes a player's surroundings
func Room(rv session.RoomView) string {
	var b strings.Builder
	if rv.InVent {
		fmt.Fprintf(&b, "You are hiding in the vent of %s.\n", rv.Room)
	} else {
		fmt.Fprintf(&b, "You are in %s.\n", rv.Room)
	}
	fmt.Fprintf(&b, "Exits: %s\n", listOrNone(rv.Neighbors))
	if len(rv.Vents) > 0 {
		fmt.Fprintf(&b, "Vents lead to: %s\n", strings.Join(rv.Vents, ", "))
	}
	fmt.Fprintf(&b, "Players here: %s\n", listOrNone(rv.Players))
	if len(rv.Bodies) > 0 {
		fmt.Fprintf(&b, "Bodies: %s\n", strings.Join(rv.Bodies, ", "))
	}
	if len(rv.Tasks) > 0 {
		fmt.Fprintf(&b, "You have %s here.\n", plural(len(rv.Tasks), "1 task", "%d tasks"))
	}
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
