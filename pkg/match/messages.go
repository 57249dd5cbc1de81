package match

import (
	"fmt"
	"time"
)

const (
	MessagePrefix = "[UHC]"

	ProxyChannel = "BungeeCord"

	MessageStarting     = "The game is starting!"
	MessageTeleporting  = "Please wait while players are being teleported."
	MessageFinished     = "The game is finished!"
	MessagePvP          = "PvP is now enabled!"
	MessageFinalHeal    = "Final heal! Everyone has been healed."
	MessageDeathmatch   = "Deathmatch has started, fight!"
	MessageDeathmatchIn = "Deathmatch in %s"
	MessageEpisode      = "End of episode %d"
	MessageEndingIn     = "The game will end in %d seconds"
)

// FormatDuration renders a clock value the way players see it: m:ss, or
// h:mm:ss once it reaches an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
