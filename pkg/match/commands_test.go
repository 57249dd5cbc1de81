package match

import (
	"testing"

	"github.com/cfoust/uhc/pkg/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.LoadNewGame())

	var replies []string
	admin := Admin{
		Name: "console",
		Reply: func(message string) {
			replies = append(replies, message)
		},
	}

	assert.True(t, h.Commands.CanHandle([]string{"#uhc", "start"}))
	assert.True(t, h.Commands.CanHandle([]string{"dm"}))
	assert.False(t, h.Commands.CanHandle([]string{"restart"}))
	assert.Equal(t, "uhc: deathmatch, end, pvp, scenario, start, status", h.Commands.Help())

	// nothing to end yet
	assert.Error(t, h.Commands.Handle(admin, []string{"end"}))

	require.NoError(t, h.Commands.Handle(admin, []string{"pvp"}))
	assert.Equal(t, []string{"pvp=false"}, replies)

	h.scenarios.active = []string{"cutclean"}
	require.NoError(t, h.Commands.Handle(admin, []string{"scenario", "cutclean"}))
	require.NoError(t, h.Commands.Handle(admin, []string{"scenario", "timber"}))
	assert.Equal(t, []string{"cutclean is active", "timber is inactive"}, replies[1:])
	assert.Error(t, h.Commands.Handle(admin, []string{"scenario"}))

	require.NoError(t, h.Commands.Handle(admin, []string{"#uhc", "start"}))
	assert.Equal(t, game.Starting, h.State())
	assert.ErrorIs(t, h.Commands.Handle(admin, []string{"start"}), ErrInvalidState)

	assert.ErrorIs(t, h.Commands.Handle(admin, []string{"pvp", "on"}), ErrInvalidState)

	require.NoError(t, h.StartWatchingEndOfGame())
	require.NoError(t, h.Commands.Handle(admin, []string{"pvp", "on"}))
	assert.True(t, h.PvP())
	assert.Error(t, h.Commands.Handle(admin, []string{"pvp", "maybe"}))

	require.NoError(t, h.Commands.Handle(admin, []string{"status"}))
	assert.Contains(t, replies[len(replies)-1], "state=PLAYING")

	require.NoError(t, h.Commands.Handle(admin, []string{"dm"}))
	assert.Equal(t, game.Deathmatch, h.State())

	require.NoError(t, h.Commands.Handle(admin, []string{"end"}))
	assert.Equal(t, game.Ended, h.State())
}
