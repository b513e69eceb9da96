package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotRecognizedAsCommand(t *testing.T) {
	_, err := Parse("hello there")
	require.Error(t, err)
	assert.True(t, NotRecognizedAsCommand(err))
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/bogus")
	require.Error(t, err)
	assert.False(t, NotRecognizedAsCommand(err))
	assert.Contains(t, err.Error(), "unknown command")
}

func TestParseSimpleNoArgCommands(t *testing.T) {
	names := map[string]Name{
		"/exit": Exit, "/back": Back, "/users": Users, "/themes": Themes,
		"/quiet": Quiet, "/shrug": Shrug, "/help": Help, "/version": Version,
		"/uptime": Uptime, "/banned": Banned,
	}
	for line, want := range names {
		cmd, err := Parse(line)
		require.NoError(t, err, line)
		assert.Equal(t, want, cmd.Name, line)
	}
}

func TestParseAwayRequiresReason(t *testing.T) {
	_, err := Parse("/away")
	require.Error(t, err)

	cmd, err := Parse("/away lunch break")
	require.NoError(t, err)
	assert.Equal(t, Away, cmd.Name)
	assert.Equal(t, "lunch break", cmd.Body)
}

func TestParseRenameRequiresName(t *testing.T) {
	_, err := Parse("/name")
	require.Error(t, err)

	cmd, err := Parse("/name bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", cmd.Arg0)
}

func TestParseMsgRequiresUserAndBody(t *testing.T) {
	_, err := Parse("/msg")
	require.Error(t, err)

	_, err = Parse("/msg bob")
	require.Error(t, err)

	cmd, err := Parse("/msg bob hi there")
	require.NoError(t, err)
	assert.Equal(t, Msg, cmd.Name)
	assert.Equal(t, "bob", cmd.Arg0)
	assert.Equal(t, "hi there", cmd.Body)
}

func TestParseReplyRequiresBody(t *testing.T) {
	_, err := Parse("/reply")
	require.Error(t, err)

	cmd, err := Parse("/reply yo")
	require.NoError(t, err)
	assert.Equal(t, "yo", cmd.Body)
}

func TestParseIgnoreOptionalArg(t *testing.T) {
	cmd, err := Parse("/ignore")
	require.NoError(t, err)
	assert.False(t, cmd.Arg0Set)

	cmd, err = Parse("/ignore bob")
	require.NoError(t, err)
	assert.True(t, cmd.Arg0Set)
	assert.Equal(t, "bob", cmd.Arg0)
}

func TestParseUnignoreRequiresArg(t *testing.T) {
	_, err := Parse("/unignore")
	require.Error(t, err)

	cmd, err := Parse("/unignore bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", cmd.Arg0)
}

func TestParseFocusOptionalArg(t *testing.T) {
	cmd, err := Parse("/focus")
	require.NoError(t, err)
	assert.False(t, cmd.Arg0Set)

	cmd, err = Parse("/focus $")
	require.NoError(t, err)
	assert.Equal(t, "$", cmd.Arg0)
}

func TestParseWhoisRequiresArg(t *testing.T) {
	_, err := Parse("/whois")
	require.Error(t, err)

	cmd, err := Parse("/whois bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", cmd.Arg0)
}

func TestParseTimestampValidatesMode(t *testing.T) {
	_, err := Parse("/timestamp")
	require.Error(t, err)

	_, err = Parse("/timestamp bogus")
	require.Error(t, err)

	cmd, err := Parse("/timestamp datetime")
	require.NoError(t, err)
	assert.Equal(t, "datetime", cmd.Arg0)
}

func TestParseThemeValidatesRegisteredTheme(t *testing.T) {
	_, err := Parse("/theme nonexistent")
	require.Error(t, err)

	cmd, err := Parse("/theme colors")
	require.NoError(t, err)
	assert.Equal(t, "colors", cmd.Arg0)
}

func TestParseMeOptionalBody(t *testing.T) {
	cmd, err := Parse("/me")
	require.NoError(t, err)
	assert.Empty(t, cmd.Body)

	cmd, err = Parse("/me waves")
	require.NoError(t, err)
	assert.Equal(t, "waves", cmd.Body)
}

func TestParseSlapOptionalArg(t *testing.T) {
	cmd, err := Parse("/slap")
	require.NoError(t, err)
	assert.False(t, cmd.Arg0Set)

	cmd, err = Parse("/slap bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", cmd.Arg0)
}

func TestParseMuteKickRequireArg(t *testing.T) {
	_, err := Parse("/mute")
	require.Error(t, err)
	_, err = Parse("/kick")
	require.Error(t, err)

	cmd, err := Parse("/mute bob")
	require.NoError(t, err)
	assert.Equal(t, Mute, cmd.Name)

	cmd, err = Parse("/kick bob")
	require.NoError(t, err)
	assert.Equal(t, Kick, cmd.Name)
}

func TestParseBanRequiresQuery(t *testing.T) {
	_, err := Parse("/ban")
	require.Error(t, err)

	cmd, err := Parse("/ban bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", cmd.Body)
}

func TestParseMotdOptionalBody(t *testing.T) {
	cmd, err := Parse("/motd")
	require.NoError(t, err)
	assert.Empty(t, cmd.Body)

	cmd, err = Parse("/motd welcome!")
	require.NoError(t, err)
	assert.Equal(t, "welcome!", cmd.Body)
}

func TestIsOp(t *testing.T) {
	assert.True(t, IsOp(Mute))
	assert.True(t, IsOp(Kick))
	assert.True(t, IsOp(Ban))
	assert.True(t, IsOp(Banned))
	assert.True(t, IsOp(Motd))
	assert.False(t, IsOp(Help))
	assert.False(t, IsOp(Away))
}

func TestHelpTextExcludesHiddenAndSeparatesOperatorBlock(t *testing.T) {
	plain := HelpText(false)
	assert.Contains(t, plain, "/exit")
	assert.NotContains(t, plain, "/help")
	assert.NotContains(t, plain, "Operator commands")

	withOp := HelpText(true)
	assert.Contains(t, withOp, "Operator commands:")
	assert.Contains(t, withOp, "/mute")
}
