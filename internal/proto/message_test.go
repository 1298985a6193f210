package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		command  string
		params   []string
		trailing string
		hasTrail bool
	}{
		{name: "nick", line: "NICK alice\r\n", command: "NICK", params: []string{"alice"}},
		{name: "lowercase command", line: "join #rust", command: "JOIN", params: []string{"#rust"}},
		{name: "privmsg body", line: "PRIVMSG #rust :hello: world\r\n", command: "PRIVMSG", params: []string{"#rust"}, trailing: "hello: world", hasTrail: true},
		{name: "prefix skipped", line: ":alice PART #java :bye", command: "PART", params: []string{"#java"}, trailing: "bye", hasTrail: true},
		{name: "trailing only", line: "QUIT :gone fishing", command: "QUIT", params: []string{}, trailing: "gone fishing", hasTrail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.command, msg.Command)
			require.Equal(t, tt.params, msg.Params)
			require.Equal(t, tt.trailing, msg.Trailing)
			require.Equal(t, tt.hasTrail, msg.HasTrailing)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, line := range []string{"", "\r\n", "   ", ":prefixonly"} {
		_, err := Parse(line)
		require.ErrorIs(t, err, ErrEmptyLine, "line %q", line)
	}
}

func TestMessageArg(t *testing.T) {
	msg, err := Parse("PING :token-1")
	require.NoError(t, err)
	arg, err := msg.Arg()
	require.NoError(t, err)
	require.Equal(t, "token-1", arg)

	msg, err = Parse("JOIN")
	require.NoError(t, err)
	_, err = msg.Arg()
	require.ErrorIs(t, err, ErrMissingParam)
	_, err = msg.Param(0)
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestSplitTargets(t *testing.T) {
	require.Equal(t, []string{"#rust", "#java"}, SplitTargets("#rust,,#java,"))
	require.Empty(t, SplitTargets(","))
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("irc.test")

	require.Equal(t, ":irc.test 001 alice :Welcome\r\n", f.Welcome("alice", "Welcome"))
	require.Equal(t, ":irc.test 332 alice #rust :About rust\r\n", f.Topic("alice", "#rust", "About rust"))
	require.Equal(t, ":irc.test 353 alice = #rust :alice bob\r\n", f.Names("alice", "#rust", []string{"alice", "bob"}))
	require.Equal(t, ":irc.test 366 alice #rust :End of NAMES list\r\n", f.EndOfNames("alice", "#rust"))
	require.Equal(t, ":alice!alice@10.0.0.1 JOIN #rust\r\n", f.Join("alice", "10.0.0.1", "#rust"))
	require.Equal(t, ":bob!bob@h PART #rust :bye\r\n", f.Part("bob", "h", "#rust", "bye\r\n"))
	require.Equal(t, ":bob!bob@h PRIVMSG #rust :hi\r\n", f.PrivMsg("bob", "h", "#rust", "hi"))
	require.Equal(t, "PONG irc.test :abc\r\n", f.Pong("abc"))
}
