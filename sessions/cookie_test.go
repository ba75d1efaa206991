package sessions_test

import (
	"strings"
	"testing"

	"github.com/ridegauge/traffic-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := sessions.NewCookieCodec("test-secret")

	value, err := codec.Issue("sess-abc")
	require.NoError(t, err)

	sessionID, err := codec.Decode(value)
	require.NoError(t, err)
	require.Equal(t, "sess-abc", sessionID)
}

func TestCookieCodec_RejectsTamperedValue(t *testing.T) {
	codec := sessions.NewCookieCodec("test-secret")

	value, err := codec.Issue("sess-abc")
	require.NoError(t, err)

	parts := strings.Split(value, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = codec.Decode(tampered)
	require.Error(t, err)
}

func TestCookieCodec_RejectsForeignSecret(t *testing.T) {
	value, err := sessions.NewCookieCodec("secret-a").Issue("sess-abc")
	require.NoError(t, err)

	_, err = sessions.NewCookieCodec("secret-b").Decode(value)
	require.Error(t, err)
}

func TestCookieCodec_RejectsGarbage(t *testing.T) {
	_, err := sessions.NewCookieCodec("test-secret").Decode("not-a-token")
	require.Error(t, err)
}
