package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInboundRejectsOversizedFrames(t *testing.T) {
	payload := `{"type":"chat","message":"` + strings.Repeat("x", MaxMessageBytes) + `"}`
	_, err := DecodeInbound([]byte(payload), MaxMessageBytes)
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestDecodeInboundSizeLimitIsInclusive(t *testing.T) {
	head, tail := `{"type":"chat","message":"`, `"}`
	pad := MaxMessageBytes - len(head) - len(tail)
	exact := head + strings.Repeat("x", pad) + tail
	require.Len(t, exact, MaxMessageBytes)

	in, err := DecodeInbound([]byte(exact), MaxMessageBytes)
	require.NoError(t, err)
	assert.Equal(t, TypeChat, in.Type)

	over := head + strings.Repeat("x", pad+1) + tail
	_, err = DecodeInbound([]byte(over), MaxMessageBytes)
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestDecodeInboundRejectsMalformedFrames(t *testing.T) {
	_, err := DecodeInbound([]byte("not json"), MaxMessageBytes)
	require.Error(t, err)

	_, err = DecodeInbound([]byte(`{"x":1,"y":2}`), MaxMessageBytes)
	require.ErrorIs(t, err, ErrMissingType)

	_, err = DecodeInbound(nil, MaxMessageBytes)
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestDecodeInboundKeepsWrongTypedNameRaw(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"playerJoined","name":42,"skin":"mario"}`), MaxMessageBytes)
	require.NoError(t, err)

	_, ok := StringField(in.Name)
	assert.False(t, ok, "numeric name must not read as a string")

	skin, ok := StringField(in.Skin)
	assert.True(t, ok)
	assert.Equal(t, "mario", skin)
}

func TestEncodeUpdateOmitsUnusedFields(t *testing.T) {
	b, err := Encode(NewAnimateUpdate("user_1", "emotes/wave"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update","id":"user_1","dataType":"animate","animation":"emotes/wave"}`, string(b))

	b, err = Encode(NewChatUpdate("user_1", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update","id":"user_1","dataType":"chat","message":""}`, string(b))
}

func TestEncodeMoveUpdateCarriesCoordinates(t *testing.T) {
	b, err := Encode(NewMoveUpdate("user_1", Position{X: 120.5, Y: 0}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update","id":"user_1","dataType":"move","x":120.5,"y":0}`, string(b))

	msg, err := DecodeServer(b)
	require.NoError(t, err)
	assert.Equal(t, DataMove, msg.DataType)
	require.NotNil(t, msg.Y)
	assert.Zero(t, *msg.Y)
}

func TestEncodePlayerJoinedIsFlat(t *testing.T) {
	b, err := Encode(NewPlayerJoined(PlayerInfo{ID: "user_1", X: 990, Y: 1010, Name: "Ada", Skin: "rock"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"playerJoined","id":"user_1","x":990,"y":1010,"name":"Ada","skin":"rock"}`, string(b))
}

func TestEncodeEmptyBatchesAsArrays(t *testing.T) {
	b, err := Encode(NewBulkUpdate(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bulkUpdate","updates":[]}`, string(b))

	b, err = Encode(NewStateSync(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"stateSync","players":[]}`, string(b))
}

func TestDecodeServerBulkUpdate(t *testing.T) {
	msg, err := DecodeServer([]byte(`{"type":"bulkUpdate","updates":[{"id":"a","x":1,"y":2},{"id":"b","x":3,"y":4}]}`))
	require.NoError(t, err)
	require.Len(t, msg.Updates, 2)
	assert.Equal(t, PositionUpdate{ID: "b", X: 3, Y: 4}, msg.Updates[1])
}

func TestRoundMatchesHalfUp(t *testing.T) {
	assert.Equal(t, 1001.0, Round(1000.5))
	assert.Equal(t, 1000.0, Round(1000.49))
	assert.Equal(t, -1.0, Round(-1.5))
	assert.Equal(t, NewMove(Position{X: 10.5, Y: 7.2}), Move{Type: TypeMove, X: 11, Y: 7})
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "abc", Truncate("abc", 20))
	assert.Equal(t, "", Truncate("abc", 0))
}
