package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/DoyleJ11/monopoly-client/internal/board"
)

func TestDecode_Variants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			name: "players snapshot",
			raw:  `{"type":"players","list":[{"id":"a","name":"Alice"}]}`,
			want: Players{List: []Player{{ID: "a", Name: "Alice"}}},
		},
		{
			name: "players without list",
			raw:  `{"type":"players"}`,
			want: Players{},
		},
		{
			name: "join",
			raw:  `{"type":"playerJoined","player":{"id":"b","name":"Bob"}}`,
			want: PlayerJoined{Player: &Player{ID: "b", Name: "Bob"}},
		},
		{
			name: "your turn",
			raw:  `{"type":"yourTurn","canRoll":true}`,
			want: YourTurn{CanRoll: true},
		},
		{
			name: "server log",
			raw:  `{"type":"serverLog","text":"hello"}`,
			want: LogLine{Kind: "serverLog", Text: "hello"},
		},
		{
			name: "draw prompt",
			raw:  `{"type":"drawPrompt","deck":"chance"}`,
			want: DrawPrompt{Deck: "chance"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_MoveVersion(t *testing.T) {
	got, err := Decode([]byte(`{"type":"move","version":7,"playerId":"a","to":12,"dice":[3,4]}`))
	require.NoError(t, err)

	mv, ok := got.(Move)
	require.True(t, ok)
	assert.Equal(t, Version{N: 7, Set: true}, mv.Version)
	assert.Equal(t, "a", mv.PlayerID)
	require.NotNil(t, mv.To)
	assert.Equal(t, 12, *mv.To)

	v, ok := VersionOf(mv)
	assert.True(t, ok)
	assert.EqualValues(t, 7, v.N)
}

func TestDecode_NonNumericVersionIsAbsent(t *testing.T) {
	got, err := Decode([]byte(`{"type":"state","version":"9","positions":{"a":3}}`))
	require.NoError(t, err)

	_, ok := VersionOf(got)
	assert.False(t, ok)
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{`{"type":`, `not json`, `{"type":"move","to":"x"}`} {
		_, err := Decode([]byte(raw))
		if !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("decode %q: want ErrMalformedFrame, got %v", raw, err)
		}
	}
}

func TestDecode_UnknownKeepsRawFrame(t *testing.T) {
	raw := []byte(`{"type":"auctionStarted","index":5}`)
	got, err := Decode(raw)
	require.NoError(t, err)

	unk, ok := got.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "auctionStarted", unk.Type)
	assert.JSONEq(t, string(raw), string(unk.Raw))
}

func TestEncode_StampsType(t *testing.T) {
	out, err := Encode(Draw{Deck: board.DeckChance, Room: "007", PlayerID: "a"})
	require.NoError(t, err)

	assert.Equal(t, "draw", gjson.GetBytes(out, "type").String())
	assert.Equal(t, "chance", gjson.GetBytes(out, "deck").String())
	assert.Equal(t, "007", gjson.GetBytes(out, "room").String())
	assert.Equal(t, "a", gjson.GetBytes(out, "playerId").String())
}

func TestDecode_WholeNumbers(t *testing.T) {
	got, err := Decode([]byte(`{"type":"move","version":5.0,"playerId":"a","to":3.0}`))
	require.NoError(t, err)
	mv := got.(Move)
	assert.Equal(t, Version{N: 5, Set: true}, mv.Version)
	require.NotNil(t, mv.To)
	assert.Equal(t, 3, *mv.To)

	got, err = Decode([]byte(`{"type":"state","version":1e1,"positions":{"p":3.0,"q":12}}`))
	require.NoError(t, err)
	st := got.(State)
	assert.Equal(t, Version{N: 10, Set: true}, st.Version)
	assert.Equal(t, map[string]int{"p": 3, "q": 12}, st.Positions)

	for _, raw := range []string{
		`{"type":"move","version":5.5,"playerId":"a","to":3}`,
		`{"type":"move","version":1e20,"playerId":"a","to":3}`,
		`{"type":"move","playerId":"a","to":3.5}`,
		`{"type":"state","positions":{"p":2.25}}`,
	} {
		_, err := Decode([]byte(raw))
		if !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("decode %s: want ErrMalformedFrame, got %v", raw, err)
		}
	}
}
