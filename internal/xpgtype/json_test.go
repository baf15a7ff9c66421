package xpgtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testState struct {
	Cursor *string `json:"cursor,omitempty"`
	Events int     `json:"events"`
}

func TestJSON_Value(t *testing.T) {
	cursor := "abc"
	j := NewJSON(testState{Cursor: &cursor, Events: 3})

	value, err := j.Value()
	require.NoError(t, err)
	require.JSONEq(t, `{"cursor":"abc","events":3}`, string(value.([]byte)))
}

func TestJSON_Scan(t *testing.T) {
	var j JSON[testState]
	require.NoError(t, j.Scan([]byte(`{"cursor":"abc","events":3}`)))
	require.NotNil(t, j.V.Cursor)
	require.Equal(t, "abc", *j.V.Cursor)
	require.Equal(t, 3, j.V.Events)
}

func TestJSON_ScanNull(t *testing.T) {
	cursor := "abc"
	j := NewJSON(testState{Cursor: &cursor, Events: 3})

	require.NoError(t, j.Scan(nil))
	require.Nil(t, j.V.Cursor)
	require.Zero(t, j.V.Events)
}

func TestJSON_ScanRejectsNonBytes(t *testing.T) {
	var j JSON[testState]
	require.ErrorContains(t, j.Scan("not bytes"), "cannot scan")
}
