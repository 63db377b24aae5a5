package ids_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
)

func TestWorkflowRunIDRoundTrip(t *testing.T) {
	run := ids.NewWorkflowRunID()

	raw, err := json.Marshal(run)
	require.NoError(t, err)
	require.Equal(t, `"`+run.String()+`"`, string(raw))

	var decoded ids.WorkflowRunID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, run, decoded)
}

func TestActivityRunIDAsMapKey(t *testing.T) {
	a := ids.NewActivityRunID()
	b := ids.NewActivityRunID()
	require.NotEqual(t, a, b)

	m := map[ids.ActivityRunID]string{a: "first"}
	m[b] = "second"
	require.Len(t, m, 2)
	require.Equal(t, "first", m[a])
}

func TestWorkflowIDUnmarshalInvalid(t *testing.T) {
	var id ids.WorkflowID
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &id)
	require.Error(t, err)
}
