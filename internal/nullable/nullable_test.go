package nullable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type patch struct {
	AssigneeID Field[uint]   `json:"assignee_id"`
	DueDate    Field[string] `json:"due_date"`
}

func TestField_ThreeStates(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValid   bool
		wantValue   uint
	}{
		{"absent", `{}`, false, false, 0},
		{"null", `{"assignee_id": null}`, true, false, 0},
		{"value", `{"assignee_id": 7}`, true, true, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p patch
			require.NoError(t, json.Unmarshal([]byte(tc.body), &p))
			require.Equal(t, tc.wantPresent, p.AssigneeID.Present)
			require.Equal(t, tc.wantValid, p.AssigneeID.Valid)
			require.Equal(t, tc.wantValue, p.AssigneeID.Value)
			require.False(t, p.DueDate.Present)
		})
	}
}

func TestField_TypeMismatch(t *testing.T) {
	var p patch
	err := json.Unmarshal([]byte(`{"assignee_id": "seven"}`), &p)
	require.Error(t, err)
}

func TestField_PtrAndMarshal(t *testing.T) {
	require.Nil(t, Null[uint]().Ptr())
	require.Nil(t, Field[uint]{}.Ptr())
	require.Equal(t, uint(3), *Of[uint](3).Ptr())

	out, err := json.Marshal(patch{AssigneeID: Of[uint](3), DueDate: Null[string]()})
	require.NoError(t, err)
	require.JSONEq(t, `{"assignee_id": 3, "due_date": null}`, string(out))
}
