package access

import (
	"testing"

	"kanmind-api/internal/apperr"

	"github.com/stretchr/testify/require"
)

const (
	ownerID    uint = 1
	memberID   uint = 2
	creatorID  uint = 3 // member who created the task
	authorID   uint = 4 // member who wrote the comment
	outsiderID uint = 9
)

func fixture() Resource {
	return Resource{
		OwnerID:   ownerID,
		MemberIDs: []uint{memberID, creatorID, authorID},
		CreatorID: creatorID,
		AuthorID:  authorID,
	}
}

func TestAllowed_Matrix(t *testing.T) {
	tests := []struct {
		action Action
		allow  []uint
		deny   []uint
	}{
		{BoardView, []uint{ownerID, memberID}, []uint{outsiderID, 0}},
		{BoardCreate, []uint{ownerID, outsiderID}, []uint{0}},
		{BoardUpdate, []uint{ownerID, memberID}, []uint{outsiderID}},
		{BoardDelete, []uint{ownerID}, []uint{memberID, creatorID, outsiderID}},
		{TaskView, []uint{ownerID, memberID}, []uint{outsiderID}},
		{TaskCreate, []uint{ownerID, memberID}, []uint{outsiderID}},
		{TaskUpdate, []uint{ownerID, memberID, creatorID}, []uint{outsiderID}},
		{TaskDelete, []uint{ownerID, creatorID}, []uint{memberID, authorID, outsiderID}},
		{CommentList, []uint{ownerID, memberID}, []uint{outsiderID}},
		{CommentCreate, []uint{ownerID, memberID}, []uint{outsiderID}},
		{CommentDelete, []uint{authorID}, []uint{ownerID, memberID, creatorID, outsiderID}},
	}

	for _, tc := range tests {
		t.Run(string(tc.action), func(t *testing.T) {
			r := fixture()
			for _, actor := range tc.allow {
				require.Truef(t, Allowed(actor, tc.action, r), "actor %d should be allowed", actor)
			}
			for _, actor := range tc.deny {
				require.Falsef(t, Allowed(actor, tc.action, r), "actor %d should be denied", actor)
			}
		})
	}
}

func TestUpdateIsLooserThanDelete(t *testing.T) {
	r := fixture()
	require.True(t, Allowed(memberID, TaskUpdate, r))
	require.False(t, Allowed(memberID, TaskDelete, r))
	require.True(t, Allowed(memberID, BoardUpdate, r))
	require.False(t, Allowed(memberID, BoardDelete, r))
}

func TestCheck_ReturnsPermissionError(t *testing.T) {
	require.NoError(t, Check(ownerID, BoardDelete, fixture()))

	err := Check(memberID, BoardDelete, fixture())
	require.Error(t, err)

	var pe *apperr.PermissionError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "Only the board owner can delete this board.", pe.Detail)
}

func TestCheck_UnknownActionDenied(t *testing.T) {
	err := Check(ownerID, Action("board:archive"), fixture())
	require.True(t, apperr.IsPermission(err))
}

func TestIsParticipant(t *testing.T) {
	r := Resource{OwnerID: 5}
	require.True(t, IsParticipant(5, r))
	require.False(t, IsParticipant(6, r))
	require.False(t, IsParticipant(0, Resource{}))

	r.MemberIDs = []uint{6}
	require.True(t, IsParticipant(6, r))
}
