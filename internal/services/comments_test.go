package services

import (
	"context"
	"testing"
	"time"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/models"
	"kanmind-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestComments_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := testutil.SeedBoard(t, f.db, "Board", f.owner, f.member)
	task := testutil.SeedTask(t, f.db, b, f.owner, "t", models.StatusToDo, models.PriorityLow)

	first, err := f.svc.Comments.Create(ctx, f.member.ID, task.ID, CommentInput{Content: "first"})
	require.NoError(t, err)
	require.Equal(t, "Max Member", first.Author)
	require.WithinDuration(t, time.Now(), first.CreatedAt, time.Minute)

	_, err = f.svc.Comments.Create(ctx, f.owner.ID, task.ID, CommentInput{Content: "second"})
	require.NoError(t, err)

	list, err := f.svc.Comments.List(ctx, f.owner.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "first", list[0].Content)
	require.Equal(t, "second", list[1].Content)
	require.Equal(t, "Olivia Owner", list[1].Author)

	view, err := f.svc.Tasks.Get(ctx, f.owner.ID, task.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, view.CommentsCount)
}

func TestComments_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := testutil.SeedBoard(t, f.db, "Board", f.owner, f.member)
	task := testutil.SeedTask(t, f.db, b, f.owner, "t", models.StatusToDo, models.PriorityLow)

	_, err := f.svc.Comments.Create(ctx, f.outsider.ID, task.ID, CommentInput{Content: "hi"})
	require.True(t, apperr.IsPermission(err))

	_, err = f.svc.Comments.List(ctx, f.outsider.ID, task.ID)
	require.True(t, apperr.IsPermission(err))

	_, err = f.svc.Comments.Create(ctx, f.member.ID, task.ID+99, CommentInput{Content: "hi"})
	require.True(t, apperr.IsNotFound(err))

	_, err = f.svc.Comments.Create(ctx, f.member.ID, task.ID, CommentInput{Content: "  "})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"This field may not be blank."}, ve.Fields["content"])
}

func TestCommentDelete_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := testutil.SeedUser(t, f.db, "creator@example.com", "Cora Creator")
	author := testutil.SeedUser(t, f.db, "author@example.com", "Arne Author")
	b := testutil.SeedBoard(t, f.db, "Board", f.owner, f.member, creator, author)
	task := testutil.SeedTask(t, f.db, b, creator, "t", models.StatusToDo, models.PriorityLow)
	comment := testutil.SeedComment(t, f.db, task, author, "mine")

	for name, actor := range map[string]uint{
		"board owner":  f.owner.ID,
		"board member": f.member.ID,
		"task creator": creator.ID,
	} {
		t.Run(name, func(t *testing.T) {
			err := f.svc.Comments.Delete(ctx, actor, task.ID, comment.ID)
			require.True(t, apperr.IsPermission(err))
		})
	}

	other := testutil.SeedTask(t, f.db, b, creator, "other", models.StatusToDo, models.PriorityLow)
	err := f.svc.Comments.Delete(ctx, author.ID, other.ID, comment.ID)
	require.True(t, apperr.IsNotFound(err), "comment must belong to the addressed task")

	require.NoError(t, f.svc.Comments.Delete(ctx, author.ID, task.ID, comment.ID))

	err = f.svc.Comments.Delete(ctx, author.ID, task.ID, comment.ID)
	require.True(t, apperr.IsNotFound(err))
}
