package tasks_test

import (
	"testing"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	task, err := tasks.NewTask(" Write report ", "", 4, 1, "", "")
	require.NoError(t, err)
	require.Equal(t, "Write report", task.Title)
	require.Equal(t, tasks.PriorityMedium, task.Priority)
	require.Equal(t, tasks.StatusPending, task.Status)
	require.Nil(t, task.DueDate)

	task, err = tasks.NewTask("Deploy", "", 4, 1, "2024-03-10", "HIGH")
	require.NoError(t, err)
	require.Equal(t, tasks.PriorityHigh, task.Priority)
	require.Equal(t, "2024-03-10", *task.DueDate)
}

func TestNewTask_Rejects(t *testing.T) {
	_, err := tasks.NewTask("", "", 4, 1, "", "")
	require.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = tasks.NewTask("x", "", 0, 1, "", "")
	require.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = tasks.NewTask("x", "", 4, 1, "tomorrow", "")
	require.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = tasks.NewTask("x", "", 4, 1, "", "urgent")
	require.Equal(t, errors.KindValidation, errors.KindOf(err))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "completed"} {
		got, err := tasks.ParseStatus(s)
		require.NoError(t, err)
		require.Equal(t, tasks.Status(s), got)
	}
	_, err := tasks.ParseStatus("done")
	require.Error(t, err)
}
