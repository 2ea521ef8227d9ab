// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/util"
)

func (a *App) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List, add and complete tasks",
	}
	cmd.AddCommand(a.tasksListCmd(), a.tasksAddCmd(), a.tasksCompleteCmd())
	return cmd
}

// Status filters accepted by tasks list.
const (
	showPending   = "pending"
	showCompleted = "completed"
	showAll       = "all"
)

func (a *App) tasksListCmd() *cobra.Command {
	var status, filter string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch status {
			case showPending, showCompleted, showAll:
			default:
				return NewValidationErrorWithExample("status", status, "unknown status filter", "--status pending|completed|all")
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()
			tasks, err := a.tasks.GetTasks(ctx)
			if err != nil {
				return err
			}
			tasks = selectTasks(tasks, status, filter)

			return a.emit(cmd, tasks, func(w io.Writer) {
				printTasks(w, tasks, terminalWidth(a.Stdout))
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", showAll, "pending, completed or all")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter on title and description")
	return cmd
}

// selectTasks applies the status and fuzzy filters.
func selectTasks(tasks []model.Task, status, filter string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch {
		case status == showPending && !t.IsPending():
			continue
		case status == showCompleted && !t.IsCompleted():
			continue
		}
		out = append(out, t)
	}
	if strings.TrimSpace(filter) != "" {
		out = components.FilterTasks(filter, out)
	}
	return out
}

func printTasks(w io.Writer, tasks []model.Task, width int) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No tasks found. Add one with 'microstep tasks add <title>'."))
		return
	}

	const idW, prioW, durW, statW = 14, 8, 8, 10
	titleW := width - idW - prioW - durW - statW - 4
	if titleW < 16 {
		titleW = 16
	}

	header := util.PadRight("ID", idW) + " " + util.PadRight("PRIORITY", prioW) + " " +
		util.PadRight("MINUTES", durW) + " " + util.PadRight("STATUS", statW) + " TITLE"
	fmt.Fprintln(w, DimStyle.Render(header))

	for _, t := range tasks {
		status := WarningStyle.Render(util.PadRight(util.Label(string(model.StatusPending)), statW))
		if t.IsCompleted() {
			status = SuccessStyle.Render(util.PadRight(util.Label(string(t.Status)), statW))
		}
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			util.PadRight(util.TruncateWidth(t.TaskID, idW), idW),
			util.PadRight(util.Label(string(t.Priority)), prioW),
			util.PadRight(strconv.Itoa(t.EstimatedDuration), durW),
			status,
			util.TruncateWidth(t.Title, titleW),
		)
	}
}

func (a *App) tasksAddCmd() *cobra.Command {
	var (
		description string
		priority    string
		duration    int
	)
	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Create a task",
		Example: `  microstep tasks add Write the quarterly report --priority high --duration 45
  microstep tasks add "Stretch for five minutes" -p low -d 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(priority)
			if err != nil {
				return NewValidationErrorWithExample("priority", priority, "must be low, medium or high", "--priority high")
			}
			req := model.NewTask{
				Title:             strings.TrimSpace(strings.Join(args, " ")),
				Description:       strings.TrimSpace(description),
				Priority:          p,
				EstimatedDuration: duration,
			}.WithDefaults()
			if err := req.Validate(); err != nil {
				return formError(err, req)
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()
			task, err := a.tasks.CreateTask(ctx, req)
			if err != nil {
				return err
			}
			return a.emit(cmd, task, func(w io.Writer) {
				fmt.Fprintf(w, "%s Task added successfully! 🎯 %s\n", SuccessStyle.Render("[OK]"), DimStyle.Render("("+task.TaskID+")"))
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "D", "", "optional details")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.DefaultPriority), "low, medium or high")
	cmd.Flags().IntVarP(&duration, "duration", "d", model.DefaultDuration,
		fmt.Sprintf("estimated minutes (%d-%d)", model.MinDuration, model.MaxDuration))
	return cmd
}

// formError maps a NewTask validation failure to a usage error.
func formError(err error, req model.NewTask) error {
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		return NewValidationError("title", "", "please enter a task title")
	case errors.Is(err, model.ErrDurationRange):
		return NewValidationError("duration", strconv.Itoa(req.EstimatedDuration), err.Error())
	default:
		return NewValidationError("task", "", err.Error())
	}
}

func (a *App) tasksCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complete <task-id>",
		Aliases: []string{"done"},
		Short:   "Mark a task completed and collect its points",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			id := strings.TrimSpace(args[0])
			c, err := a.tasks.CompleteTask(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, CompleteData{TaskID: id, Completion: c}, func(w io.Writer) {
				fmt.Fprintf(w, "%s +%d points earned! 🎉\n", SuccessStyle.Render("[OK]"), c.PointsEarned)
				if c.Celebration != "" {
					fmt.Fprintln(w, util.Wrap(c.Celebration, terminalWidth(a.Stdout)-2))
				}
			})
		},
	}
	return cmd
}
