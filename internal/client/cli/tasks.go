package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gotodo/internal/client/models"
)

var errBlankName = errors.New("name can not be blank")

func parseID(cmd string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s <id>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func mark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func dueText(t *models.Task) string {
	if t.DueDate == nil {
		return "-"
	}
	return *t.DueDate
}

func (a *App) printTask(t *models.Task) {
	a.printf("#%d %s %s\n", t.ID, mark(t.IsDone), t.Name)
	a.printf("  created:   %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	a.printf("  due:       %s\n", dueText(t))
	if t.CompletedAt != nil {
		a.printf("  completed: %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (a *App) List(ctx context.Context, _ []string) error {
	tasks, err := a.client.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		a.printf("No todos yet\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tDUE\tNAME")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, mark(t.IsDone), dueText(t), t.Name)
	}
	return tw.Flush()
}

func (a *App) Add(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		n, err := GetSimpleText(a.reader, "Enter todo name", a.out)
		if err != nil {
			return err
		}
		name = n
	}
	if name == "" {
		return errBlankName
	}

	in := models.TaskInput{Name: &name}

	due, err := GetSimpleText(a.reader, "Due date (YYYY-MM-DD, empty for none)", a.out)
	if err != nil {
		return err
	}
	if due != "" {
		in.DueDate = &due
	}

	task, err := a.client.CreateTask(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Created todo #%d\n", task.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID("show", args)
	if err != nil {
		return err
	}
	task, err := a.client.GetTask(ctx, id)
	if err != nil {
		return err
	}
	a.printTask(task)
	return nil
}

func (a *App) setDone(ctx context.Context, cmd string, args []string, done bool) error {
	id, err := parseID(cmd, args)
	if err != nil {
		return err
	}
	task, err := a.client.UpdateTask(ctx, id, models.TaskInput{IsDone: &done})
	if err != nil {
		return err
	}
	a.printf("#%d %s %s\n", task.ID, mark(task.IsDone), task.Name)
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	return a.setDone(ctx, "done", args, true)
}

func (a *App) Undone(ctx context.Context, args []string) error {
	return a.setDone(ctx, "undone", args, false)
}

func (a *App) Rename(ctx context.Context, args []string) error {
	id, err := parseID("rename", args)
	if err != nil {
		return err
	}

	name := strings.Join(args[1:], " ")
	if name == "" {
		n, err := GetSimpleText(a.reader, "Enter new name", a.out)
		if err != nil {
			return err
		}
		name = n
	}
	if name == "" {
		return errBlankName
	}

	task, err := a.client.UpdateTask(ctx, id, models.TaskInput{Name: &name})
	if err != nil {
		return err
	}
	a.printf("Renamed #%d to %q\n", task.ID, task.Name)
	return nil
}

// Due sets the due date. "none" clears it.
func (a *App) Due(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: due <id> <YYYY-MM-DD|none>")
	}
	id, err := parseID("due", args)
	if err != nil {
		return err
	}

	date := args[1]
	if date == "none" {
		date = ""
	}

	task, err := a.client.UpdateTask(ctx, id, models.TaskInput{DueDate: &date})
	if err != nil {
		return err
	}
	a.printf("#%d due %s\n", task.ID, dueText(task))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID("delete", args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	a.printf("Deleted todo #%d\n", id)
	return nil
}
