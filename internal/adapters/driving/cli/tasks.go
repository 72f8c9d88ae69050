package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show or run maintenance tasks",
	RunE:  runTasksList,
}

var tasksRunCmd = &cobra.Command{
	Use:   "run [task-id]",
	Short: "Run a maintenance task now",
	Long: `Runs a task immediately, e.g. 'archivist tasks run index-repair' to
rebuild the full-text index when it has drifted from the documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksRun,
}

func init() {
	tasksCmd.AddCommand(tasksRunCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return fmt.Errorf("scheduler %w", ErrServiceNotConfigured)
	}

	tasks := scheduler.Tasks()
	if len(tasks) == 0 {
		cmd.Println("No tasks registered.")
		return nil
	}
	for _, t := range tasks {
		cmd.Printf("  %-16s every %-8s %s\n", t.ID, t.Interval, t.Name)
	}
	return nil
}

func runTasksRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return fmt.Errorf("scheduler %w", ErrServiceNotConfigured)
	}

	state, ok := scheduler.RunNow(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("unknown task: %s", args[0])
	}
	if state.LastError != "" {
		return fmt.Errorf("task %s failed: %s", state.ID, state.LastError)
	}
	cmd.Printf("Task %s finished (%d items).\n", state.ID, state.Items)
	return nil
}
