package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jimdaga/vendorhub/internal/config"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/logging"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/todoapi"
	"github.com/jimdaga/vendorhub/internal/todos"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// session is the per-invocation state shared by subcommands
type session struct {
	store *store.Store
	ctrl  *todos.Controller
	now   func() time.Time
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	email  string
}

func newRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:           "vendorctl",
		Short:         "Manage vendor todos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.email, "user", cfg.DemoUserEmail, "email of the vendor account")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.doneCmd(),
		a.rmCmd(),
	)
	return root
}

// openSession initializes the local store, resolves the user and loads the
// list. The controller syncs through the remote API when one is configured.
func (a *app) openSession(ctx context.Context) (*session, error) {
	s := store.New(store.Config{DatabaseURL: a.cfg.DatabaseURL}, logging.Discard(), domain.Tables()...)
	if err := s.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}
	h := domain.New(s)

	user, err := h.EnsureUser(ctx, domain.UserInput{Email: a.email})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to resolve user %s: %w", a.email, err)
	}

	opts := todos.Options{Cache: h, Logger: a.logger}
	if a.cfg.APIBaseURL != "" {
		opts.Remote = todoapi.NewClient(a.cfg.APIBaseURL, a.cfg.RemoteTimeout)
	}
	ctrl := todos.NewController(opts)
	if err := ctrl.Load(ctx, user.ID); err != nil {
		s.Close()
		return nil, err
	}
	return &session{store: s, ctrl: ctrl, now: h.Now}, nil
}

// withSession opens a session for the duration of fn and reports the
// controller banner, if any, on stderr
func (a *app) withSession(cmd *cobra.Command, fn func(*session) error) error {
	sess, err := a.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.store.Close()

	err = fn(sess)
	if msg := sess.ctrl.Err(); msg != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
	}
	return err
}

func (a *app) listCmd() *cobra.Command {
	var search, status, priority string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos, open and most urgent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := todos.ParseFilter(search, status, priority)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(sess *session) error {
				all := sess.ctrl.Todos()
				renderTodos(cmd.OutOrStdout(), todos.View(all, filter), todos.Counts(all), sess.now())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title or description")
	cmd.Flags().StringVar(&status, "status", todos.StatusAll, "all, pending or completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", todos.PriorityAll, "all, low, medium or high")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var in todos.Input
	var priority, due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			in.Priority = models.Priority(priority)
			if due != "" {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}
			return a.withSession(cmd, func(sess *session) error {
				todo, err := sess.ctrl.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", todo.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "details")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.DefaultPriority), "low, medium or high")
	cmd.Flags().StringVarP(&in.Category, "category", "c", models.DefaultCategory, "category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var title, description, priority, category, due string
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes models.TodoChanges
			flags := cmd.Flags()
			if flags.Changed("title") {
				changes.Title = &title
			}
			if flags.Changed("description") {
				changes.Description = &description
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				changes.Priority = &p
			}
			if flags.Changed("category") {
				changes.Category = &category
			}
			if flags.Changed("due") {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				changes.DueDate = &d
			}
			changes.ClearDueDate = clearDue

			return a.withSession(cmd, func(sess *session) error {
				todo, err := sess.ctrl.Update(cmd.Context(), args[0], changes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", todo.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a todo between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session) error {
				todo, err := sess.ctrl.ToggleComplete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				state := todos.StatusPending
				if todo.Completed {
					state = todos.StatusCompleted
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", todo.ID, state)
				return nil
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session) error {
				if err := sess.ctrl.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				if sess.ctrl.Err() == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
