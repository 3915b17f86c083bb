package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akinori114514/game/internal/autoplay"
	cl "github.com/akinori114514/game/internal/cli"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "burnrate",
		Short:        "BurnRate startup simulation client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newNewCmd(&apiBase),
		newStatusCmd(&apiBase),
		newTurnCmd(&apiBase),
		newHireCmd(&apiBase),
		newFireCmd(&apiBase),
		newManagerCmd(&apiBase),
		newSimpleActionCmd(&apiBase, "interview", "Interview candidates to unlock hiring", game.ActionInterview),
		newSimpleActionCmd(&apiBase, "gig", "Take client work for quick cash", game.ActionClientWork),
		newSimpleActionCmd(&apiBase, "subsidy", "Apply for the government subsidy", game.ActionSubsidy),
		newSimpleActionCmd(&apiBase, "read", "Mark notifications as read", game.ActionMarkRead),
		newSimpleActionCmd(&apiBase, "major", "Start negotiating the active major event", game.ActionStartMajor),
		newSimpleActionCmd(&apiBase, "walk", "Walk away from the current negotiation", game.ActionAbandon),
		newPrivateCmd(&apiBase),
		newMarketingCmd(&apiBase),
		newPricingCmd(&apiBase),
		newCoFounderCmd(&apiBase),
		newResolveCmd(&apiBase),
		newPitchCmd(&apiBase),
		newPlayCmd(&apiBase),
		newDealsCmd(&apiBase),
		newTeamCmd(&apiBase),
		newFinanceCmd(&apiBase),
		newAdviceCmd(&apiBase),
		newEndingCmd(&apiBase),
		newSyncCmd(&apiBase),
		newGamesCmd(&apiBase),
		newAbandonCmd(&apiBase),
		newSimCmd(cfg.Seed),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func currentGame() (cl.Session, error) {
	sess, err := cl.LoadSession()
	if errors.Is(err, cl.ErrNoSession) {
		return cl.Session{}, errors.New("no active game, run `burnrate new` first")
	}
	return sess, err
}

// act sends one action. When the API is unreachable the action is queued for `burnrate sync`.
func act(cmd *cobra.Command, apiBase *string, a game.Action) error {
	sess, err := currentGame()
	if err != nil {
		return err
	}
	if a.IdempotencyKey == "" {
		a.IdempotencyKey = uuid.NewString()
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	st, err := newClient(apiBase).Do(ctx, sess.GameID, a)
	if err != nil {
		if cl.IsOffline(err) {
			if qerr := cl.Enqueue(sess.GameID, a); qerr != nil {
				return fmt.Errorf("queue offline action: %w", qerr)
			}
			printWarn(fmt.Sprintf("API unreachable. Queued %s; run `burnrate sync` when back online.", a.Kind))
			return nil
		}
		return err
	}
	renderStatus(st)
	return nil
}

func newNewCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Found a new company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			created, err := newClient(apiBase).CreateGame(ctx)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{GameID: created.ID, APIBaseURL: *apiBase}); err != nil {
				return err
			}
			printSuccess("Company founded. Game " + created.ID)
			renderStatus(created.State)
			return nil
		},
	}
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the company dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := newClient(apiBase).State(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderStatus(st)
			if len(st.Logs) > 0 {
				fmt.Println()
				accent.Println("Recent log")
				start := max(0, len(st.Logs)-5)
				for _, l := range st.Logs[start:] {
					fmt.Printf("  %s  %s\n", l.Date, l.Message)
				}
			}
			return nil
		},
	}
}

func newTurnCmd(apiBase *string) *cobra.Command {
	var (
		golden    bool
		incidents int
	)
	cmd := &cobra.Command{
		Use:   "turn [weeks]",
		Short: "End the week and run the simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return errors.New("weeks must be a positive number")
				}
				weeks = n
			}
			sess, err := currentGame()
			if err != nil {
				return err
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(weeks)*30*time.Second)
			defer cancel()

			if golden {
				if _, err := client.GoldenLead(ctx, sess.GameID); err != nil {
					return err
				}
			}
			for range incidents {
				if _, err := client.ResolveIncident(ctx, sess.GameID); err != nil {
					return err
				}
			}

			var st game.GameState
			for i := 0; i < weeks; i++ {
				st, err = client.NextTurn(ctx, sess.GameID, uuid.NewString())
				if err != nil {
					return err
				}
				if st.IsGameOver || st.ActiveEvent != nil || st.ActiveMajorEvent != nil {
					break
				}
			}
			renderStatus(st)
			if st.IsGameOver {
				ending, err := client.Ending(ctx, sess.GameID)
				if err != nil {
					return err
				}
				fmt.Println()
				renderEnding(ending)
				_ = cl.ClearSession()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&golden, "golden-lead", false, "report a golden lead hit for this week")
	cmd.Flags().IntVar(&incidents, "incidents", 0, "number of incidents resolved this week")
	return cmd
}

func newHireCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hire [role]",
		Short: "Hire an employee (ENGINEER, SALES, CS, MARKETER, MANAGER)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role string
			if len(args) == 1 {
				role = strings.ToUpper(args[0])
			} else {
				picked, err := promptChoice("Role", []string{"ENGINEER", "SALES", "CS", "MARKETER", "MANAGER"})
				if err != nil {
					return err
				}
				role = picked
			}
			return act(cmd, apiBase, game.Action{Kind: game.ActionHire, Role: game.Role(role)})
		},
	}
}

func newFireCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fire <employee-id>",
		Short: "Let an employee go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return act(cmd, apiBase, game.Action{Kind: game.ActionFire, EmployeeID: args[0]})
		},
	}
}

func newManagerCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "manager <employee-id> [manager-id]",
		Short: "Set who an employee reports to (omit manager to report to the founder)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := game.Action{Kind: game.ActionAssignManager, EmployeeID: args[0]}
			if len(args) == 2 {
				a.ManagerID = args[1]
			}
			return act(cmd, apiBase, a)
		},
	}
}

func newSimpleActionCmd(apiBase *string, use, short string, kind game.ActionKind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return act(cmd, apiBase, game.Action{Kind: kind})
		},
	}
}

func newPrivateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "private <work|family>",
		Short: "Spend the evening working or with family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p game.PrivateAction
			switch strings.ToLower(args[0]) {
			case "work":
				p = game.PrivateWork
			case "family":
				p = game.PrivateFamily
			default:
				return fmt.Errorf("unknown private action %q", args[0])
			}
			return act(cmd, apiBase, game.Action{Kind: game.ActionPrivate, Private: p})
		},
	}
}

func newMarketingCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "marketing <delta-yen>",
		Short: "Raise or cut the monthly marketing budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", ""), 64)
			if err != nil {
				return errors.New("amount must be a number")
			}
			return act(cmd, apiBase, game.Action{Kind: game.ActionMarketing, Amount: amount})
		},
	}
}

func newPricingCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pricing <PLG|ENTERPRISE|BLITZ>",
		Short: "Change the pricing strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return act(cmd, apiBase, game.Action{Kind: game.ActionPricing, Pricing: game.PricingStrategy(strings.ToUpper(args[0]))})
		},
	}
}

func newCoFounderCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cofounder <HACKER|HUSTLER>",
		Short: "Bring on a co-founder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return act(cmd, apiBase, game.Action{Kind: game.ActionCoFounder, CoFounder: game.CoFounderType(strings.ToUpper(args[0]))})
		},
	}
}

func newResolveCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [choice-id]",
		Short: "Answer the active narrative event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice := ""
			if len(args) == 1 {
				choice = args[0]
			} else {
				sess, err := currentGame()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				st, err := newClient(apiBase).State(ctx, sess.GameID)
				cancel()
				if err != nil {
					return err
				}
				if st.ActiveEvent == nil {
					printInfo("No event is waiting for an answer.")
					return nil
				}
				renderStatus(st)
				ids := make([]string, 0, len(st.ActiveEvent.Choices))
				for _, c := range st.ActiveEvent.Choices {
					ids = append(ids, c.ID)
				}
				if choice, err = promptChoice("Choice", ids); err != nil {
					return err
				}
			}
			return act(cmd, apiBase, game.Action{Kind: game.ActionResolveEvent, ChoiceID: choice})
		},
	}
}

func newPitchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pitch <FRIENDS|STARTUP|ENTERPRISE|WHALE>",
		Short: "Open a sales negotiation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return act(cmd, apiBase, game.Action{Kind: game.ActionStartPitch, Target: game.SalesTarget(strings.ToUpper(args[0]))})
		},
	}
}

func newPlayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <card-id>",
		Short: "Play a card in the current negotiation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).PlayCard(ctx, sess.GameID, args[0])
			if err != nil {
				return err
			}
			switch {
			case out.Result.Won && out.Result.MRR > 0:
				printSuccess(fmt.Sprintf("Deal closed. MRR +%s", formatYen(out.Result.MRR)))
			case out.Result.Won:
				printSuccess("You won the negotiation.")
			case out.Result.Settled:
				printError("The negotiation fell through.")
			}
			if n := out.State.Negotiation; n != nil {
				renderNegotiation(*n)
				return nil
			}
			renderStatus(out.State)
			return nil
		},
	}
}

func newDealsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "deals",
		Short: "List sales targets and your card deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			v, err := newClient(apiBase).Deals(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderDeals(v)
			return nil
		},
	}
}

func newTeamCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := newClient(apiBase).State(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderTeam(st.Employees)
			return nil
		},
	}
}

func newFinanceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "finance",
		Short: "Show the projected revenue breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			b, err := newClient(apiBase).Financials(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderFinancials(b)
			return nil
		},
	}
}

func newAdviceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "advice",
		Short: "Ask your investor for advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			adv, err := newClient(apiBase).Advice(ctx, sess.GameID)
			if err != nil {
				return err
			}
			if adv.Persona != "" {
				accent.Println(adv.Persona)
			}
			if adv.Offline {
				printWarn(adv.Text)
				return nil
			}
			printInfo(adv.Text)
			return nil
		},
	}
}

func newEndingCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ending",
		Short: "Show the ending of a finished game",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			e, err := newClient(apiBase).Ending(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderEnding(e)
			return nil
		},
	}
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay actions queued while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			actions, err := cl.TakeQueued(sess.GameID)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				printInfo("Nothing to sync.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			v, err := newClient(apiBase).Replay(ctx, sess.GameID, actions)
			if err != nil {
				for _, a := range actions {
					_ = cl.Enqueue(sess.GameID, a)
				}
				return err
			}
			renderReplay(v)
			fmt.Println()
			renderStatus(v.State)
			return nil
		},
	}
}

func newGamesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			list, err := newClient(apiBase).ListGames(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No games stored.")
				return nil
			}
			current, _ := cl.LoadSession()
			fmt.Printf("%-38s %5s %-9s %s\n", "ID", "WEEK", "PHASE", "UPDATED")
			for _, g := range list {
				marker := " "
				if g.ID == current.GameID {
					marker = "*"
				}
				fmt.Printf("%s%-37s %5d %-9s %s\n", marker, g.ID, g.Week, g.Phase, g.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newAbandonCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Shut the company down and forget the game",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := currentGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).Abandon(ctx, sess.GameID); err != nil && !isNotFound(err) {
				return err
			}
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Game abandoned.")
			return nil
		},
	}
}

func isNotFound(err error) bool {
	var apiErr *cl.APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// newSimCmd plays a game locally with the autoplay planner, no API needed.
func newSimCmd(defaultSeed int64) *cobra.Command {
	var (
		policy   string
		weeks    int
		seed     int64
		loadPath string
		savePath string
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Play a game locally with an autoplay policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := autoplay.ParsePolicy(policy)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			ctx := cmd.Context()
			mem := store.NewMemory()
			svc := game.NewService(mem, slog.New(slog.NewTextHandler(io.Discard, nil)), seed)

			var id string
			if loadPath != "" {
				sf, err := cl.ReadSave(loadPath)
				if err != nil {
					return err
				}
				id = "local"
				if err := mem.SaveGame(ctx, id, sf.State); err != nil {
					return err
				}
				printInfo(fmt.Sprintf("Loaded %s (week %d, saved %s)", loadPath, sf.State.Week, sf.SavedAt.Local().Format(time.DateTime)))
			} else if id, _, err = svc.NewGame(ctx); err != nil {
				return err
			}

			out, err := autoplay.Run(ctx, svc, id, autoplay.NewPlanner(p), weeks)
			if err != nil {
				return err
			}
			renderOutcome(out)

			st, err := svc.State(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println()
			renderStatus(st)
			if savePath != "" {
				if err := cl.WriteSave(savePath, seed, st); err != nil {
					return err
				}
				printSuccess("Saved to " + savePath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", string(autoplay.PolicyBalanced), "autoplay policy (balanced, growth, frugal)")
	cmd.Flags().IntVar(&weeks, "weeks", 52, "stop after this many weeks")
	cmd.Flags().Int64Var(&seed, "seed", defaultSeed, "random seed (0 picks one)")
	cmd.Flags().StringVar(&loadPath, "load", "", "resume from a YAML save file")
	cmd.Flags().StringVar(&savePath, "save", "", "write the final state to a YAML save file")
	return cmd
}
