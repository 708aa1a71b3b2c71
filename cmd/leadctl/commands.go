package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stand-lead-engine/internal/app"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/matcher"
	"stand-lead-engine/internal/utils"
)

func newRouteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "route <lead-id>",
		Short: "Route one lead to its best matching builders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app.App) error {
				res := a.Router.RouteNewLead(cmd.Context(), args[0])
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("routing failed: %s", strings.Join(res.Errors, "; "))
				}
				return nil
			})
		},
	}
}

func newReRouteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reroute",
		Short: "Re-route leads that saw no builder activity within the re-route window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), g, func(a *app.App) error {
				summary, err := a.Router.ReRouteInactiveLeads(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newAnalyticsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show lead distribution across builders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), g, func(a *app.App) error {
				analytics, err := a.Router.GetRoutingAnalytics(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), analytics)
			})
		},
	}
}

func newImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import-builders <file.csv>",
		Short: "Upsert builders from a directory export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			builders, parseErrors := utils.NewCSVParser().ParseBuilders(string(content))
			for _, e := range parseErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
			}
			if len(builders) == 0 {
				return fmt.Errorf("no valid builders in %s", args[0])
			}

			return withApp(cmd.Context(), g, func(a *app.App) error {
				res, err := a.Store.UpsertBuilders(cmd.Context(), builders)
				if err != nil {
					return err
				}
				logger().Info("Imported builders", zap.Int("upserted", res.UpsertedCount))
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

type matchFlags struct {
	show       string
	size       float64
	budget     string
	company    string
	email      string
	maxBudget  float64
	prefer     []string
	languages  []string
	certs      []string
	limit      int
	jsonOutput bool
}

func newMatchCmd(g *globalFlags) *cobra.Command {
	f := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score the builder directory for a trade show without notifying anyone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := f.preferences()
			if err != nil {
				return err
			}
			req := &models.QuoteRequest{
				ID:            uuid.NewString(),
				TradeShowSlug: f.show,
				StandSize:     f.size,
				Budget:        f.budget,
				CompanyName:   f.company,
				ContactEmail:  f.email,
				Preferences:   prefs,
				CreatedAt:     time.Now(),
			}
			if err := models.Validate(req); err != nil {
				return err
			}

			return withApp(cmd.Context(), g, func(a *app.App) error {
				show, err := a.Catalog.Get(req.TradeShowSlug)
				if err != nil {
					return err
				}
				builders, err := a.Store.GetBuilders(cmd.Context())
				if err != nil {
					return err
				}
				leads, err := a.Store.GetLeads(cmd.Context())
				if err != nil {
					return err
				}
				matcher.ApplyOpenLeadCounts(builders, matcher.CountOpenLeads(leads))

				engine := matcher.NewEngine(matcher.WithLogger(logger()), matcher.WithLimit(f.limit))
				run := engine.Run(req, show.Anchor(req.CreatedAt.Year()), prefs, builders)

				if f.jsonOutput {
					return printJSON(cmd.OutOrStdout(), run)
				}
				return writeMatchTable(cmd, show, run)
			})
		},
	}

	cmd.Flags().StringVar(&f.show, "show", "", "trade show slug (see leadctl tradeshows)")
	cmd.Flags().Float64Var(&f.size, "size", models.DefaultStandSize, "stand size in square metres")
	cmd.Flags().StringVar(&f.budget, "budget", "", "budget bracket, e.g. mid-range")
	cmd.Flags().StringVar(&f.company, "company", "Ad hoc match", "client company name")
	cmd.Flags().StringVar(&f.email, "email", "matching@localhost.localdomain", "client contact email")
	cmd.Flags().Float64Var(&f.maxBudget, "max-budget", 0, "drop builders whose average project exceeds this")
	cmd.Flags().StringSliceVar(&f.prefer, "prefer", nil, "weight overrides: experience, cost, sustainability, local")
	cmd.Flags().StringSliceVar(&f.languages, "language", nil, "preferred languages")
	cmd.Flags().StringSliceVar(&f.certs, "certification", nil, "required certifications")
	cmd.Flags().IntVar(&f.limit, "limit", matcher.MaxResults, "maximum matches to return")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "print the full pipeline result as JSON")
	_ = cmd.MarkFlagRequired("show")

	return cmd
}

func (f *matchFlags) preferences() (models.Preferences, error) {
	p := models.Preferences{
		MaxBudget:              f.maxBudget,
		PreferredLanguages:     f.languages,
		RequiredCertifications: f.certs,
	}
	for _, name := range f.prefer {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "experience":
			p.PrioritizeExperience = true
		case "cost":
			p.PrioritizeCost = true
		case "sustainability":
			p.PrioritizeSustainability = true
		case "local":
			p.PrioritizeLocalBuilders = true
		default:
			return p, fmt.Errorf("unknown preference %q", name)
		}
	}
	return p, nil
}

func writeMatchTable(cmd *cobra.Command, show *models.TradeShow, run *matcher.MatchingResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s, %s): %d builders, %d eligible, %d after preferences, %d above threshold\n\n",
		show.Name, show.City, show.Country,
		run.TotalBuilders, run.CandidatesPassed, run.PreferencesPassed, run.AboveThreshold)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tBUILDER\tSCORE\tCONFIDENCE\tEST. COST\tTOP REASON")
	for i, m := range run.Matches {
		reason := ""
		if len(m.Reasons) > 0 {
			reason = m.Reasons[0]
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%.0f\t%s\n", i+1, m.Builder.CompanyName, m.Score, m.Confidence, m.EstimatedCost, reason)
	}
	return tw.Flush()
}

func newTradeShowsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tradeshows",
		Short: "List the trade show catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), g, func(a *app.App) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tCITY\tCOUNTRY")
				for _, s := range a.Catalog.List() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Slug, s.Name, s.City, s.Country)
				}
				return tw.Flush()
			})
		},
	}
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the builders and leads tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), g, func(a *app.App) error {
				if a.DB == nil {
					return fmt.Errorf("migrate needs the postgres store backend")
				}
				if err := a.DB.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
				return nil
			})
		},
	}
}

