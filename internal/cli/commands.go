// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/paperlens/internal/app"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/validation"
)

// ErrUnknownUser is returned for commands naming a user with no profile.
var ErrUnknownUser = errors.New("unknown user")

type userRow struct {
	UserID      string     `json:"user_id"`
	NeedsUpdate bool       `json:"needs_update"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}

func rowsFor(a *app.App, ids []string) []userRow {
	rows := make([]userRow, 0, len(ids))
	for _, id := range ids {
		row := userRow{UserID: id, NeedsUpdate: a.Engine.NeedsUpdate(id)}
		if ts, ok := a.Engine.LastUpdate(id); ok {
			row.LastUpdate = &ts
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *runner) printRows(rows []userRow) error {
	if r.asJSON {
		return r.printJSON(rows)
	}
	if len(rows) == 0 {
		r.printf("No users.\n")
		return nil
	}
	tw := tabwriter.NewWriter(r.opts.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tSTALE\tLAST UPDATE")
	for _, row := range rows {
		last := "never"
		if row.LastUpdate != nil {
			last = row.LastUpdate.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\n", row.UserID, row.NeedsUpdate, last)
	}
	return tw.Flush()
}

func (r *runner) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every known user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				return r.printRows(rowsFor(a, a.Engine.KnownUsers()))
			})
		},
	}
}

func (r *runner) staleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stale",
		Short: "List users whose weekly mix is due for a refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				var stale []string
				for _, id := range a.Engine.KnownUsers() {
					if a.Engine.NeedsUpdate(id) {
						stale = append(stale, id)
					}
				}
				return r.printRows(rowsFor(a, stale))
			})
		},
	}
}

// userArg validates the single user id argument.
func userArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if verr := validation.ValidateVar("user_id", args[0], "userid"); verr != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	return nil
}

func (r *runner) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user>",
		Short: "Show a user's preferences and derived insights",
		Args:  userArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				p, ok := a.Engine.PeekProfile(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", ErrUnknownUser, args[0])
				}
				if r.asJSON {
					return r.printJSON(p)
				}
				r.printProfile(p)
				return nil
			})
		},
	}
}

func (r *runner) printProfile(p *models.UserProfile) {
	r.printf("User:           %s\n", p.UserID)
	if p.Email != "" {
		r.printf("Email:          %s\n", p.Email)
	}
	r.printf("Created:        %s\n", p.CreatedAt.Format(time.RFC3339))
	r.printf("Last active:    %s\n", p.LastActive.Format(time.RFC3339))
	r.printf("Reading level:  %s\n", p.Preferences.ReadingLevel)
	r.printf("Cadence:        %s\n", p.Preferences.UpdateCadence)
	r.printf("Domains:        %s\n", joinOrNone(p.Preferences.PreferredDomains))
	r.printf("Research areas: %s\n", joinOrNone(p.Insights.PrimaryResearchAreas))
	r.printf("Exploration:    %.2f\n", p.Insights.ExplorationTendency)
	r.printf("Collaboration:  %.2f\n", p.Insights.CollaborationTendency)

	if len(p.Insights.ExpertiseScores) > 0 {
		r.printf("Expertise:\n")
		domains := make([]string, 0, len(p.Insights.ExpertiseScores))
		for d := range p.Insights.ExpertiseScores {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		for _, d := range domains {
			r.printf("  %-20s %.2f\n", d, p.Insights.ExpertiseScores[d])
		}
	}

	b := p.Behavior
	r.printf("Activity:       %d views, %d searches, %d bookmarks, %d likes, %d deep dives\n",
		len(b.PaperViews), len(b.Searches), len(b.Bookmarks), len(b.Likes), len(b.DeepDives))
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}

func (r *runner) similarCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <user>",
		Short: "Rank the users most similar to a user",
		Args:  userArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 || limit > 100 {
				return fmt.Errorf("--limit must be between 1 and 100, got %d", limit)
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, ok := a.Engine.PeekProfile(args[0]); !ok {
					return fmt.Errorf("%w: %s", ErrUnknownUser, args[0])
				}
				similar := a.Engine.FindSimilarUsers(ctx, args[0], limit)
				if r.asJSON {
					return r.printJSON(similar)
				}
				if len(similar) == 0 {
					r.printf("No similar users.\n")
					return nil
				}
				tw := tabwriter.NewWriter(r.opts.Out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RANK\tUSER\tSCORE")
				for i, s := range similar {
					fmt.Fprintf(tw, "%d\t%s\t%.3f\n", i+1, s.UserID, s.Score)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of users")
	return cmd
}

func (r *runner) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <user>",
		Short: "Force a weekly mix refresh for a user",
		Long:  "Builds the user's recommendation context and asks the configured backend to rebuild their weekly mix.",
		Args:  userArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, ok := a.Engine.PeekProfile(args[0]); !ok {
					return fmt.Errorf("%w: %s", ErrUnknownUser, args[0])
				}
				ok := a.Engine.ForceUpdate(ctx, args[0])
				if r.asJSON {
					return r.printJSON(map[string]any{"user_id": args[0], "refreshed": ok})
				}
				if !ok {
					return fmt.Errorf("refresh of %s failed (backend %s)", args[0], a.Backend.State())
				}
				r.printf("Refreshed %s.\n", args[0])
				return nil
			})
		},
	}
}

func (r *runner) eraseCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "erase <user>",
		Short: "Delete every trace of a user",
		Args:  userArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("erase is irreversible; pass --yes to confirm")
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				existed := a.Engine.EraseUser(ctx, args[0])
				if r.asJSON {
					return r.printJSON(map[string]any{"user_id": args[0], "erased": existed})
				}
				if !existed {
					r.printf("Nothing stored for %s.\n", args[0])
					return nil
				}
				r.printf("Erased %s.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the erasure")
	return cmd
}

func (r *runner) nextAnchorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-anchor",
		Short: "Print when the next weekly batch refresh runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				now := r.opts.Now().In(a.Location)
				next := a.Anchor.Next(now)
				if r.asJSON {
					return r.printJSON(map[string]any{
						"next_anchor":  next,
						"seconds_left": int64(next.Sub(now).Seconds()),
					})
				}
				r.printf("%s (in %s)\n", next.Format(time.RFC3339), next.Sub(now).Round(time.Minute))
				return nil
			})
		},
	}
}

func (r *runner) weeklyMixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly-mix",
		Short: "Show the active weekly mix configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				mix := a.Engine.WeeklyMix()
				if r.asJSON {
					return r.printJSON(mix)
				}
				r.printf("Cadence:             %s\n", mix.Cadence)
				r.printf("Max recommendations: %d\n", mix.MaxRecommendations)
				r.printf("Search history:      %t\n", mix.IncludeSearchHistory)
				r.printf("Network activity:    %t\n", mix.IncludeNetworkActivity)
				r.printf("Collection activity: %t\n", mix.IncludeCollectionActivity)
				r.printf("Semantic discovery:  %t\n", mix.IncludeSemanticDiscovery)
				r.printf("Weights:             diversity %.2f, novelty %.2f, personalization %.2f\n",
					mix.DiversityWeight, mix.NoveltyWeight, mix.PersonalizationWeight)
				return nil
			})
		},
	}
}
