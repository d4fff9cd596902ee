package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/service/journal"
	"github.com/spf13/cobra"
)

var actAsEmail string

// localSession resolves --user (or $CONY_USER) to a session for direct
// database commands.
func localSession(a *app) (auth.Session, error) {
	email := actAsEmail
	if email == "" {
		email = os.Getenv("CONY_USER")
	}
	if email == "" {
		return auth.Session{}, fmt.Errorf("no user: pass --user or set CONY_USER")
	}
	p, err := a.db.GetProfileByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return auth.Session{}, fmt.Errorf("user %s: %w", email, err)
	}
	return auth.Session{UserID: p.ID, Role: p.Role, SessionID: "cli"}, nil
}

func journalService(a *app) *journal.Service {
	loc, _ := a.cfg.Location()
	return journal.NewService(a.log, a.db.Emotions(), a.db.Thoughts(), a.db, journal.WithLocation(loc))
}

// withJournal opens the app, resolves the user and hands both to fn.
func withJournal(fn func(ctx context.Context, svc *journal.Service, sess auth.Session) error) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := localSession(a)
	if err != nil {
		return err
	}
	return fn(context.Background(), journalService(a), sess)
}

// --- emotion commands ---

var emotionCmd = &cobra.Command{
	Use:   "emotion",
	Short: "Log and browse emotion check-ins",
}

var (
	emotionIntensity int
	emotionDate      string
	emotionNote      string
	emotionTriggers  []string
)

var emotionAddCmd = &cobra.Command{
	Use:   "add <emotion>",
	Short: "Log an emotion check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			e, err := svc.CreateEmotion(ctx, sess, journal.EmotionInput{
				Emotion:   args[0],
				Intensity: emotionIntensity,
				Date:      emotionDate,
				Note:      emotionNote,
				Triggers:  emotionTriggers,
			})
			if err != nil {
				return err
			}
			fmt.Printf("logged %s %d/10 on %s (%s)\n", e.Emotion, e.Intensity, e.Date, e.ID)
			return nil
		})
	},
}

var emotionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List check-ins, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			entries, err := svc.ListEmotions(ctx, sess)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No check-ins yet.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				triggers := make([]string, len(e.Triggers))
				for i, t := range e.Triggers {
					triggers[i] = string(t)
				}
				rows = append(rows, []string{
					string(e.Date), string(e.Emotion), strconv.Itoa(e.Intensity),
					strings.Join(triggers, ","), truncate(e.Note, 40), e.ID.String(),
				})
			}
			fmt.Println(renderTable([]string{"DATE", "EMOTION", "INTENSITY", "TRIGGERS", "NOTE", "ID"}, rows))
			return nil
		})
	},
}

var emotionRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			if err := svc.DeleteEmotion(ctx, sess, id); err != nil {
				return err
			}
			fmt.Println("deleted", id)
			return nil
		})
	},
}

// --- thought commands ---

var thoughtCmd = &cobra.Command{
	Use:   "thought",
	Short: "Record and browse CBT thought records",
}

var thoughtIn journal.ThoughtInput

var thoughtAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a thought: situation, automatic thought, evidence, alternative",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			r, err := svc.CreateThought(ctx, sess, thoughtIn)
			if err != nil {
				return err
			}
			fmt.Printf("recorded %s %d -> %d on %s (%s)\n",
				r.Emotion, r.PreIntensity, r.PostIntensity, r.Date, r.ID)
			return nil
		})
	},
}

var thoughtListCmd = &cobra.Command{
	Use:   "list",
	Short: "List thought records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			records, err := svc.ListThoughts(ctx, sess)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No thought records yet.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					string(r.Date), truncate(r.Situation, 30), r.Emotion,
					fmt.Sprintf("%d -> %d", r.PreIntensity, r.PostIntensity),
					truncate(r.AlternativeThought, 40), r.ID.String(),
				})
			}
			fmt.Println(renderTable([]string{"DATE", "SITUATION", "EMOTION", "INTENSITY", "ALTERNATIVE", "ID"}, rows))
			return nil
		})
	},
}

var thoughtRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a thought record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			if err := svc.DeleteThought(ctx, sess, id); err != nil {
				return err
			}
			fmt.Println("deleted", id)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{emotionCmd, thoughtCmd, dashboardCmd} {
		c.PersistentFlags().StringVarP(&actAsEmail, "user", "u", "", "account email (default $CONY_USER)")
	}

	f := emotionAddCmd.Flags()
	f.IntVarP(&emotionIntensity, "intensity", "i", 5, "intensity 1-10")
	f.StringVar(&emotionDate, "date", "", "YYYY-MM-DD (default today)")
	f.StringVar(&emotionNote, "note", "", "free-text note")
	f.StringSliceVarP(&emotionTriggers, "trigger", "t", nil, "trigger (repeatable): work, family, relationships, health, money, social, studies, future")
	emotionCmd.AddCommand(emotionAddCmd, emotionListCmd, emotionRmCmd)

	f = thoughtAddCmd.Flags()
	f.StringVar(&thoughtIn.Date, "date", "", "YYYY-MM-DD (default today)")
	f.StringVar(&thoughtIn.Situation, "situation", "", "what happened")
	f.StringVar(&thoughtIn.AutomaticThought, "thought", "", "the automatic thought")
	f.StringVar(&thoughtIn.Emotion, "emotion", "", "emotion felt")
	f.IntVar(&thoughtIn.PreIntensity, "pre", 5, "intensity before, 1-10")
	f.StringVar(&thoughtIn.Evidence, "evidence", "", "evidence for and against")
	f.StringVar(&thoughtIn.AlternativeThought, "alternative", "", "a balanced alternative thought")
	f.IntVar(&thoughtIn.PostIntensity, "post", 5, "intensity after, 1-10")
	thoughtCmd.AddCommand(thoughtAddCmd, thoughtListCmd, thoughtRmCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
