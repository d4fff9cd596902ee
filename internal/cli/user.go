package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/service/account"
	"github.com/lazypower/cony/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts directly in the database",
}

var (
	userAddName     string
	userAddPassword string
	userAddRole     string
	userListRole    string
	sessionsLimit   int
)

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create an account with any role",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userRoleCmd = &cobra.Command{
	Use:   "role <email> <patient|psychologist|admin>",
	Short: "Change an account's role and sign it out everywhere",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserRole,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runUserList,
}

var userSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sign-in sessions",
	RunE:  runUserSessions,
}

func init() {
	userAddCmd.Flags().StringVar(&userAddName, "name", "", "display name")
	userAddCmd.Flags().StringVar(&userAddPassword, "password", "", "password (default $CONY_PASSWORD)")
	userAddCmd.Flags().StringVar(&userAddRole, "role", string(domain.RolePatient), "patient, psychologist or admin")
	userAddCmd.MarkFlagRequired("name")
	userListCmd.Flags().StringVar(&userListRole, "role", "", "only list this role")

	userSessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "number of sessions to show")

	userCmd.AddCommand(userAddCmd, userRoleCmd, userListCmd, userSessionsCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	if !domain.IsKnownRole(userAddRole) {
		return fmt.Errorf("unknown role %q", userAddRole)
	}
	password := userAddPassword
	if password == "" {
		password = os.Getenv("CONY_PASSWORD")
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	loc, _ := a.cfg.Location()
	tokens := auth.NewJWTManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer, a.cfg.Auth.AccessTTL)
	accounts := account.NewService(a.log, a.db, a.db, a.db, tokens, a.cfg.Auth.BcryptCost, account.WithLocation(loc))

	p, err := accounts.Register(context.Background(), account.SignUpInput{
		Email:    args[0],
		Password: password,
		Name:     userAddName,
	}, domain.Role(userAddRole))
	if err != nil {
		return err
	}
	fmt.Printf("created %s %s (%s)\n", p.Role, p.Email, p.ID)
	return nil
}

func runUserRole(cmd *cobra.Command, args []string) error {
	role := strings.ToLower(args[1])
	if !domain.IsKnownRole(role) {
		return fmt.Errorf("unknown role %q", args[1])
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.db.GetProfileByEmail(strings.ToLower(args[0]))
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	if err := a.db.SetRole(p.ID, domain.Role(role)); err != nil {
		return err
	}
	n, err := a.db.RevokeUserSessions(p.ID)
	if err != nil {
		return err
	}
	a.log.Info("role changed", zap.String("user_id", p.ID.String()), zap.String("role", role))
	fmt.Printf("%s is now %s (%d sessions revoked)\n", p.Email, role, n)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	var filter *domain.Role
	if userListRole != "" {
		if !domain.IsKnownRole(userListRole) {
			return fmt.Errorf("unknown role %q", userListRole)
		}
		r := domain.Role(userListRole)
		filter = &r
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.db.ListProfiles(filter)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No accounts.")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		last := "never"
		if u.LastActivity != nil {
			last = u.LastActivity.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{u.Email, u.Name, string(u.Role), string(u.RegistrationDate), last})
	}
	fmt.Println(renderTable([]string{"EMAIL", "NAME", "ROLE", "REGISTERED", "LAST ACTIVE"}, rows))
	return nil
}

func runUserSessions(cmd *cobra.Command, args []string) error {
	if sessionsLimit < 1 {
		return fmt.Errorf("--limit must be positive")
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.db.GetRecentSessions(sessionsLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}

	users, err := a.db.ListProfiles(nil)
	if err != nil {
		return err
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	fmt.Println(renderTable([]string{"USER", "SESSION", "STARTED", "STATUS"}, sessionRows(sessions, emails, time.Now())))
	return nil
}

// sessionRows formats sessions for renderTable. Active sessions past their
// expiry show as expired.
func sessionRows(sessions []store.Session, emails map[uuid.UUID]string, now time.Time) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		who, ok := emails[s.UserID]
		if !ok {
			who = s.UserID.String()
		}
		status := s.Status
		if status == "active" && !s.Active(now) {
			status = "expired"
		}
		started := time.UnixMilli(s.StartedAt).Format("2006-01-02 15:04")
		rows = append(rows, []string{who, truncate(s.SessionID, 12), started, status})
	}
	return rows
}

// renderTable draws rows with a rounded border and a bold header.
func renderTable(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Render()
}
