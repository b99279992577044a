package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/config"
	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/tools/common"
)

const toolName = "seed"

var errDryRunRollback = errors.New("dry-run rollback")

type seedFlags struct {
	adminUserName string
}

// NewCommand builds the seed subtree; it shares the parent's persistent flags.
func NewCommand(opts *common.Options) *cobra.Command {
	flags := &seedFlags{}
	cmd := &cobra.Command{Use: "seed", Short: "Role and bootstrap admin seeding"}
	cmd.PersistentFlags().StringVar(&flags.adminUserName, "bootstrap-admin-username", "", "override bootstrap admin username")
	cmd.AddCommand(newApplyCommand(opts, flags), newDryRunCommand(opts, flags))
	return cmd
}

func newApplyCommand(opts *common.Options, flags *seedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply default seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Execute(cmd, toolName, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := opts.LoadConfigDB()
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)

				report, err := database.SeedSync(db.WithContext(ctx), bootstrapAdmin(cfg, flags))
				if err != nil {
					return nil, err
				}
				return describe(report, false), nil
			})
		},
	}
}

// dry-run executes the real seed inside a transaction that is always rolled back.
func newDryRunCommand(opts *common.Options, flags *seedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Execute(cmd, toolName, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, db, err := opts.LoadConfigDB()
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)

				var report *database.SeedReport
				err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
					var seedErr error
					report, seedErr = database.SeedSync(tx, bootstrapAdmin(cfg, flags))
					if seedErr != nil {
						return seedErr
					}
					return errDryRunRollback
				})
				if !errors.Is(err, errDryRunRollback) {
					return nil, err
				}
				return describe(report, true), nil
			})
		},
	}
}

func bootstrapAdmin(cfg *config.Config, flags *seedFlags) database.BootstrapAdmin {
	admin := database.BootstrapAdmin{UserName: cfg.BootstrapAdminUserName, Password: cfg.BootstrapAdminPassword}
	if name := strings.TrimSpace(flags.adminUserName); name != "" {
		admin.UserName = name
	}
	return admin
}

func describe(report *database.SeedReport, dryRun bool) []string {
	created, bound := "created", "bound"
	if dryRun {
		created, bound = "would create", "would bind"
	}
	details := []string{fmt.Sprintf("%s roles: %d", created, report.CreatedRoles)}
	if report.CreatedAdmin {
		details = append(details, "bootstrap admin credential "+created)
	}
	if report.BoundAdminRole {
		details = append(details, "admin role "+bound+" to bootstrap admin")
	}
	if report.Noop {
		details = append(details, "nothing to do")
	}
	return details
}
