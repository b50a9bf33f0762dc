package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nainya/docdiff/pkg/snapshot"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store document exports per version and compare versions",
	}
	cmd.PersistentFlags().String("store", "docdiff.db", "Snapshot store file path")

	cmd.AddCommand(newSnapshotPutCmd(a))
	cmd.AddCommand(newSnapshotGetCmd(a))
	cmd.AddCommand(newSnapshotHistoryCmd(a))
	cmd.AddCommand(newSnapshotDiffCmd(a))
	cmd.AddCommand(newSnapshotDeleteCmd(a))

	return cmd
}

// withStore opens the configured store for the duration of fn
func (a *app) withStore(fn func(*snapshot.Store) error) error {
	store, err := snapshot.Open(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newSnapshotPutCmd(a *app) *cobra.Command {
	var (
		createdBy   string
		description string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "put DOCUMENT VERSION FILE",
		Short: "Store a document export as a version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[2])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[2], err)
			}
			snap := &snapshot.Snapshot{
				DocumentID:  args[0],
				VersionID:   args[1],
				CreatedBy:   createdBy,
				Description: description,
				Tags:        tags,
				Content:     content,
			}
			return a.withStore(func(store *snapshot.Store) error {
				if err := store.Put(snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s version %s (%d bytes)\n", snap.DocumentID, snap.VersionID, len(content))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&createdBy, "by", os.Getenv("USER"), "Author of the version")
	cmd.Flags().StringVar(&description, "description", "", "Version description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Version tags")

	return cmd
}

func newSnapshotGetCmd(a *app) *cobra.Command {
	var (
		version string
		tag     string
		asOf    string
	)

	cmd := &cobra.Command{
		Use:   "get DOCUMENT",
		Short: "Print a stored export, the latest one unless selected otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *snapshot.Store) error {
				var snap *snapshot.Snapshot
				var err error
				switch {
				case version != "":
					snap, err = store.Get(args[0], version)
				case tag != "":
					snap, err = store.ByTag(args[0], tag)
				case asOf != "":
					var at time.Time
					if at, err = time.Parse(time.RFC3339, asOf); err != nil {
						return fmt.Errorf("--as-of must be RFC 3339: %w", err)
					}
					snap, err = store.AsOf(args[0], at)
				default:
					snap, err = store.Latest(args[0])
				}
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(snap.Content)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&version, "id", "", "Version id")
	cmd.Flags().StringVar(&tag, "tag", "", "Version tag")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Version current at this RFC 3339 time")

	return cmd
}

func newSnapshotHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history DOCUMENT",
		Short: "List the stored versions of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *snapshot.Store) error {
				history, err := store.History(args[0])
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"Version", "Created", "By", "Tags", "Description"})
				table.SetBorder(false)
				table.SetAutoWrapText(false)
				for _, snap := range history.Snapshots {
					table.Append([]string{
						snap.VersionID,
						snap.CreatedAt.UTC().Format(time.RFC3339),
						snap.CreatedBy,
						strings.Join(snap.Tags, ","),
						snap.Description,
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

func newSnapshotDiffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff DOCUMENT LEFT_VERSION RIGHT_VERSION",
		Short: "Compare two stored versions of a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			return a.withStore(func(store *snapshot.Store) error {
				diff, err := svc.DiffVersions(cmd.Context(), store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return a.renderer().Render(cmd.OutOrStdout(), diff)
			})
		},
	}

	addOutputFlags(cmd)
	return cmd
}

func newSnapshotDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete DOCUMENT VERSION",
		Short: "Delete a stored version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *snapshot.Store) error {
				if err := store.Delete(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s version %s\n", args[0], args[1])
				return nil
			})
		},
	}
}
