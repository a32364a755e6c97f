package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leafmint/spendscan/internal/cli"
	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesUpdateCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	return cmd
}

func withStorage(cmd *cobra.Command, fn func(*storage.SQLiteStorage) error) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return fn(store)
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				categories, err := store.GetCategories(cmd.Context())
				if err != nil {
					return err
				}

				cmd.Println(cli.FormatTitle("Categories"))
				cmd.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-4s %-24s %-8s %s", "ID", "Name", "Type", "Description")))
				for _, cat := range categories {
					cmd.Printf("%-4d %-24s %-8s %s\n", cat.ID, cat.Name, cat.Type, cat.Description)
				}
				return nil
			})
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			catType, _ := cmd.Flags().GetString("type")

			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				cat, err := store.CreateCategory(cmd.Context(), args[0], description, model.CategoryType(catType))
				if err != nil {
					return err
				}
				cmd.Println(cli.FormatSuccess(fmt.Sprintf("created category %q (id %d)", cat.Name, cat.ID)))
				return nil
			})
		},
	}

	cmd.Flags().String("description", "", "category description")
	cmd.Flags().String("type", "expense", "category type (income, expense, system)")
	return cmd
}

func categoriesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			description, _ := cmd.Flags().GetString("description")

			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.UpdateCategory(cmd.Context(), id, args[1], description); err != nil {
					return err
				}
				cmd.Println(cli.FormatSuccess(fmt.Sprintf("updated category %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().String("description", "", "category description")
	return cmd
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Deactivate a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.DeleteCategory(cmd.Context(), id); err != nil {
					return err
				}
				cmd.Println(cli.FormatSuccess(fmt.Sprintf("deactivated category %d", id)))
				return nil
			})
		},
	}
}
