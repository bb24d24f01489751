package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/app"
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Inspect and change a single material",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var materialGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withAuthorizedSession(cmd, "material get", func(a *app.App) error {
			m, err := a.Client.GetMaterial(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.Render(m, materialText(a, m))
		})
	},
}

var materialCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a material",
	Long: `Create a material.

Example:
  stockroom material create --material-id B-7 --name Bearing --warehouse north --shelf A3 --quantity 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		m := api.Material{}
		m.MaterialID, _ = f.GetString("material-id")
		m.Name, _ = f.GetString("name")
		m.ModelNumber, _ = f.GetString("model")
		m.Category, _ = f.GetString("category")
		m.Equipment, _ = f.GetString("equipment")
		m.Warehouse, _ = f.GetString("warehouse")
		m.Shelf, _ = f.GetString("shelf")
		m.Quantity, _ = f.GetInt("quantity")

		return withAuthorizedSession(cmd, "material create", func(a *app.App) error {
			created, err := a.Client.CreateMaterial(cmd.Context(), m)
			if err != nil {
				return err
			}
			return a.Render(created, materialText(a, created))
		})
	},
}

var materialUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a material",
	Long: `Change the fields given as flags and keep the others.

Example:
  stockroom material update 3 --warehouse south --shelf B1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withAuthorizedSession(cmd, "material update", func(a *app.App) error {
			m, err := a.Client.GetMaterial(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := applyMaterialFlags(cmd, m); err != nil {
				return err
			}
			updated, err := a.Client.UpdateMaterial(cmd.Context(), *m)
			if err != nil {
				return err
			}
			return a.Render(updated, materialText(a, updated))
		})
	},
}

var materialAdjustCmd = &cobra.Command{
	Use:   "adjust <id> <quantity>",
	Short: "Set the stocked quantity of a material",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty < 0 {
			return fmt.Errorf("invalid quantity %q: must be a non-negative integer", args[1])
		}
		return withAuthorizedSession(cmd, "material adjust", func(a *app.App) error {
			m, err := a.Client.AdjustQuantity(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			return a.Render(m, materialText(a, m))
		})
	},
}

var materialDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := prompter.Confirm(fmt.Sprintf("Delete material %d?", id), false)
			if err != nil {
				return fmt.Errorf("%w (pass --yes to skip confirmation)", err)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}
		return withAuthorizedSession(cmd, "material delete", func(a *app.App) error {
			if err := a.Client.DeleteMaterial(cmd.Context(), id); err != nil {
				return err
			}
			return a.Render(map[string]int{"deleted": id}, fmt.Sprintf("Deleted material %d.", id))
		})
	},
}

func init() {
	f := materialCreateCmd.Flags()
	f.String("material-id", "", "material code (required)")
	f.String("name", "", "display name")
	f.String("model", "", "model number")
	f.String("category", "", "category")
	f.String("equipment", "", "equipment the material belongs to")
	f.String("warehouse", "", "warehouse")
	f.String("shelf", "", "shelf")
	f.Int("quantity", 0, "initial quantity")
	_ = materialCreateCmd.MarkFlagRequired("material-id")

	u := materialUpdateCmd.Flags()
	u.String("material-id", "", "material code")
	u.String("name", "", "display name")
	u.String("model", "", "model number")
	u.String("category", "", "category")
	u.String("equipment", "", "equipment the material belongs to")
	u.String("warehouse", "", "warehouse")
	u.String("shelf", "", "shelf")
	u.Int("quantity", 0, "quantity")

	materialDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	materialCmd.AddCommand(materialGetCmd, materialCreateCmd, materialUpdateCmd, materialAdjustCmd, materialDeleteCmd)
	rootCmd.AddCommand(materialCmd)
}

func withAuthorizedSession(cmd *cobra.Command, action string, fn func(a *app.App) error) error {
	return withSession(cmd, func(a *app.App) error {
		if err := a.RequireAuth(action); err != nil {
			return err
		}
		return fn(a)
	})
}

// applyMaterialFlags overwrites the fields of m whose flags were set.
func applyMaterialFlags(cmd *cobra.Command, m *api.Material) error {
	f := cmd.Flags()
	changed := false
	strs := map[string]*string{
		"material-id": &m.MaterialID,
		"name":        &m.Name,
		"model":       &m.ModelNumber,
		"category":    &m.Category,
		"equipment":   &m.Equipment,
		"warehouse":   &m.Warehouse,
		"shelf":       &m.Shelf,
	}
	for name, field := range strs {
		if f.Changed(name) {
			*field, _ = f.GetString(name)
			changed = true
		}
	}
	if f.Changed("quantity") {
		changed = true
		qty, _ := f.GetInt("quantity")
		if qty < 0 {
			return fmt.Errorf("invalid quantity %d: must be a non-negative integer", qty)
		}
		m.Quantity = qty
	}
	if !changed {
		return fmt.Errorf("nothing to update: pass at least one field flag")
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid material id %q: must be a positive integer", s)
	}
	return id, nil
}

func materialText(a *app.App, m *api.Material) string {
	return a.Styles().KeyValues([][2]string{
		{"id", strconv.Itoa(m.ID)},
		{"material", m.MaterialID},
		{"name", m.Name},
		{"model", m.ModelNumber},
		{"category", m.Category},
		{"equipment", m.Equipment},
		{"warehouse", m.Warehouse},
		{"shelf", m.Shelf},
		{"quantity", strconv.Itoa(m.Quantity)},
	})
}
