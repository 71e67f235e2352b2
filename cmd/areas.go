package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Manage saved analysis areas",
}

var areasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		areas, err := s.ListAreas(ctx)
		if err != nil {
			return err
		}
		return writeJSON("", areas)
	},
}

var areasSaveFlags struct {
	name        string
	polygonPath string
}

var areasSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a drawn polygon as a named area",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		polygon, err := readPolygonFile(areasSaveFlags.polygonPath)
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		area, err := s.SaveArea(ctx, areasSaveFlags.name, polygon)
		if err != nil {
			return err
		}
		zap.L().Info("areas: saved", zap.String("id", area.ID), zap.String("name", area.Name))
		return writeJSON("", area)
	},
}

var areasDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved area and its analysis history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.DeleteArea(ctx, args[0]); err != nil {
			return err
		}
		zap.L().Info("areas: deleted", zap.String("id", args[0]))
		return nil
	},
}

var areasHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "List analysis snapshots for a saved area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		snapshots, err := s.ListAnalyses(ctx, args[0])
		if err != nil {
			return err
		}
		return writeJSON("", snapshots)
	},
}

func init() {
	areasSaveCmd.Flags().StringVar(&areasSaveFlags.name, "name", "", "area name")
	areasSaveCmd.Flags().StringVar(&areasSaveFlags.polygonPath, "polygon", "", "JSON file with the polygon vertices")
	_ = areasSaveCmd.MarkFlagRequired("name")
	_ = areasSaveCmd.MarkFlagRequired("polygon")

	areasCmd.AddCommand(areasListCmd, areasSaveCmd, areasDeleteCmd, areasHistoryCmd)
	rootCmd.AddCommand(areasCmd)
}
