package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ci-tools/docker-scout-action/internal/runtime"
	"github.com/ci-tools/docker-scout-action/internal/viper"
)

func runtimeAssetsCmd() *cobra.Command {
	runtimeAssetsCmd := &cobra.Command{
		Use:   "runtime-assets [version]",
		Short: "Returns information about assets used at runtime.",
		Long:  `This command will return the scanner image scout-action pulls, pinned by digest. Useful for mirroring it into a disconnected registry.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runtimeAssetsRunE,
	}

	return runtimeAssetsCmd
}

func runtimeAssetsRunE(cmd *cobra.Command, args []string) error {
	scoutVersion := viper.Instance().GetString("version")
	if len(args) == 1 {
		scoutVersion = args[0]
	}

	return printAssets(cmd.Context(), cmd.OutOrStdout(), scoutVersion)
}

func printAssets(ctx context.Context, w io.Writer, scoutVersion string) error {
	assets := runtime.Assets(ctx, scoutVersion)

	assetsJSON, err := prettyPrintJSON(assets)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, assetsJSON)
	return nil
}

// prettyPrintJSON marshals v with standard pretty print spacing and returns
// it in string form.
func prettyPrintJSON(v interface{}) (string, error) {
	json, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", err
	}

	return string(json), nil
}
