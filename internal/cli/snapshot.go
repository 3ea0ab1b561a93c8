package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/persist"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the current state to a compressed snapshot file",
		Long: `Write the restored state to a zstd-compressed snapshot file.

Examples:
  vibe export --db vibe.db backup/state.json.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportState(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the current state with a snapshot file",
		Long: `Read a snapshot file, verify its digest and save it as the current
state. A halted snapshot is loaded but not saved.

Examples:
  vibe import --db vibe.db backup/state.json.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importState(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

type snapshotView struct {
	File   string         `json:"file"`
	Header persist.Header `json:"header"`
	Save   *persist.Ack   `json:"save,omitempty"`
}

func (v snapshotView) String() string {
	s := fmt.Sprintf("%s: %s clock %d digest %s\n", v.File, v.Header.Engine, v.Header.Clock, v.Header.Digest)
	if v.Save != nil {
		s += describeSave(*v.Save)
	}
	return s
}

func exportState(cmd *cobra.Command, opts *RootOptions, path string) (err error) {
	rt, err := openRuntime(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	h, err := persist.ExportFile(path, rt.engine.State())
	if err != nil {
		return WrapExitError(ExitCommandError, "exporting snapshot", err)
	}
	return newFormatter(cmd, opts).Success(snapshotView{File: path, Header: h})
}

func importState(cmd *cobra.Command, opts *RootOptions, path string) (err error) {
	s, h, err := persist.ImportFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "importing snapshot", err)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	rt.engine.Load(s)
	ack, err := rt.save(ctx)
	if err != nil {
		return err
	}
	return newFormatter(cmd, opts).Success(snapshotView{File: path, Header: h, Save: &ack})
}
