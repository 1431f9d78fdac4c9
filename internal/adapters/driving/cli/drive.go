package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/localwatch"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Manage files in the workspace drive",
	Long: `List, upload and delete files in the workspace drive.

Uploaded files are indexed by the backend shortly after upload.`,
	RunE: runDriveList,
}

var driveListCmd = &cobra.Command{
	Use:     "ls [path]",
	Aliases: []string{"list"},
	Short:   "List a drive directory",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runDriveList,
}

var driveMkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a drive directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriveMkdir,
}

var driveRmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Delete drive files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDriveRm,
}

var driveUploadCmd = &cobra.Command{
	Use:     "upload <file>...",
	Short:   "Upload local files into a drive directory",
	Example: "  sercha-workspace drive upload --to /reports q1.pdf q2.pdf",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDriveUpload,
}

var driveSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ask the backend to sync the drive now",
	RunE:  runDriveSync,
}

var driveWatchCmd = &cobra.Command{
	Use:   "watch <local-dir>",
	Short: "Upload files as they change in a local folder",
	Long: `Watch a local folder and upload new or changed files into a drive
directory, mirroring sub-folders. Auto-sync runs while watching.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runDriveWatch,
}

var driveTarget string

func init() {
	driveUploadCmd.Flags().StringVar(&driveTarget, "to", "", "drive directory (default: drive root)")
	driveWatchCmd.Flags().StringVar(&driveTarget, "to", "", "drive directory (default: drive root)")

	driveCmd.AddCommand(driveListCmd)
	driveCmd.AddCommand(driveMkdirCmd)
	driveCmd.AddCommand(driveRmCmd)
	driveCmd.AddCommand(driveUploadCmd)
	driveCmd.AddCommand(driveSyncCmd)
	driveCmd.AddCommand(driveWatchCmd)
	rootCmd.AddCommand(driveCmd)
}

func requireDrive() error {
	if driveService == nil {
		return errNotConfigured("drive")
	}
	return requireCredentials()
}

// targetDir resolves --to against the current drive path.
func targetDir() string {
	if driveTarget == "" {
		return driveService.Path()
	}
	return domain.CleanDrivePath(driveTarget)
}

func runDriveList(cmd *cobra.Command, args []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	dir := driveService.Path()
	if len(args) == 1 {
		dir = args[0]
	}
	if err := driveService.ChangeDir(commandContext(cmd), dir); err != nil {
		return userError("list drive", err)
	}

	entries := driveService.Listing()
	cmd.Println(driveService.Path())
	if len(entries) == 0 {
		cmd.Println("(empty)")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name, size, indexed := e.Name, formatSize(e.Size), "yes"
		if e.IsDir {
			name += "/"
			size, indexed = "-", "-"
		} else if !e.Indexed {
			indexed = "pending"
		}
		rows = append(rows, []string{name, size, formatTime(e.ModifiedAt), indexed})
	}
	cmd.Println(renderTable([]string{"NAME", "SIZE", "MODIFIED", "INDEXED"}, rows))
	return nil
}

func runDriveMkdir(cmd *cobra.Command, args []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	full := domain.CleanDrivePath(args[0])
	if full == "/" {
		return fmt.Errorf("%w: cannot create the drive root", domain.ErrInvalidInput)
	}
	if err := driveService.ChangeDir(ctx, path.Dir(full)); err != nil {
		return userError("mkdir", err)
	}
	if err := driveService.Mkdir(ctx, path.Base(full)); err != nil {
		return userError("mkdir", err)
	}
	cmd.Printf("Created %s\n", full)
	return nil
}

func runDriveRm(cmd *cobra.Command, args []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	paths := make([]string, len(args))
	for i, a := range args {
		paths[i] = domain.CleanDrivePath(a)
	}
	result, err := driveService.Delete(commandContext(cmd), paths)
	if err != nil {
		return userError("delete", err)
	}
	if result.Partial {
		for _, f := range result.Failed {
			cmd.PrintErrf("  could not delete %s\n", f)
		}
		return fmt.Errorf("deleted %d of %d", len(paths)-len(result.Failed), len(paths))
	}
	cmd.Printf("Deleted %d item(s).\n", len(paths))
	return nil
}

func runDriveUpload(cmd *cobra.Command, args []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := driveService.ChangeDir(ctx, targetDir()); err != nil {
		return userError("upload", err)
	}
	return uploadLocal(ctx, cmd, args)
}

// uploadLocal opens local files and uploads them into the current drive path,
// drawing a progress bar while the batch runs.
func uploadLocal(ctx context.Context, cmd *cobra.Command, paths []string) error {
	files := make([]domain.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p) //nolint:gosec // user-selected file
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, p)
		}
		files = append(files, domain.UploadFile{Name: filepath.Base(p), Size: info.Size(), Content: f})
	}

	done := make(chan struct{})
	go drawUploadProgress(cmd, done)
	result, err := driveService.Upload(ctx, files)
	close(done)
	if err != nil {
		if notice := driveService.Notice(); notice != "" && !errors.Is(err, domain.ErrQuotaExceeded) {
			return errors.New(notice)
		}
		return userError("upload", err)
	}

	if result.Partial {
		for _, name := range result.Failed {
			cmd.PrintErrf("  failed: %s\n", name)
		}
		cmd.Printf("Uploaded %d of %d file(s) to %s\n", len(files)-len(result.Failed), len(files), driveService.Path())
		return nil
	}
	cmd.Printf("Uploaded %d file(s) to %s\n", len(files), driveService.Path())
	return nil
}

func drawUploadProgress(cmd *cobra.Command, done <-chan struct{}) {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	drawn := false
	for {
		select {
		case <-done:
			if drawn {
				cmd.Println()
			}
			return
		case <-ticker.C:
			tasks := driveService.Uploads()
			if len(tasks) == 0 {
				continue
			}
			total := 0
			for _, t := range tasks {
				total += t.ProgressPercent
			}
			cmd.Printf("\r%s %d file(s)", bar.ViewAs(float64(total)/float64(100*len(tasks))), len(tasks))
			drawn = true
		}
	}
}

func runDriveSync(cmd *cobra.Command, _ []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	if err := driveService.SyncNow(commandContext(cmd)); err != nil {
		return userError("sync", err)
	}
	cmd.Println("Drive sync requested.")
	return nil
}

func runDriveWatch(cmd *cobra.Command, args []string) error {
	if err := requireDrive(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	base := targetDir()

	w, err := localwatch.New(root, localwatch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	defer w.Close()

	driveService.SetVisible(ctx, true)
	defer driveService.SetVisible(ctx, false)

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watch: %v", err)
		}
	}()

	cmd.Printf("Watching %s, uploading into %s. Press Ctrl+C to stop.\n", root, base)
	for batch := range w.Batches() {
		for dir, paths := range groupByDir(root, batch) {
			target := domain.JoinDrivePath(base, dir)
			if err := ensureDriveDir(ctx, target); err != nil {
				logger.Warn("watch: %s: %v", target, err)
				continue
			}
			if err := uploadLocal(ctx, cmd, paths); err != nil {
				cmd.PrintErrf("upload into %s failed: %v\n", target, err)
			}
		}
	}
	return nil
}

// groupByDir groups changed files by their directory relative to root.
func groupByDir(root string, batch []string) map[string][]string {
	groups := make(map[string][]string)
	for _, p := range batch {
		dir := localwatch.RelativeDir(root, p)
		groups[dir] = append(groups[dir], p)
	}
	for _, paths := range groups {
		sort.Strings(paths)
	}
	return groups
}

// ensureDriveDir changes into target, creating missing directories on the way.
func ensureDriveDir(ctx context.Context, target string) error {
	if err := driveService.ChangeDir(ctx, target); err == nil {
		return nil
	}
	current := "/"
	for _, segment := range strings.Split(strings.Trim(target, "/"), "/") {
		next := domain.JoinDrivePath(current, segment)
		if err := driveService.ChangeDir(ctx, next); err != nil {
			if err := driveService.ChangeDir(ctx, current); err != nil {
				return err
			}
			if err := driveService.Mkdir(ctx, segment); err != nil {
				return err
			}
			if err := driveService.ChangeDir(ctx, next); err != nil {
				return err
			}
		}
		current = next
	}
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
