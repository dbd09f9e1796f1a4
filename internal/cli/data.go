package cli

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag/internal/storage"
)

const (
	hfRepo     = "happyhackingspace/nertag"
	hfBaseURL  = "https://huggingface.co/datasets/" + hfRepo + "/resolve/main/"
	modelFile  = "model.json"
	archiveTar = "data.tar.gz"
	// archiveRoot is the directory every archive entry lives under.
	archiveRoot = "data"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch or publish the CoNLL splits and model on Hugging Face",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var dataFolder string
	var skipModel bool
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Replace the dataset folder with the published splits and fetch the model",
		Example: `  nertag data download
  nertag data download --data-folder corpora/conll03 --skip-model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := downloadSplits(cmd.Context(), dataFolder); err != nil {
				return err
			}
			if skipModel {
				return nil
			}
			return downloadModel(cmd.Context(), modelFile)
		},
	}
	downloadCmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Destination dataset folder")
	downloadCmd.Flags().BoolVar(&skipModel, "skip-model", false, "Only fetch the dataset splits")

	var uploadFolder string
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Publish the dataset splits and model (requires huggingface-cli)",
		Example: `  nertag data upload
  nertag data upload --data-folder data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return uploadSplits(cmd.Context(), uploadFolder)
		},
	}
	uploadCmd.Flags().StringVar(&uploadFolder, "data-folder", "data", "Source dataset folder")

	dataCmd.AddCommand(downloadCmd, uploadCmd)
	return dataCmd
}

// fetch opens a file published in the dataset repository.
func fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	url := hfBaseURL + name
	slog.Info("Downloading", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s: HTTP %d", name, resp.StatusCode)
	}
	return resp.Body, nil
}

func downloadSplits(ctx context.Context, dataFolder string) error {
	body, err := fetch(ctx, archiveTar)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if err := os.RemoveAll(dataFolder); err != nil {
		return fmt.Errorf("clear %s: %w", dataFolder, err)
	}
	files, err := extractArchive(body, dataFolder)
	if err != nil {
		return err
	}

	splits, err := storage.NewStorage(dataFolder).Splits()
	if err != nil {
		return err
	}
	if len(splits) == 0 {
		return fmt.Errorf("archive held no %s splits", storage.Ext)
	}
	slog.Info("Dataset extracted", "folder", dataFolder, "files", files, "splits", splits)
	return nil
}

func downloadModel(ctx context.Context, path string) error {
	body, err := fetch(ctx, modelFile)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, copyErr := io.Copy(f, body)
	if err := errors.Join(copyErr, f.Close()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("Model downloaded", "path", path, "size", fmt.Sprintf("%.1fMB", float64(n)/(1<<20)))
	return nil
}

// extractArchive unpacks a gzipped tar into dataFolder and returns the number
// of regular files written.
func extractArchive(r io.Reader, dataFolder string) (int, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = gr.Close() }()

	tr := tar.NewReader(gr)
	files := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, fmt.Errorf("read archive: %w", err)
		}
		target, err := extractPath(dataFolder, hdr.Name)
		if err != nil {
			return files, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(target, 0o755)
		case tar.TypeReg:
			err = writeEntry(target, tr)
			files++
		default:
			slog.Debug("Skipping archive entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
		if err != nil {
			return files, err
		}
	}
}

func writeEntry(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(f, r)
	if err := errors.Join(copyErr, f.Close()); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// extractPath maps an archive entry under data/ into dataFolder and rejects
// entries that would escape it.
func extractPath(dataFolder, name string) (string, error) {
	rel := strings.TrimPrefix(filepath.ToSlash(name), archiveRoot+"/")
	if rel == archiveRoot {
		rel = "."
	}
	target := filepath.Join(dataFolder, filepath.FromSlash(rel))
	if r, err := filepath.Rel(dataFolder, target); err != nil || strings.HasPrefix(r, "..") {
		return "", fmt.Errorf("archive entry %q escapes %s", name, dataFolder)
	}
	return target, nil
}

func uploadSplits(ctx context.Context, dataFolder string) error {
	splits, err := storage.NewStorage(dataFolder).Splits()
	if err != nil {
		return err
	}
	if len(splits) == 0 {
		return fmt.Errorf("no %s files in %s", storage.Ext, dataFolder)
	}
	if _, err := exec.LookPath("huggingface-cli"); err != nil {
		return fmt.Errorf("huggingface-cli not found in PATH; install with: pip install huggingface_hub")
	}

	slog.Info("Creating archive", "source", dataFolder, "splits", splits, "dest", archiveTar)
	if err := writeArchive(archiveTar, dataFolder); err != nil {
		return err
	}

	if err := hfUpload(ctx, archiveTar, archiveTar); err != nil {
		return err
	}
	if err := hfUpload(ctx, dataFolder, archiveRoot+"/"); err != nil {
		return err
	}
	if _, err := os.Stat(modelFile); err == nil {
		if err := hfUpload(ctx, modelFile, modelFile); err != nil {
			return err
		}
	}
	slog.Info("Upload complete")
	return nil
}

// writeArchive packs dataFolder into a gzipped tar at path with every entry
// under data/.
func writeArchive(path, dataFolder string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	walkErr := filepath.Walk(dataFolder, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dataFolder, p)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(archiveRoot, rel))
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		src, err := os.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()
		_, err = io.Copy(tw, src)
		return err
	})
	if err := errors.Join(walkErr, tw.Close(), gw.Close(), f.Close()); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

func hfUpload(ctx context.Context, local, remote string) error {
	slog.Info("Uploading", "path", local, "repo", hfRepo)
	cmd := exec.CommandContext(ctx, "huggingface-cli", "upload", hfRepo, local, remote, "--repo-type", "dataset")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("upload %s: %w", local, err)
	}
	return nil
}
