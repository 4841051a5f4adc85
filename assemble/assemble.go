// Package assemble stitches per-scene clips into the final video. Clips are
// downloaded into a scratch directory, concatenated without re-encoding, and
// the result is uploaded to asset storage. The scratch directory is removed
// on every exit path.
package assemble

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/project"
)

// Concatenator joins ordered clip files into a single output file.
type Concatenator interface {
	Concat(ctx context.Context, clipPaths []string, outPath string) error
}

// FFmpegConcatenator concatenates via the ffmpeg concat demuxer with stream
// copy, so clips are joined losslessly.
type FFmpegConcatenator struct {
	// Binary overrides the ffmpeg executable path. Empty selects "ffmpeg".
	Binary string
}

func (f *FFmpegConcatenator) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), "concat.txt")
	var sb strings.Builder
	for _, p := range clipPaths {
		fmt.Fprintf(&sb, "file '%s'\n", p)
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	bin := f.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w: %s", err, string(out))
	}
	return nil
}

// Options configures the stitcher.
type Options struct {
	Logger      logging.Logger
	HTTPClient  *http.Client
	Concat      Concatenator
	DownloadDir string
}

// Stitcher downloads ready clips in scene order and produces the final video.
type Stitcher struct {
	store      asset.Store
	httpClient *http.Client
	concat     Concatenator
	logger     logging.Logger
	scratchDir string
}

// NewStitcher creates a stitcher writing output to the given asset store.
func NewStitcher(store asset.Store, optFns ...func(o *Options)) *Stitcher {
	opts := Options{
		Logger:     logging.NewDefaultLogger(),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Concat:     &FFmpegConcatenator{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Stitcher{
		store:      store,
		httpClient: opts.HTTPClient,
		concat:     opts.Concat,
		logger:     opts.Logger,
		scratchDir: opts.DownloadDir,
	}
}

// Stitch concatenates every scene clip in index order and uploads the result.
// All scenes must have ready clips; callers validate this before invoking.
// Returns the URL of the uploaded final video.
func (s *Stitcher) Stitch(ctx context.Context, p *project.Project) (string, error) {
	if len(p.Scenes) == 0 {
		return "", fmt.Errorf("no scenes to assemble")
	}
	for _, sc := range p.Scenes {
		if sc.Clip.Status != project.AssetReady || sc.Clip.URL == "" {
			return "", fmt.Errorf("scene %d clip is not ready", sc.Index)
		}
	}

	scratch, err := os.MkdirTemp(s.scratchDir, "reelforge-stitch-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			s.logger.Warn("assemble.scratch.cleanup_failed", "dir", scratch, "error", rmErr)
		}
	}()

	ordered := append([]project.Scene(nil), p.Scenes...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	clipPaths := make([]string, len(ordered))
	for i, sc := range ordered {
		path := filepath.Join(scratch, fmt.Sprintf("clip-%03d-%s.mp4", sc.Index, sc.ID))
		if err := s.download(ctx, sc.Clip.URL, path); err != nil {
			return "", fmt.Errorf("download clip for scene %d: %w", sc.Index, err)
		}
		clipPaths[i] = path
	}

	outPath := filepath.Join(scratch, "final.mp4")
	if err := s.concat.Concat(ctx, clipPaths, outPath); err != nil {
		return "", err
	}

	f, err := os.Open(outPath)
	if err != nil {
		return "", fmt.Errorf("open stitched output: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat stitched output: %w", err)
	}

	objectName := fmt.Sprintf("projects/%s/final/%s.mp4", p.ID, project.NewID())
	url, err := s.store.Upload(ctx, objectName, f, info.Size(), "video/mp4")
	if err != nil {
		return "", fmt.Errorf("upload final video: %w", err)
	}

	s.logger.Info("assemble.complete", "project_id", p.ID, "scenes", len(p.Scenes), "url", url)
	return url, nil
}

func (s *Stitcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch clip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch clip: status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create clip file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write clip file: %w", err)
	}
	return nil
}
