package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bitbucket.org/creachadair/stringset"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/text"
)

// ErrSearchInputNotFound means the whole search-input selector chain missed.
// There is no way to issue a query, so the attempt is unrecoverable.
var ErrSearchInputNotFound = errors.New("search input not found")

// StatusFunc receives human-readable progress lines during a session.
type StatusFunc func(msg string)

// SessionOptions configures the browsing context a session runs in.
type SessionOptions struct {
	Visible            bool
	UseExistingProfile bool
	ProfileDir         string // used when UseExistingProfile is set
	ChromePath         string // optional explicit browser binary
	MaxScrolls         int
}

// HarvestRequest is one query attempt: collect up to ImagesNeeded images for
// Query into OutDir. When Stamps are provided, artifacts are named by
// timestamp; otherwise by query token and counter.
type HarvestRequest struct {
	Query        string
	OutDir       string
	ImagesNeeded int
	Stamps       []string
	StartIndex   int
	Status       StatusFunc
}

// SessionDriver drives a real browser through Google Images: search, scroll,
// click thumbnails, resolve full-size URLs, download. One fresh browsing
// context per Run call.
type SessionDriver struct {
	opts    SessionOptions
	fetcher *ImageFetcher
}

func NewSessionDriver(opts SessionOptions) *SessionDriver {
	if opts.MaxScrolls < 1 {
		opts.MaxScrolls = config.DefaultMaxScrolls
	}
	return &SessionDriver{opts: opts, fetcher: NewImageFetcher()}
}

// Run executes one attempt and returns how many images it saved. Individual
// thumbnail or download failures are skipped; only a missing search surface
// or a dead browsing context fail the attempt.
func (d *SessionDriver) Run(ctx context.Context, req HarvestRequest) (int, error) {
	if req.ImagesNeeded < 1 {
		return 0, nil
	}
	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", req.OutDir, err)
	}

	status := req.Status
	if status == nil {
		status = func(string) {}
	}

	profileDir, err := d.profileDir()
	if err != nil {
		return 0, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", !d.opts.Visible),
	)
	if d.opts.Visible {
		allocOpts = append(allocOpts, chromedp.Flag("start-maximized", true))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("disable-gpu", true))
	}
	if d.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(d.opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	if err := chromedp.Run(taskCtx, chromedp.Navigate(config.GoogleImagesURL)); err != nil {
		return 0, fmt.Errorf("opening image search: %w", err)
	}

	inputSel, ok := firstMatch(searchInputSelectors, func(sel string) (int, error) {
		wctx, cancel := context.WithTimeout(taskCtx, config.SelectorWaitTimeout)
		defer cancel()
		var nodes []*cdp.Node
		if err := chromedp.Run(wctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(1))); err != nil {
			return 0, err
		}
		return len(nodes), nil
	})
	if !ok {
		return 0, ErrSearchInputNotFound
	}

	status(fmt.Sprintf("Searching images for: %s", req.Query))
	if err := chromedp.Run(taskCtx,
		chromedp.SendKeys(inputSel, req.Query+kb.Enter, chromedp.ByQuery),
		resultsSettle(),
	); err != nil {
		return 0, fmt.Errorf("submitting query %q: %w", req.Query, err)
	}

	seen := stringset.New()
	saved := 0

	for scroll := 0; scroll < d.opts.MaxScrolls && saved < req.ImagesNeeded; scroll++ {
		thumbs := d.nodesForChain(taskCtx, thumbnailSelectors)
		if len(thumbs) == 0 {
			status(fmt.Sprintf("No thumbnails found for '%s'", req.Query))
			break
		}

		for _, thumb := range thumbs {
			if saved >= req.ImagesNeeded {
				break
			}
			if err := ctx.Err(); err != nil {
				return saved, err
			}

			cctx, cancel := context.WithTimeout(taskCtx, config.ThumbClickTimeout)
			err := chromedp.Run(cctx, chromedp.MouseClickNode(thumb))
			cancel()
			if err != nil {
				continue
			}
			if err := chromedp.Run(taskCtx, chromedp.Sleep(config.DetailSettleDelay)); err != nil {
				return saved, err
			}

			url := pickImageURL(d.detailSources(taskCtx, req.Query))
			if url == "" || seen.Contains(url) {
				continue
			}
			seen.Add(url)

			dest := filepath.Join(req.OutDir, imageFileName(req.Query, req.Stamps, req.StartIndex, saved))
			status(fmt.Sprintf("Downloading %d/%d for '%s'", saved+1, req.ImagesNeeded, req.Query))

			fctx, cancelFetch := context.WithTimeout(ctx, config.ImageFetchTimeout)
			_, err = d.fetcher.FetchToFile(fctx, url, dest)
			cancelFetch()
			if err != nil {
				logger.Debug("Session: skipping candidate: %v", err)
				continue
			}
			saved++
		}

		if saved >= req.ImagesNeeded {
			break
		}
		status(fmt.Sprintf("Scrolling… (%d/%d) for '%s'", scroll+1, d.opts.MaxScrolls, req.Query))
		if err := chromedp.Run(taskCtx,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", config.ScrollDeltaPx), nil),
			chromedp.Sleep(config.ScrollSettleDelay),
		); err != nil {
			return saved, fmt.Errorf("scrolling results: %w", err)
		}
	}

	return saved, nil
}

// resultsSettle waits for the results document to reach readiness before the
// fixed settle delay. The delay alone is not enough on slow loads: the first
// thumbnail scan would see nothing and end the attempt as exhausted.
func resultsSettle() chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(config.SearchSettleDelay),
	}
}

// nodesForChain returns the nodes matched by the first selector in the chain
// with any matches at all, without waiting.
func (d *SessionDriver) nodesForChain(taskCtx context.Context, chain []string) []*cdp.Node {
	var matched []*cdp.Node
	firstMatch(chain, func(sel string) (int, error) {
		var nodes []*cdp.Node
		if err := chromedp.Run(taskCtx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
			return 0, err
		}
		matched = nodes
		return len(nodes), nil
	})
	return matched
}

// detailSources collects the src attributes of the detail-pane image
// candidates after a thumbnail click.
func (d *SessionDriver) detailSources(taskCtx context.Context, query string) []string {
	candidates := d.nodesForChain(taskCtx, detailImageSelectors(query))
	srcs := make([]string, 0, len(candidates))
	for _, node := range candidates {
		if src := node.AttributeValue("src"); src != "" {
			srcs = append(srcs, src)
		}
	}
	return srcs
}

// profileDir resolves the browser profile directory: the user's own profile
// when configured, otherwise a local persistent profile under the app's
// config directory. A persistent profile looks more like normal browsing
// than a throwaway context.
func (d *SessionDriver) profileDir() (string, error) {
	if d.opts.UseExistingProfile && d.opts.ProfileDir != "" {
		return d.opts.ProfileDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	dir := filepath.Join(homeDir, ".config", "dontgoogleme", "chrome-profile")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating profile dir: %w", err)
	}
	return dir, nil
}

// imageFileName names the (saved+1)-th artifact of an attempt. With stamps
// available the image is tied to a subtitle cue time; otherwise it falls
// back to query token plus counter.
func imageFileName(query string, stamps []string, startIndex, saved int) string {
	if idx := startIndex + saved; len(stamps) > 0 && idx < len(stamps) {
		return stamps[idx] + "_" + text.FileToken(query, config.StampedTokenMaxLen) + ".jpg"
	}
	return fmt.Sprintf("%s_%02d.jpg", text.FileToken(query, config.CounteredTokenMaxLen), saved+1)
}
