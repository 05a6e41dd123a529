package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// LaunchOptions configures one browser launch.
type LaunchOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// UserDataDir is the isolated profile directory for this session.
	// The controller creates it before launch and removes it after cleanup.
	UserDataDir string

	// ExtraArgs are appended after the isolation argument set.
	ExtraArgs []string
}

// Handle is a live browser session as seen by the controller and the
// workflow. The controller depends on nothing else from the automation
// client: launch, quit, and an optional process id.
type Handle interface {
	// Page returns the active page for the workflow to drive.
	Page() playwright.Page

	// Quit closes the session. Best-effort: its error is informational
	// only and never aborts cleanup.
	Quit() error

	// PID returns the id of the process the client spawned, when the
	// client exposes it.
	PID() (int, bool)
}

// Client launches browser sessions.
type Client interface {
	Launch(opts LaunchOptions) (Handle, error)
}

// Chromium launch arguments chosen for isolation and a reduced process
// count: fewer children to spawn means fewer children to chase during
// cleanup, and the per-session profile directory keeps a crashed session
// from contaminating the next one.
func isolationArgs(userDataDir string) []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--disable-features=SitePerProcess,IsolateOrigins",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-renderer-backgrounding",
		"--disable-component-update",
		"--disable-sync",
		"--disable-default-apps",
		"--disable-translate",
		"--disable-breakpad",
		"--disable-crash-reporter",
		"--disk-cache-size=1",
		"--media-cache-size=1",
	}
	if userDataDir != "" {
		args = append(args, "--user-data-dir="+userDataDir)
	}
	return args
}

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// PlaywrightClient drives a real Chromium through Playwright.
type PlaywrightClient struct {
	pw *playwright.Playwright
}

// NewPlaywrightClient installs and starts the Playwright driver.
// Driver output is discarded so it cannot interleave with the log file.
func NewPlaywrightClient() (*PlaywrightClient, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	return &PlaywrightClient{pw: pw}, nil
}

// Launch starts a Chromium instance with the isolation argument set and
// returns a handle over a fresh context and page.
func (c *PlaywrightClient) Launch(opts LaunchOptions) (Handle, error) {
	args := append(isolationArgs(opts.UserDataDir), opts.ExtraArgs...)

	browser, err := c.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightHandle{browser: browser, context: context, page: page}, nil
}

// Close stops the Playwright driver. Call once at application shutdown.
func (c *PlaywrightClient) Close() error {
	if c.pw == nil {
		return nil
	}
	if err := c.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type playwrightHandle struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (h *playwrightHandle) Page() playwright.Page { return h.page }

// Quit closes page, context, and browser in order, continuing past
// individual failures; the process-level cleanup behind it does not depend
// on any of these succeeding.
func (h *playwrightHandle) Quit() error {
	pageErr := h.page.Close()
	ctxErr := h.context.Close()
	browserErr := h.browser.Close()

	if browserErr != nil {
		return browserErr
	}
	if ctxErr != nil {
		return ctxErr
	}
	return pageErr
}

// PID is unavailable through Playwright; the controller falls back to
// command-line heuristics to identify the primary process.
func (h *playwrightHandle) PID() (int, bool) { return 0, false }
