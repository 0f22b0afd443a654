package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

const (
	defaultActionTimeout = 30 * time.Second
	loginFormTimeout     = 15 * time.Second
	sessionCookieTimeout = 10 * time.Second
	cookiePollInterval   = 250 * time.Millisecond

	loginFormSelector  = "form#loginform"
	usernameSelector   = "#username"
	passwordSelector   = "#password"
	submitSelector     = "#loginBT"
	sessionCookieName  = "sid"
	debugTimestampForm = "20060102_150405"
)

// Headless browsers advertise themselves through navigator.webdriver; the
// gateway firmware refuses scripted logins when it sees that.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Config controls how the browser session is launched and where its debug
// artifacts land.
type Config struct {
	BaseURL       string
	Headless      bool
	DebugDir      string
	ActionTimeout time.Duration
}

// Browser owns a chromedp-driven Chrome instance logged into the gateway
// admin interface. It is acquired once per run and must be released through
// Close on every exit path.
type Browser struct {
	cfg         Config
	log         *slog.Logger
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New launches the browser process and installs the stealth patch.
func New(ctx context.Context, log *slog.Logger, cfg Config) (*Browser, error) {
	if ctx == nil {
		return nil, errors.New("browser: context is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("browser: base URL is required")
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = defaultActionTimeout
	}

	log.Info("launching browser", "headless", cfg.Headless)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("headless", cfg.Headless),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Prime the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("browser: install stealth script: %w", err)
	}

	return &Browser{
		cfg:         cfg,
		log:         log,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

// Close tears down the browser process. Safe to defer immediately after New.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
	b.log.Info("browser closed")
}

// Login authenticates against the gateway admin interface. Success is
// signalled by the session cookie appearing.
func (b *Browser) Login(ctx context.Context, username, password string) error {
	b.log.Info("navigating to login page", "url", b.cfg.BaseURL)
	if err := b.Navigate(ctx, b.cfg.BaseURL+"/"); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := b.WaitVisible(ctx, loginFormSelector, loginFormTimeout); err != nil {
		return fmt.Errorf("login form not found: %w", err)
	}

	b.log.Info("entering credentials")
	if err := b.typeHuman(ctx, usernameSelector, username); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := b.typeHuman(ctx, passwordSelector, password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.Click(submitSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	if err := b.waitForCookie(ctx, sessionCookieName, sessionCookieTimeout); err != nil {
		return err
	}
	b.log.Info("login successful")
	return nil
}

// Navigate opens the requested URL.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, b.cfg.ActionTimeout, chromedp.Navigate(url))
}

// WaitVisible blocks until the selector is visible or the timeout elapses.
func (b *Browser) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return b.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// EvaluateJSON executes an expression that is expected to produce a JSON
// string and returns its bytes.
func (b *Browser) EvaluateJSON(ctx context.Context, expression string) ([]byte, error) {
	var out string
	if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.Evaluate(expression, &out)); err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// PageSource returns the full HTML of the current document.
func (b *Browser) PageSource(ctx context.Context) (string, error) {
	var source string
	if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.OuterHTML("html", &source, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return source, nil
}

// CaptureDebug saves a screenshot and the page source under the debug
// directory. Capture problems are logged, never fatal; this runs on failure
// paths where the original error matters more.
func (b *Browser) CaptureDebug(ctx context.Context, scenario string) {
	if b.cfg.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(b.cfg.DebugDir, 0o755); err != nil {
		b.log.Error("create debug dir", "err", err)
		return
	}
	ts := time.Now().Format(debugTimestampForm)
	base := filepath.Join(b.cfg.DebugDir, fmt.Sprintf("%s_%s", scenario, ts))

	var shot []byte
	if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.CaptureScreenshot(&shot)); err != nil {
		b.log.Error("capture screenshot", "err", err)
	} else if err := os.WriteFile(base+".png", shot, 0o644); err != nil {
		b.log.Error("save screenshot", "err", err)
	}

	source, err := b.PageSource(ctx)
	if err != nil {
		b.log.Error("capture page source", "err", err)
		return
	}
	if err := os.WriteFile(base+".html", []byte(source), 0o644); err != nil {
		b.log.Error("save page source", "err", err)
	}
	b.log.Info("debug artifacts saved", "prefix", base)
}

// typeHuman clears the field and sends one keystroke at a time with jittered
// delays, the way a person would.
func (b *Browser) typeHuman(ctx context.Context, selector, text string) error {
	prep := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
	}
	if err := b.run(ctx, b.cfg.ActionTimeout, prep); err != nil {
		return err
	}
	for _, r := range text {
		if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.SendKeys(selector, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		time.Sleep(time.Duration(50+rand.IntN(150)) * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)
	return nil
}

// waitForCookie polls the cookie jar until the named cookie appears.
func (b *Browser) waitForCookie(ctx context.Context, name string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		cookies, err := b.cookies(ctx)
		if err != nil {
			return fmt.Errorf("read cookies: %w", err)
		}
		for _, c := range cookies {
			if c.Name == name {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("session cookie %q not set within %s", name, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cookiePollInterval):
		}
	}
}

func (b *Browser) cookies(ctx context.Context) ([]*storageCookie, error) {
	var cookies []*storageCookie
	err := b.run(ctx, b.cfg.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		response, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range response {
			cookies = append(cookies, &storageCookie{Name: c.Name, Value: c.Value})
		}
		return nil
	}))
	return cookies, err
}

type storageCookie struct {
	Name  string
	Value string
}

// run executes chromedp actions on the browser context with a bounded
// timeout. Caller cancellation wins over the per-action deadline.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = b.cfg.ActionTimeout
	}
	tctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}
