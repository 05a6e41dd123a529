// Package booking drives the scheduling site's multi-step appointment form:
// applicant details, service selection, calendar polling for a preferred
// date, and final submission with a confirmation screenshot.
package booking

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Logger is the logging contract the workflow needs.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Applicant is the person the appointment is booked for.
type Applicant struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Config parameterizes one booking attempt.
type Config struct {
	// URL is the scheduling site's entry page.
	URL string

	// Applicant fills the first form step.
	Applicant Applicant

	// ServiceName is the service option label on the second step.
	ServiceName string

	// PreferredDates are acceptable appointment dates in the site's
	// data-date format (e.g. "2025-8-16").
	PreferredDates []string

	// StepTimeout bounds each element wait. Zero means 10s.
	StepTimeout time.Duration
}

// Result is the outcome of an attempt that reached the calendar.
type Result struct {
	// BookedDate is the chosen date, empty when no preferred date was
	// available.
	BookedDate string

	// AvailableDates lists every bookable date the calendar showed.
	AvailableDates []string

	// Screenshot is the confirmation page capture after submission,
	// nil when nothing was booked.
	Screenshot []byte
}

// Booked reports whether a slot was actually submitted.
func (r *Result) Booked() bool { return r.BookedDate != "" }

// Booker runs booking attempts against a live page.
type Booker struct {
	cfg       Config
	log       Logger
	preferred map[string]struct{}
}

// New builds a Booker. log must not be nil.
func New(cfg Config, log Logger) *Booker {
	if cfg.StepTimeout == 0 {
		cfg.StepTimeout = 10 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "Processing a visa"
	}
	preferred := make(map[string]struct{}, len(cfg.PreferredDates))
	for _, d := range cfg.PreferredDates {
		preferred[d] = struct{}{}
	}
	return &Booker{cfg: cfg, log: log, preferred: preferred}
}

// Run walks the full form. It returns an error when any step of the site
// interaction fails; a calendar with no preferred date available is not an
// error and yields a Result with an empty BookedDate.
func (b *Booker) Run(page playwright.Page) (*Result, error) {
	if _, err := page.Goto(b.cfg.URL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", b.cfg.URL, err)
	}
	title, _ := page.Title()
	b.log.Infof("opened %s (%s)", b.cfg.URL, title)

	if err := b.fillApplicant(page); err != nil {
		return nil, err
	}
	if err := b.selectService(page); err != nil {
		return nil, err
	}
	return b.chooseDateAndSubmit(page)
}

func (b *Booker) timeout() *float64 {
	return playwright.Float(float64(b.cfg.StepTimeout.Milliseconds()))
}

// fillApplicant completes step one. The site's input ids contain square
// brackets, so they are addressed through attribute selectors.
func (b *Booker) fillApplicant(page playwright.Page) error {
	fields := []struct {
		selector string
		value    string
	}{
		{`[id="Persons[0][first_name]"]`, b.cfg.Applicant.FirstName},
		{`[id="Persons[0][last_name]"]`, b.cfg.Applicant.LastName},
		{`#e_mail`, b.cfg.Applicant.Email},
		{`#e_mail_repeat`, b.cfg.Applicant.Email},
		{`#phone`, b.cfg.Applicant.Phone},
	}
	for _, f := range fields {
		if err := page.Locator(f.selector).Fill(f.value, playwright.LocatorFillOptions{Timeout: b.timeout()}); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.selector, err)
		}
	}

	if err := page.Locator("#step1-next-btn button").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to submit applicant form: %w", err)
	}
	b.log.Infof("applicant form submitted, now at %s", page.URL())
	return nil
}

// selectService completes step two: open the service dropdown, pick the
// configured service, accept its conditions, and advance to the calendar.
func (b *Booker) selectService(page playwright.Page) error {
	form := page.Locator("#mfa-form2")
	if err := form.WaitFor(playwright.LocatorWaitForOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("service form did not appear: %w", err)
	}

	if err := form.Locator(`p:has-text("Select service")`).Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to open service list: %w", err)
	}

	option := form.Locator(fmt.Sprintf(`.services--wrapper label:has-text(%q)`, b.cfg.ServiceName))
	if err := option.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll to service option: %w", err)
	}
	if err := option.Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to select service %q: %w", b.cfg.ServiceName, err)
	}

	description := form.Locator(".services--wrapper section.description.active")
	if err := description.Locator(".form-checkbox").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to accept service conditions: %w", err)
	}
	if err := description.Locator(".description-button").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}

	if err := form.Locator(".btn-next-step").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return fmt.Errorf("failed to advance to calendar: %w", err)
	}
	b.log.Infof("service %q selected", b.cfg.ServiceName)
	return nil
}

// chooseDateAndSubmit scans the calendar for a preferred date, paging one
// month forward when the current month has none, then submits the booking
// and captures the confirmation.
func (b *Booker) chooseDateAndSubmit(page playwright.Page) (*Result, error) {
	calendar := page.Locator("#calendar-daygrid")
	if err := calendar.WaitFor(playwright.LocatorWaitForOptions{Timeout: b.timeout()}); err != nil {
		return nil, fmt.Errorf("calendar did not appear: %w", err)
	}

	result := &Result{}
	chosen, err := b.scanCalendar(calendar, result)
	if err != nil {
		return nil, err
	}
	if chosen == "" {
		if err := page.Locator(".calendar-next").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
			return nil, fmt.Errorf("failed to page calendar forward: %w", err)
		}
		chosen, err = b.scanCalendar(calendar, result)
		if err != nil {
			return nil, err
		}
	}

	if chosen == "" {
		b.log.Infof("no preferred date available; calendar offered %v", result.AvailableDates)
		return result, nil
	}

	if err := calendar.Locator(fmt.Sprintf(`td[%s=%q]`, dateAttr, chosen)).Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return nil, fmt.Errorf("failed to pick date %s: %w", chosen, err)
	}
	if err := page.Locator("#step3-next-btn .btn-next-step").Click(playwright.LocatorClickOptions{Timeout: b.timeout()}); err != nil {
		return nil, fmt.Errorf("failed to submit booking: %w", err)
	}
	result.BookedDate = chosen
	b.log.Infof("booked %s", chosen)

	shot, err := page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	if err != nil {
		// The booking went through; a missing screenshot only degrades
		// the notification.
		b.log.Warnf("failed to capture confirmation screenshot: %v", err)
	} else {
		result.Screenshot = shot
	}
	return result, nil
}

func (b *Booker) scanCalendar(calendar playwright.Locator, result *Result) (string, error) {
	markup, err := calendar.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("failed to read calendar: %w", err)
	}
	available, err := AvailableDates(markup)
	if err != nil {
		return "", fmt.Errorf("failed to parse calendar: %w", err)
	}
	result.AvailableDates = append(result.AvailableDates, available...)
	b.log.Debugf("calendar offers %v", available)
	return ChooseDate(available, b.preferred), nil
}
