package receipt

import (
	"os"
	"strings"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/ticket"
)

// Layout is the receipt's static trim, resolved from configuration once at
// startup. All three-state header fields are collapsed here: a field holds
// either the text to print or the empty string meaning "omit this line".
type Layout struct {
	LogoPath string // empty unless a logo is configured and readable

	CompanyName  string
	AddressLine1 string
	AddressLine2 string
	Phone        string
	URL          string
	Tagline      string

	FooterDisabled bool
	FooterText     string

	Width int
}

// LayoutFromConfig resolves the header and footer fields against their
// built-in defaults and validates the logo file. The filesystem is touched
// once, here, so that Render itself stays pure.
func LayoutFromConfig(cfg *config.Config) Layout {
	l := Layout{
		CompanyName:  cfg.Header.CompanyName.Or(config.DefaultCompanyName),
		AddressLine1: cfg.Header.AddressLine1.Or(""),
		AddressLine2: cfg.Header.AddressLine2.Or(""),
		Phone:        cfg.Header.Phone.Or(""),
		URL:          cfg.Header.URL.Or(""),
		Tagline:      cfg.Header.Tagline.Or(config.DefaultTagline),

		FooterDisabled: cfg.Footer.Disabled,
		FooterText:     cfg.Footer.Text.Or(config.DefaultFooterText),

		Width: cfg.Printer.Width,
	}

	if path := cfg.Header.LogoPath.Or(""); path != "" {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			l.LogoPath = path
		}
	}

	return l
}

// createdAtFormat matches common receipt timestamps: "Oct 26, 2025 at 3:04 PM".
const createdAtFormat = "Jan 2, 2006 at 3:04 PM"

// Render composes the directive sequence for one accepted event.
//
// Deterministic and free of I/O: every decision is a function of ev and
// layout. The event reaching this point has already been authenticated and
// classified as actionable; Render never re-validates trust.
//
// Composition order: logo, header block, rule, event body, rule, footer,
// then an unconditional feed-and-cut so every receipt is physically
// separable from the next.
func Render(ev *ticket.Event, layout Layout) *Job {
	width := layout.Width
	if width <= 0 {
		width = config.DefaultWidth
	}

	job := &Job{
		TicketID: ev.Identifier,
		Width:    width,
	}
	add := func(d Directive) { job.Directives = append(job.Directives, d) }

	// Logo, only when pre-validated by LayoutFromConfig.
	if layout.LogoPath != "" {
		add(image(layout.LogoPath))
		add(feed(1))
	}

	// Header block: each line included iff its resolved value is non-empty.
	if layout.CompanyName != "" {
		add(styled(center(layout.CompanyName, width), Style{Center: true, Bold: true, Wide: true}))
	}
	for _, line := range []string{layout.AddressLine1, layout.AddressLine2} {
		if line != "" {
			add(styled(center(line, width), Style{Center: true}))
		}
	}
	if layout.Phone != "" {
		add(styled(center("Tel: "+layout.Phone, width), Style{Center: true}))
	}
	if layout.URL != "" {
		add(styled(center(layout.URL, width), Style{Center: true}))
	}
	if layout.Tagline != "" {
		add(styled(center(layout.Tagline, width), Style{Center: true}))
	}

	add(rule())

	// Event body. Title is always present; everything else is optional and
	// absent fields are omitted outright, never rendered as placeholders.
	for _, line := range Wrap(strings.ToUpper(ev.Title), width) {
		add(styled(line, Style{Bold: true}))
	}
	if ev.Identifier != "" {
		add(text(ev.Identifier))
	}
	if ev.Description != nil && *ev.Description != "" {
		add(feed(1))
		desc := strings.Join(strings.Fields(*ev.Description), " ")
		for _, line := range Wrap(desc, width) {
			add(text(line))
		}
	}

	add(feed(1))
	for _, f := range metadataFields(ev) {
		for _, line := range twoColumn(f.label, f.value, width) {
			add(text(line))
		}
	}

	add(rule())

	// Footer block, in full iff not disabled.
	if !layout.FooterDisabled && layout.FooterText != "" {
		add(styled(center(layout.FooterText, width), Style{Center: true}))
	}

	add(feed(3))
	add(cut())
	return job
}

type metadataField struct {
	label string
	value string
}

// metadataFields lists the optional event fields in their fixed print
// order. Each pair is laid out as a two-column line, label left and value
// right.
func metadataFields(ev *ticket.Event) []metadataField {
	var fields []metadataField
	appendField := func(label string, value *string) {
		if value != nil && *value != "" {
			fields = append(fields, metadataField{label, *value})
		}
	}

	appendField("Status", ev.Status)
	appendField("Priority", ev.Priority)
	appendField("Assignee", ev.Assignee)
	appendField("Team", ev.Team)
	if len(ev.Labels) > 0 {
		fields = append(fields, metadataField{"Labels", strings.Join(ev.Labels, ", ")})
	}
	if ev.DueDate != nil {
		fields = append(fields, metadataField{"Due", ev.DueDate.Format("Jan 2, 2006")})
	}
	appendField("Created by", ev.CreatedBy)
	if ev.CreatedAt != nil {
		fields = append(fields, metadataField{"Created", ev.CreatedAt.Format(createdAtFormat)})
	}
	return fields
}
