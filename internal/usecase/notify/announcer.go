package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"tlwd-backend/internal/config"
	"tlwd-backend/internal/usecase/subscriber"
)

// ErrInvalidEvent is returned for an event without a content type or record.
var ErrInvalidEvent = errors.New("invalid event")

// Broadcaster sends one newsletter to every active subscriber.
type Broadcaster interface {
	Broadcast(ctx context.Context, in subscriber.BroadcastInput) (*subscriber.BroadcastResult, error)
}

// Announcer broadcasts content whose type carries an announce block.
type Announcer struct {
	Broadcaster Broadcaster
	FrontendURL string
	Logger      *slog.Logger
}

// Name implements Listener.
func (a *Announcer) Name() string { return "newsletter" }

// Handle implements Listener. Events whose kind does not match the content
// type's trigger are ignored, as is the absence of any active subscriber.
func (a *Announcer) Handle(ctx context.Context, ev Event) error {
	if ev.ContentType == nil || ev.Record == nil {
		return ErrInvalidEvent
	}
	ann := ev.ContentType.Announce
	if ann == nil || ann.On != ev.Kind {
		return nil
	}

	in, err := a.Compose(ev.ContentType, ev)
	if err != nil {
		return fmt.Errorf("compose announcement: %w", err)
	}

	res, err := a.Broadcaster.Broadcast(ctx, in)
	if errors.Is(err, subscriber.ErrNoActiveSubscribers) {
		a.logger().Info("Announcement skipped: no active subscribers",
			slog.String("content_type", ev.ContentType.Name),
			slog.String("record_id", ev.Record.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("broadcast announcement: %w", err)
	}

	a.logger().Info("Announcement sent",
		slog.String("content_type", ev.ContentType.Name),
		slog.String("record_id", ev.Record.ID),
		slog.Int("successful", res.Successful),
		slog.Int("failed", res.Failed),
		slog.Int("total", res.Total))
	return nil
}

// Compose renders the broadcast for ev without sending it.
func (a *Announcer) Compose(ct *config.ContentType, ev Event) (subscriber.BroadcastInput, error) {
	ann := ct.Announce
	data := templateData(ct, ev)

	title, err := renderText("title", ann.Title, data)
	if err != nil {
		return subscriber.BroadcastInput{}, err
	}

	var body strings.Builder
	if ann.Intro != "" {
		intro, err := renderHTML(ann.Intro, data)
		if err != nil {
			return subscriber.BroadcastInput{}, err
		}
		body.WriteString(intro)
	}
	if ann.ExcerptField != "" {
		if excerpt := Excerpt(ev.Record.String(ann.ExcerptField), ann.ExcerptLength); excerpt != "" {
			body.WriteString("<p>")
			body.WriteString(htmltemplate.HTMLEscapeString(excerpt))
			body.WriteString("</p>")
		}
	}

	in := subscriber.BroadcastInput{
		Title:   title,
		Body:    body.String(),
		CTAText: ann.CTAText,
	}
	if ann.CTAPath != "" {
		path, err := renderText("cta_path", ann.CTAPath, data)
		if err != nil {
			return subscriber.BroadcastInput{}, err
		}
		in.CTAURL = strings.TrimRight(a.FrontendURL, "/") + path
	}
	// types with upload metadata hold files, not pictures
	if field := ct.AssetField(); field != "" && len(ct.Asset.Meta) == 0 {
		in.Image = ev.Record.String(field)
	}
	return in, nil
}

// Excerpt strips markup from s, collapses whitespace and cuts it to at most
// n runes, appending "..." when something was cut.
func Excerpt(s string, n int) string {
	text := s
	if strings.ContainsAny(s, "<>&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// templateData exposes every declared field so a missing value renders empty.
func templateData(ct *config.ContentType, ev Event) map[string]any {
	data := make(map[string]any, len(ct.Fields)+2)
	for name := range ct.Fields {
		data[name] = ""
	}
	for k, v := range ev.Record.Fields {
		if v != nil {
			data[k] = v
		}
	}
	data["id"] = ev.Record.ID
	data["status"] = ev.Record.Status
	return data
}

func renderText(name, tmpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(tmpl string, data map[string]any) (string, error) {
	t, err := htmltemplate.New("intro").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (a *Announcer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
