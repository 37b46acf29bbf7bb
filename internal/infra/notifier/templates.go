package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const organization = "TLWD Foundation"

// Templates renders the outbound emails. FrontendURL is used for links back
// to the public site and AdminEmail receives contact form submissions.
type Templates struct {
	FrontendURL string
	AdminEmail  string
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
{{- if .Heading}}
<h2 style="color: #2c5f2d;">{{.Heading}}</h2>
{{- end}}
{{- if .Image}}
<img src="{{.Image}}" alt="" style="max-width: 100%; border-radius: 8px;">
{{- end}}
{{.Body}}
{{- if .CTAURL}}
<p style="text-align: center; margin: 30px 0;">
<a href="{{.CTAURL}}" style="background-color: #2c5f2d; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 5px;">{{.CTAText}}</a>
</p>
{{- end}}
<p>Best regards,<br>TLWD Foundation Team</p>
{{- if .UnsubscribeURL}}
<hr style="border: none; border-top: 1px solid #eee;">
<p style="font-size: 12px; color: #999;">You are receiving this email because you subscribed to the TLWD Foundation newsletter.
<a href="{{.UnsubscribeURL}}">Unsubscribe</a></p>
{{- end}}
</div>
</body>
</html>`))

var fragments = template.Must(template.New("fragments").Parse(`
{{define "contact"}}<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>{{end}}
{{define "application"}}<p>Dear {{.Name}},</p>
<p>We have received your application{{if .Opportunity}} for <strong>{{.Opportunity}}</strong>{{end}}. Our team will review it and get back to you soon.</p>{{end}}
{{define "receipt"}}<p>Dear {{.Name}},</p>
<p>We have received your donation of <strong>{{.Amount}}</strong>. Your support helps us continue our mission.</p>
<p><strong>Transaction Reference:</strong> {{.Reference}}</p>{{end}}
{{define "welcome"}}<p>Thank you for subscribing to the TLWD Foundation newsletter. You will be the first to hear about new opportunities, programs and stories from our community.</p>{{end}}
`))

type layoutData struct {
	Heading        string
	Image          string
	Body           template.HTML
	CTAText        string
	CTAURL         string
	UnsubscribeURL string
}

// Contact renders a contact form submission addressed to the administrator.
func (t Templates) Contact(name, email, subject, body string) (Message, error) {
	html, err := t.render("contact", struct{ Name, Email, Subject, Message string }{name, email, subject, body},
		layoutData{Heading: "New Contact Form Submission"})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{t.AdminEmail}, Subject: "Contact Form: " + subject, HTML: html}, nil
}

// ApplicationConfirmation acknowledges an application. opportunity may be empty.
func (t Templates) ApplicationConfirmation(to, name, opportunity string) (Message, error) {
	html, err := t.render("application", struct{ Name, Opportunity string }{name, opportunity},
		layoutData{Heading: "Thank you for your application!"})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Application Received - " + organization, HTML: html}, nil
}

// DonationReceipt thanks a donor for a successful payment.
func (t Templates) DonationReceipt(to, name string, amount float64, reference string) (Message, error) {
	if name == "" {
		name = "Friend"
	}
	data := struct{ Name, Amount, Reference string }{name, FormatNaira(amount), reference}
	html, err := t.render("receipt", data, layoutData{Heading: "Thank you for your generous donation!"})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Donation Receipt - " + organization, HTML: html}, nil
}

// Welcome greets a new newsletter subscriber.
func (t Templates) Welcome(to string) (Message, error) {
	html, err := t.render("welcome", nil, layoutData{
		Heading:        "Welcome to our newsletter!",
		UnsubscribeURL: t.UnsubscribeURL(to),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Welcome to " + organization + " Newsletter", HTML: html}, nil
}

// Broadcast is a newsletter issue. body is trusted administrator HTML.
type Broadcast struct {
	Title   string
	Body    string
	CTAText string
	CTAURL  string
	Image   string
}

// Newsletter renders one copy of b for a single subscriber.
func (t Templates) Newsletter(to string, b Broadcast) (Message, error) {
	ctaText := b.CTAText
	if b.CTAURL != "" && ctaText == "" {
		ctaText = "Learn More"
	}
	var out bytes.Buffer
	err := layout.Execute(&out, layoutData{
		Heading:        b.Title,
		Image:          b.Image,
		Body:           template.HTML(b.Body), // #nosec G203 -- authored by administrators
		CTAText:        ctaText,
		CTAURL:         b.CTAURL,
		UnsubscribeURL: t.UnsubscribeURL(to),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render newsletter: %w", err)
	}
	return Message{To: []string{to}, Subject: b.Title, HTML: out.String()}, nil
}

// UnsubscribeURL links to the public unsubscribe page for email.
func (t Templates) UnsubscribeURL(email string) string {
	return strings.TrimRight(t.FrontendURL, "/") + "/unsubscribe?email=" + url.QueryEscape(email)
}

func (t Templates) render(name string, data any, frame layoutData) (string, error) {
	var body bytes.Buffer
	if err := fragments.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	frame.Body = template.HTML(body.String()) // #nosec G203 -- output of html/template
	var out bytes.Buffer
	if err := layout.Execute(&out, frame); err != nil {
		return "", fmt.Errorf("render %s layout: %w", name, err)
	}
	return out.String(), nil
}

// FormatNaira renders amount with thousands separators, e.g. ₦5,000 or ₦1,250.5.
func FormatNaira(amount float64) string {
	p := message.NewPrinter(language.English)
	return "₦" + p.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}
