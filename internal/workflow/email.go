package workflow

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed templates/emails.yaml
var defaultTemplates []byte

// EmailType is the purpose of a drafted email.
type EmailType string

const (
	EmailVisitConfirmation EmailType = "visit_confirmation"
	EmailVisitFollowUp     EmailType = "visit_followup"
	EmailContractReady     EmailType = "contract_ready"
	EmailDocumentRequest   EmailType = "document_request"
)

// Tone is the register of a drafted email.
type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneFriendly Tone = "friendly"
)

// Language is the language of a drafted email.
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
)

var (
	EmailTypes = []string{string(EmailVisitConfirmation), string(EmailVisitFollowUp), string(EmailContractReady), string(EmailDocumentRequest)}
	Tones      = []string{string(ToneFormal), string(ToneFriendly)}
	Languages  = []string{string(LanguageFrench), string(LanguageEnglish)}
)

type templateKey struct {
	emailType EmailType
	tone      Tone
	language  Language
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

type templateEntry struct {
	Type     string `yaml:"type"`
	Tone     string `yaml:"tone"`
	Language string `yaml:"language"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
}

// TemplateCatalog maps (type, tone, language) to an email template.
type TemplateCatalog struct {
	templates map[templateKey]emailTemplate
	fallback  Language
}

// LoadTemplates parses the embedded catalog. Lookups missing in the
// requested language fall back to the given language.
func LoadTemplates(fallback Language) (*TemplateCatalog, error) {
	return ParseTemplates(defaultTemplates, fallback)
}

// ParseTemplates builds a catalog from YAML.
func ParseTemplates(raw []byte, fallback Language) (*TemplateCatalog, error) {
	var entries []templateEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode email templates: %w", err)
	}

	catalog := &TemplateCatalog{templates: make(map[templateKey]emailTemplate, len(entries)), fallback: fallback}
	for _, e := range entries {
		key := templateKey{emailType: EmailType(e.Type), tone: Tone(e.Tone), language: Language(e.Language)}
		if _, dup := catalog.templates[key]; dup {
			return nil, fmt.Errorf("duplicate email template %s/%s/%s", e.Type, e.Tone, e.Language)
		}
		name := e.Type + "." + e.Tone + "." + e.Language
		subject, err := template.New(name + ".subject").Option("missingkey=error").Parse(e.Subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject of %s: %w", name, err)
		}
		body, err := template.New(name + ".body").Option("missingkey=error").Parse(e.Body)
		if err != nil {
			return nil, fmt.Errorf("parse body of %s: %w", name, err)
		}
		catalog.templates[key] = emailTemplate{subject: subject, body: body}
	}
	return catalog, nil
}

// lookup finds a template, falling back to the catalog's default language.
func (c *TemplateCatalog) lookup(emailType EmailType, tone Tone, lang Language) (emailTemplate, Language, bool) {
	if tpl, ok := c.templates[templateKey{emailType, tone, lang}]; ok {
		return tpl, lang, true
	}
	if tpl, ok := c.templates[templateKey{emailType, tone, c.fallback}]; ok {
		return tpl, c.fallback, true
	}
	return emailTemplate{}, "", false
}

// DraftEmailParams are the inputs of DraftEmail.
type DraftEmailParams struct {
	AgencyID      uuid.UUID
	Type          EmailType
	ContactQuery  string
	PropertyQuery string
	VisitID       *uuid.UUID
	Tone          Tone
	Language      Language
}

// EmailDraft is a generated email. Nothing is sent or stored.
type EmailDraft struct {
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	To         string     `json:"to,omitempty"`
	Type       EmailType  `json:"type"`
	Tone       Tone       `json:"tone"`
	Language   Language   `json:"language"`
	ContactID  uuid.UUID  `json:"contactId"`
	PropertyID *uuid.UUID `json:"propertyId,omitempty"`
}

type propertyView struct {
	Reference string
	Title     string
	Address   string
	Price     string
}

type emailData struct {
	FirstName string
	LastName  string
	FullName  string
	VisitDate string
	Property  *propertyView
}

// DraftEmail resolves the recipient and, when given, the property and the
// visit, then renders the matching template.
func (s *Service) DraftEmail(ctx context.Context, params DraftEmailParams) (EmailDraft, error) {
	if err := requireAgency(params.AgencyID); err != nil {
		return EmailDraft{}, err
	}
	if params.Tone == "" {
		params.Tone = ToneFormal
	}
	if params.Language == "" {
		params.Language = s.templates.fallback
	}
	tpl, lang, ok := s.templates.lookup(params.Type, params.Tone, params.Language)
	if !ok {
		return EmailDraft{}, apperr.Validation(fmt.Sprintf("no %s template for tone %s", params.Type, params.Tone))
	}

	contactOutcome, err := s.resolver.ResolveContact(ctx, params.AgencyID, params.ContactQuery)
	if err != nil {
		return EmailDraft{}, err
	}
	if !contactOutcome.Resolved() {
		return EmailDraft{}, contactOutcome.Err("contact", params.ContactQuery)
	}
	contact := contactOutcome.Record

	var visit *domain.Visit
	if params.VisitID != nil {
		v, err := s.gw.GetVisit(ctx, params.AgencyID, *params.VisitID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindTimeout) {
				return EmailDraft{}, err
			}
			return EmailDraft{}, apperr.Resolution("could not load visit", err)
		}
		visit = &v
	}

	var property *domain.Property
	switch {
	case strings.TrimSpace(params.PropertyQuery) != "":
		outcome, err := s.resolver.ResolveProperty(ctx, params.AgencyID, params.PropertyQuery, gateway.PropertyFilter{})
		if err != nil {
			return EmailDraft{}, err
		}
		if !outcome.Resolved() {
			return EmailDraft{}, outcome.Err("property", params.PropertyQuery)
		}
		property = &outcome.Record
	case visit != nil:
		p, err := s.gw.GetProperty(ctx, params.AgencyID, visit.PropertyID)
		if err != nil {
			if apperr.Is(err, apperr.KindTimeout) {
				return EmailDraft{}, err
			}
			return EmailDraft{}, apperr.Resolution("could not load the visited property", err)
		}
		property = &p
	}

	data := emailData{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		FullName:  contact.FullName(),
	}
	if visit != nil {
		data.VisitDate = formatDateTime(visit.ScheduledAt.In(s.loc), lang)
	}
	if property != nil {
		data.Property = &propertyView{
			Reference: property.Reference,
			Title:     firstNonEmpty(property.Title, property.Reference),
			Address:   property.Address.String(),
			Price:     formatPrice(property.Price, lang),
		}
	}

	subject, err := render(tpl.subject, data)
	if err != nil {
		return EmailDraft{}, apperr.Wrap(apperr.KindInternal, "could not render email subject", err)
	}
	body, err := render(tpl.body, data)
	if err != nil {
		return EmailDraft{}, apperr.Wrap(apperr.KindInternal, "could not render email body", err)
	}

	draft := EmailDraft{
		Subject:   strings.TrimSpace(subject),
		Body:      strings.TrimSpace(body),
		Type:      params.Type,
		Tone:      params.Tone,
		Language:  lang,
		ContactID: contact.ID,
	}
	if contact.Email != nil {
		draft.To = *contact.Email
	}
	if property != nil {
		draft.PropertyID = &property.ID
	}
	return draft, nil
}

func render(tpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func languageTag(lang Language) language.Tag {
	if lang == LanguageFrench {
		return language.French
	}
	return language.English
}

// formatPrice renders a whole-euro amount with the language's digit grouping.
func formatPrice(price float64, lang Language) string {
	p := message.NewPrinter(languageTag(lang))
	amount := int64(math.Round(price))
	if lang == LanguageFrench {
		return p.Sprintf("%d €", amount)
	}
	return p.Sprintf("€%d", amount)
}

var (
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths   = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

func formatDateTime(t time.Time, lang Language) string {
	if lang == LanguageFrench {
		return fmt.Sprintf("%s %d %s %d à %dh%02d",
			frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return t.Format("Monday, January 2, 2006 at 3:04 PM")
}
