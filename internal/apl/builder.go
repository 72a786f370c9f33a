// Package apl builds visual layout directives for screen devices.
package apl

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

// RenderDocumentType is the directive type for APL documents.
const RenderDocumentType = "Alexa.Presentation.APL.RenderDocument"

//go:embed documents/*.json
var documentFS embed.FS

const (
	roundTextDocument = "documents/round_text.json"
	longTextDocument  = "documents/long_text.json"
	listDocument      = "documents/list_view.json"
)

// maxNameLength bounds list item titles; see TruncateName.
const maxNameLength = 30

// Directive renders a document with its datasources.
type Directive struct {
	Type        string          `json:"type"`
	Version     string          `json:"version"`
	Document    json.RawMessage `json:"document"`
	Datasources any             `json:"datasources"`
}

// Builder assembles directives, stamping them with the app's name and logo.
type Builder struct {
	appName string
	logoURL string
}

func NewBuilder(appName, logoURL string) *Builder {
	return &Builder{appName: appName, logoURL: logoURL}
}

// Round builds the round-screen directive: one large status word plus the
// speech it narrates.
func (b *Builder) Round(text, speech string) (Directive, error) {
	doc, err := documentFS.ReadFile(roundTextDocument)
	if err != nil {
		return Directive{}, fmt.Errorf("read round document: %w", err)
	}
	return newDirective(doc, RoundTextDatasource{
		RoundTextTemplateData: RoundTextTemplateData{
			Type:         "object",
			ObjectID:     "roundTextSample",
			Properties:   RoundTextProperties{SpeechSSML: speech, Text: text},
			Transformers: speechTransformers(),
		},
	}), nil
}

// LongText describes the scrolling text screen.
type LongText struct {
	Title       string
	Body        string
	Speech      string
	HeaderColor string
	HeaderTheme string
	FontSize    string
}

// LongText builds the scrolling text directive. The header color and theme
// are merged into the document's resources.
func (b *Builder) LongText(lt LongText) (Directive, error) {
	raw, err := documentFS.ReadFile(longTextDocument)
	if err != nil {
		return Directive{}, fmt.Errorf("read long text document: %w", err)
	}
	doc, err := withHeaderStyle(raw, lt.HeaderColor, lt.HeaderTheme)
	if err != nil {
		return Directive{}, err
	}

	return newDirective(doc, LongTextDatasource{
		LongTextTemplateData: LongTextTemplateData{
			Type:     "object",
			ObjectID: "longTextSample",
			Properties: LongTextProperties{
				BackgroundImage: BackgroundImage{
					Sources: []ImageSource{
						{URL: b.logoURL, Size: "small"},
						{URL: b.logoURL, Size: "large"},
					},
				},
				Title:       lt.Title,
				TextContent: TextContent{PrimaryText: plain(lt.Body)},
				LogoURL:     b.logoURL,
				SpeechSSML:  lt.Speech,
				FontSize:    lt.FontSize,
			},
			Transformers: speechTransformers(),
		},
	}), nil
}

// ListEntry is one row of a list screen.
type ListEntry struct {
	Name      string
	Secondary string
	Tertiary  string
}

// List builds a numbered list directive.
func (b *Builder) List(entries []ListEntry) (Directive, error) {
	doc, err := documentFS.ReadFile(listDocument)
	if err != nil {
		return Directive{}, fmt.Errorf("read list document: %w", err)
	}

	items := make([]ListItem, len(entries))
	for i, e := range entries {
		id := ItemID(e.Name)
		items[i] = ListItem{
			ListItemIdentifier: id,
			OrdinalNumber:      i + 1,
			TextContent: TextContent{
				PrimaryText:   plain(TruncateName(e.Name)),
				SecondaryText: ptr(plain(e.Secondary)),
				TertiaryText:  ptr(plain(e.Tertiary)),
			},
			Token: id,
		}
	}

	return newDirective(doc, ListDatasource{
		Metadata: ListMetadata{
			Type:     "object",
			ObjectID: "lt1Metadata",
			Title:    b.appName,
			LogoURL:  b.logoURL,
		},
		ListData: ListData{
			Type:               "list",
			ListID:             "lt1Sample",
			TotalNumberOfItems: len(items),
			ListPage:           ListPage{ListItems: items},
		},
	}), nil
}

// TruncateName shortens names of 30 or more characters to 30, cutting back
// to the last space when that space falls past the tenth character.
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) < maxNameLength {
		return name
	}
	cut := string(runes[:maxNameLength])
	if i := strings.LastIndex(cut, " "); i > 10 {
		return cut[:i]
	}
	return cut
}

// ItemID keeps only the lowercase ASCII letters of the lowercased name.
func ItemID(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(name))
}

func newDirective(doc []byte, datasources any) Directive {
	return Directive{
		Type:        RenderDocumentType,
		Version:     "1.0",
		Document:    json.RawMessage(doc),
		Datasources: datasources,
	}
}

// withHeaderStyle appends a resource block overriding the header color and
// theme. Later resource blocks take precedence in APL.
func withHeaderStyle(raw []byte, color, theme string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode long text document: %w", err)
	}
	resources, _ := doc["resources"].([]any)
	doc["resources"] = append(resources, map[string]any{
		"description": "Header styling",
		"colors":      map[string]string{"headerBackgroundColor": color},
		"strings":     map[string]string{"headerTheme": theme},
	})
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode long text document: %w", err)
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
