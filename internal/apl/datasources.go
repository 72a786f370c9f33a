package apl

// The datasource shapes below are read by the device renderer. Field names
// and nesting must not change.

// Transformer converts a datasource property before rendering.
type Transformer struct {
	InputPath   string `json:"inputPath"`
	Transformer string `json:"transformer"`
	OutputName  string `json:"outputName"`
}

// speechTransformers turns speechSSML into the infoSpeech property the
// documents bind to.
func speechTransformers() []Transformer {
	return []Transformer{{InputPath: "speechSSML", Transformer: "ssmlToSpeech", OutputName: "infoSpeech"}}
}

// PlainText is a text wrapper with its type marker.
type PlainText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func plain(text string) PlainText {
	return PlainText{Type: "PlainText", Text: text}
}

// RoundTextDatasource drives the round-screen status document.
type RoundTextDatasource struct {
	RoundTextTemplateData RoundTextTemplateData `json:"roundTextTemplateData"`
}

type RoundTextTemplateData struct {
	Type         string              `json:"type"`
	ObjectID     string              `json:"objectId"`
	Properties   RoundTextProperties `json:"properties"`
	Transformers []Transformer       `json:"transformers"`
}

type RoundTextProperties struct {
	SpeechSSML string `json:"speechSSML"`
	Text       string `json:"text"`
}

// LongTextDatasource drives the scrolling policy document.
type LongTextDatasource struct {
	LongTextTemplateData LongTextTemplateData `json:"longTextTemplateData"`
}

type LongTextTemplateData struct {
	Type         string             `json:"type"`
	ObjectID     string             `json:"objectId"`
	Properties   LongTextProperties `json:"properties"`
	Transformers []Transformer      `json:"transformers"`
}

type LongTextProperties struct {
	BackgroundImage BackgroundImage `json:"backgroundImage"`
	Title           string          `json:"title"`
	TextContent     TextContent     `json:"textContent"`
	LogoURL         string          `json:"logoUrl"`
	SpeechSSML      string          `json:"speechSSML"`
	FontSize        string          `json:"fontSize"`
}

type BackgroundImage struct {
	ContentDescription *string       `json:"contentDescription"`
	SmallSourceURL     *string       `json:"smallSourceUrl"`
	LargeSourceURL     *string       `json:"largeSourceUrl"`
	Sources            []ImageSource `json:"sources"`
}

type ImageSource struct {
	URL          string `json:"url"`
	Size         string `json:"size"`
	WidthPixels  int    `json:"widthPixels"`
	HeightPixels int    `json:"heightPixels"`
}

// TextContent carries up to three lines of text. Lines left nil are omitted.
type TextContent struct {
	PrimaryText   PlainText  `json:"primaryText"`
	SecondaryText *PlainText `json:"secondaryText,omitempty"`
	TertiaryText  *PlainText `json:"tertiaryText,omitempty"`
}

// ListDatasource drives the list document.
type ListDatasource struct {
	Metadata ListMetadata `json:"listTemplate1Metadata"`
	ListData ListData     `json:"listTemplate1ListData"`
}

type ListMetadata struct {
	Type     string `json:"type"`
	ObjectID string `json:"objectId"`
	Title    string `json:"title"`
	LogoURL  string `json:"logoUrl"`
}

type ListData struct {
	Type               string   `json:"type"`
	ListID             string   `json:"listId"`
	TotalNumberOfItems int      `json:"totalNumberOfItems"`
	ListPage           ListPage `json:"listPage"`
}

type ListPage struct {
	ListItems []ListItem `json:"listItems"`
}

type ListItem struct {
	ListItemIdentifier string      `json:"listItemIdentifier"`
	OrdinalNumber      int         `json:"ordinalNumber"`
	TextContent        TextContent `json:"textContent"`
	Token              string      `json:"token"`
}
