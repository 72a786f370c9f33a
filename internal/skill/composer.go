package skill

import (
	"strings"

	"github.com/couchcryptid/snow-emergency-skill/internal/alexa"
	"github.com/couchcryptid/snow-emergency-skill/internal/apl"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
)

// Reply is what the skill says and, on screen devices, shows.
type Reply struct {
	Speech    string
	Directive *apl.Directive
}

// Composer turns a classification into a Reply suited to the device.
type Composer struct {
	builder                 *apl.Builder
	speakPolicyWhenUnposted bool
}

// NewComposer creates a Composer. When speakPolicyWhenUnposted is set, the
// city's policy is read aloud after the "doesn't post" sentence.
func NewComposer(builder *apl.Builder, speakPolicyWhenUnposted bool) *Composer {
	return &Composer{builder: builder, speakPolicyWhenUnposted: speakPolicyWhenUnposted}
}

// Compose builds the speech and optional directive for a classification.
func (c *Composer) Compose(cl domain.Classification, device alexa.DeviceProfile, rec domain.LocationRecord) (Reply, error) {
	text := cl.Sentence
	if cl.Outcome == domain.OutcomeMaybe && c.speakPolicyWhenUnposted && rec.Policy != "" {
		text += " " + rec.Policy
	}
	reply := Reply{Speech: Speak(text)}
	if !device.APL {
		return reply, nil
	}

	var (
		d   apl.Directive
		err error
	)
	if device.Round() {
		d, err = c.builder.Round(roundText(cl.Outcome), reply.Speech)
	} else {
		d, err = c.builder.LongText(apl.LongText{
			Title:       cl.Sentence,
			Body:        rec.Policy,
			Speech:      reply.Speech,
			HeaderColor: domain.ColorPicker(cl.Outcome),
			HeaderTheme: headerTheme(cl.Outcome),
			FontSize:    device.PickFontSize(),
		})
	}
	if err != nil {
		return Reply{}, err
	}
	reply.Directive = &d
	return reply, nil
}

// Speak wraps text in speech markup. Ampersands become "and" after wrapping
// so the markup stays well formed. Empty text stays empty.
func Speak(text string) string {
	if text == "" {
		return ""
	}
	return strings.ReplaceAll("<speak>"+text+"</speak>", "&", "and")
}

func roundText(o domain.Outcome) string {
	switch o {
	case domain.OutcomeYes:
		return "YES"
	case domain.OutcomeNo:
		return "NO"
	default:
		return "?"
	}
}

func headerTheme(o domain.Outcome) string {
	if o == domain.OutcomeMaybe {
		return "light"
	}
	return "dark"
}
