package alexa

// Shape is a device screen form factor.
type Shape string

const (
	ShapeRound     Shape = "ROUND"
	ShapeRectangle Shape = "RECTANGLE"
)

// APLInterface is the supported-interfaces key for visual layout support.
const APLInterface = "Alexa.Presentation.APL"

// DefaultFontSize is used when a device matches no known profile.
const DefaultFontSize = "40dp"

type fontProfile struct {
	name   string
	height int
	width  int
	font   string
}

// fontProfiles is ordered smallest to largest. Order matters to PickFontSize.
var fontProfiles = []fontProfile{
	{name: "round", height: 480, width: 480, font: "170dp"},
	{name: "small", height: 480, width: 960, font: "30dp"},
	{name: "medium", height: 600, width: 1024, font: "40dp"},
	{name: "large", height: 800, width: 1080, font: "50dp"},
	{name: "exlarge", height: 800, width: 1200, font: "50dp"},
	{name: "tv", height: 1200, width: 2048, font: "40dp"},
}

// DeviceProfile describes the requesting device's screen. Shape is empty and
// Width and Height are nil when the event has no viewport.
type DeviceProfile struct {
	Shape  Shape
	Width  *int
	Height *int
	APL    bool
}

// NewDeviceProfile reads viewport and APL support from an event.
func NewDeviceProfile(e *Event) DeviceProfile {
	var p DeviceProfile
	if e != nil && e.Context != nil && e.Context.Viewport != nil {
		vp := e.Context.Viewport
		p.Shape = Shape(deref(vp.Shape))
		p.Width = vp.PixelWidth
		p.Height = vp.PixelHeight
	}
	if d := e.device(); d != nil {
		if apl := d.SupportedInterfaces[APLInterface]; apl != nil && apl.Runtime != nil {
			p.APL = apl.Runtime.MaxVersion != nil
		}
	}
	return p
}

// Round reports whether the device has a round screen.
func (p DeviceProfile) Round() bool { return p.Shape == ShapeRound }

// PickFontSize chooses a font size bucket for the device's dimensions.
//
// An exact dimension match anywhere in the profile table wins. Otherwise the
// table is scanned in order and the scan stops at the first profile the
// device is strictly larger than in both dimensions, returning the profile
// scanned before it. The first comparison is against a sentinel carrying the
// default size. Missing dimensions and a completed scan also give the default.
func (p DeviceProfile) PickFontSize() string {
	if p.Height == nil || p.Width == nil {
		return DefaultFontSize
	}
	h, w := *p.Height, *p.Width

	for _, fp := range fontProfiles {
		if fp.height == h && fp.width == w {
			return fp.font
		}
	}

	previous := fontProfile{name: "default", font: DefaultFontSize}
	for _, fp := range fontProfiles {
		if h > fp.height && w > fp.width {
			return previous.font
		}
		previous = fp
	}
	return DefaultFontSize
}
