package binder

// Style is the visual class of the flash banner.
type Style string

const (
	StyleSuccess Style = "alert-success"
	StyleDanger  Style = "alert-danger"
)

// Flash is the single-slot status banner. The zero value is an empty banner.
type Flash struct {
	Message string `json:"message"`
	Style   Style  `json:"style,omitempty"`
}

// NewFlash replaces whatever banner was shown before. The style is derived
// from success alone, so exactly one class is ever applied.
func NewFlash(message string, success bool) Flash {
	if success {
		return Flash{Message: message, Style: StyleSuccess}
	}
	return Flash{Message: message, Style: StyleDanger}
}

// Success reports whether the banner reports a success.
func (f Flash) Success() bool {
	return f.Style == StyleSuccess
}

// Empty reports whether there is nothing to show.
func (f Flash) Empty() bool {
	return f.Message == ""
}

// Class is the full class attribute for the banner element.
func (f Flash) Class() string {
	if f.Style == "" {
		return ""
	}
	return "alert " + string(f.Style)
}
