package report

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Colors holds all color functions
type Colors struct {
	enabled bool
}

// NewColors creates a new Colors instance
func NewColors(enabled bool) *Colors {
	return &Colors{enabled: enabled}
}

// Red returns red colored text
func (c *Colors) Red(s string) string {
	if !c.enabled {
		return s
	}
	return colorRed + s + colorReset
}

// Green returns green colored text
func (c *Colors) Green(s string) string {
	if !c.enabled {
		return s
	}
	return colorGreen + s + colorReset
}

// Yellow returns yellow colored text
func (c *Colors) Yellow(s string) string {
	if !c.enabled {
		return s
	}
	return colorYellow + s + colorReset
}

// Gray returns gray colored text
func (c *Colors) Gray(s string) string {
	if !c.enabled {
		return s
	}
	return colorGray + s + colorReset
}

// Bold returns bold text
func (c *Colors) Bold(s string) string {
	if !c.enabled {
		return s
	}
	return colorBold + s + colorReset
}
