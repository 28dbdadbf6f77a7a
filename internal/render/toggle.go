package render

const (
	labelShow = "Show details"
	labelHide = "Hide details"
)

// DetailToggle is the collapsible line-item section. Label and class are
// both derived from Visible, so they cannot disagree.
type DetailToggle struct {
	Visible bool `json:"visible" yaml:"visible"`
}

// Toggle flips the section's visibility.
func (t *DetailToggle) Toggle() {
	t.Visible = !t.Visible
}

// Label is the button text: the action the next click performs.
func (t *DetailToggle) Label() string {
	if t.Visible {
		return labelHide
	}
	return labelShow
}

// Class is the CSS class list of the detail section.
func (t *DetailToggle) Class() string {
	if t.Visible {
		return "details"
	}
	return "details hidden"
}
