// Package settings holds the instance-level UI settings the session layer
// reads and mutates.
package settings

// Settings keys and defaults.
const (
	// PersonalizationEnabledKey toggles the personalization survey.
	PersonalizationEnabledKey = "personalization.enabled"
	// ShowSetupPageKey toggles the first-run owner setup banner.
	ShowSetupPageKey = "ui.showSetupPage"
	// DefaultPersonalizationEnabled is the fallback survey toggle.
	DefaultPersonalizationEnabled = true
)

// Store holds instance settings delivered with the frontend bootstrap
// payload. Only the flags the session layer touches live here.
type Store struct {
	personalizationSurveyEnabled bool
	showSetupPage                bool
}

// NewStore constructs a Store from the bootstrap flags.
func NewStore(personalizationSurveyEnabled, showSetupPage bool) *Store {
	return &Store{
		personalizationSurveyEnabled: personalizationSurveyEnabled,
		showSetupPage:                showSetupPage,
	}
}

// IsPersonalizationSurveyEnabled reports whether the survey should be shown.
func (s *Store) IsPersonalizationSurveyEnabled() bool {
	return s.personalizationSurveyEnabled
}

// ShowSetupPage reports whether the first-run setup banner is still up.
func (s *Store) ShowSetupPage() bool {
	return s.showSetupPage
}

// StopShowingSetupPage dismisses the first-run setup banner. Called once the
// owner account exists.
func (s *Store) StopShowingSetupPage() {
	s.showSetupPage = false
}
