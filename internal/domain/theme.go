package domain

// Theme is the UI theme preference, persisted outside the object database.
type Theme string

// Available themes.
const (
	ThemeDark  Theme = "flash-era"
	ThemeLight Theme = "flash-era-light"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}
