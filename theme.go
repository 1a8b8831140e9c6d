package frame

// Theme maps semantic roles to ANSI color indices (0-15) used by terminal
// output, so the user's terminal palette decides the actual colors.
type Theme struct {
	Heading int
	Code    int
	CodeBg  int
	Accent  int
	Muted   int
	Success int
	Error   int
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Heading: 5,
		Code:    3,
		CodeBg:  0,
		Accent:  5,
		Muted:   8,
		Success: 2,
		Error:   1,
	}
}
