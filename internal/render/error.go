package render

type errorViewModel struct {
	Width     int
	Height    int
	Colors    Colors
	Message   string
	Secondary string
}

func ErrorCard(message, secondary, theme string, colors ColorOverrides) ([]byte, error) {
	return execute("error.svg.tmpl", errorViewModel{
		Width:     576,
		Height:    120,
		Colors:    ResolveColors(theme, colors),
		Message:   message,
		Secondary: secondary,
	})
}
