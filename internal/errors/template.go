package errors

const errorTemplate = `{{.Type}}: {{.Title}}

{{.Description}}
{{- if .Resolution}}

{{.Resolution}}
{{- end}}
`

type detailedError interface {
	Description() string
	Error() string
	Resolution() string
	Type() string
}

type templateVariables struct {
	Title       string
	Type        string
	Description string
	Resolution  string
}

func (t templateVariables) Validate() error {
	if t.Title == "" {
		return NewInternalError("error message is missing a title")
	}

	if t.Type == "" {
		return NewInternalError("error message is missing a type")
	}

	if t.Description == "" {
		return NewInternalError("error message is missing a Description")
	}

	return nil
}

// guidedError attaches end-user guidance to an error without changing its category.
type guidedError struct {
	E           error
	description string
	resolution  string
}

func (g guidedError) Error() string       { return g.E.Error() }
func (g guidedError) Unwrap() error       { return g.E }
func (g guidedError) Description() string { return g.description }
func (g guidedError) Resolution() string  { return g.resolution }

func (g guidedError) Type() string {
	switch {
	case isCategory[InputError](g.E):
		return "Input Error"
	case isCategory[ConfigurationError](g.E):
		return "Configuration Error"
	case isCategory[MatchError](g.E):
		return "Match Error"
	case isCategory[RemoteError](g.E):
		return "API Error"
	case isCategory[AttachmentError](g.E):
		return "Attachment Error"
	case isCategory[SystemError](g.E):
		return "System Error"
	default:
		return "Error"
	}
}

func isCategory[T error](err error) bool {
	var target T
	return As(err, &target)
}
