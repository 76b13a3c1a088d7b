package flash

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Message is shown once, on the next rendered page.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}
