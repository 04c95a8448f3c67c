package contracts

type IRenderer interface {
	// Render produces the page for the template identifier name
	Render(name string, data any) ([]byte, error)
}
