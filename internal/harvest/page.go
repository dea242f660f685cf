package harvest

import "github.com/go-rod/rod"

type rodSource struct {
	page *rod.Page
}

// PageSource adapts a rod page to the discovery Source.
func PageSource(page *rod.Page) Source {
	return &rodSource{page: page}
}

func (s *rodSource) HTML() (string, error) {
	return s.page.HTML()
}

func (s *rodSource) ScrollBottom() error {
	_, err := s.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}
