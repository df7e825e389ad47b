package tabpool

import "github.com/rs/zerolog/log"

const textContentJS = `(selector) => {
	const el = document.querySelector(selector)
	return el ? el.textContent : null
}`

// ExtractElementTextOrNull returns the text content of the first element matching
// selector in the page's current document. It reports false both when nothing
// matches and when the lookup fails, without telling the two apart.
// It does not wait for the element to appear.
func ExtractElementTextOrNull(page *Page, selector string) (string, bool) {
	if page == nil || page.Page == nil {
		return "", false
	}
	res, err := page.Eval(textContentJS, selector)
	if err != nil {
		log.Debug().Err(err).Str("selector", selector).Msg("Selector lookup failed")
		return "", false
	}
	if res == nil || res.Value.Nil() {
		return "", false
	}
	return res.Value.Str(), true
}
